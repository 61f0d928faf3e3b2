package external

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// RazorpaySigner проверяет подпись, которую Razorpay checkout возвращает клиенту.
type RazorpaySigner struct {
	keySecret []byte
}

func NewRazorpaySigner(keySecret string) *RazorpaySigner {
	return &RazorpaySigner{keySecret: []byte(keySecret)}
}

// Configured reports whether a key secret is available.
func (s *RazorpaySigner) Configured() bool {
	return len(s.keySecret) > 0
}

// Sign returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func (s *RazorpaySigner) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares signature with the expected one in constant time.
func (s *RazorpaySigner) Verify(orderID, paymentID, signature string) bool {
	expected := s.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignBody returns hex(HMAC-SHA256(secret, body)), the webhook signature scheme.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyBody checks a webhook body signature in constant time.
func VerifyBody(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(SignBody(secret, body)), []byte(signature))
}
