package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrBackendNotConfigured возвращается, когда AUTH_BACKEND_URL не задан
var ErrBackendNotConfigured = errors.New("remote backend is not configured")

// maxProxyBody ограничивает размер ответа удаленного backend
const maxProxyBody = 1 << 20

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// BackendClient проксирует запросы на удаленный backend (OTP почта, покупка пропусков)
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// ProxyResponse - ответ удаленного backend, передается клиенту без изменений
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type sendOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func NewBackendClient(cfg BackendConfig) *BackendClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &BackendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendOTP asks the backend to mail code to email.
func (bc *BackendClient) SendOTP(ctx context.Context, email, code string) (*ProxyResponse, error) {
	body, err := json.Marshal(sendOTPRequest{Email: email, OTP: code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bc.Forward(ctx, "/api/auth/send-otp", body, nil)
}

// PurchasePass forwards a raw pass purchase body with the caller's Authorization header.
func (bc *BackendClient) PurchasePass(ctx context.Context, body []byte, authorization string) (*ProxyResponse, error) {
	headers := http.Header{}
	if authorization != "" {
		headers.Set("Authorization", authorization)
	}
	return bc.Forward(ctx, "/api/passes/purchase", body, headers)
}

// Forward POSTs a JSON body to path and returns whatever the backend answered.
// Only transport failures are errors; non-2xx statuses are relayed as is.
func (bc *BackendClient) Forward(ctx context.Context, path string, body []byte, headers http.Header) (*ProxyResponse, error) {
	if bc.baseURL == "" {
		return nil, ErrBackendNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bc.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := bc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}

	return &ProxyResponse{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        respBody,
	}, nil
}
