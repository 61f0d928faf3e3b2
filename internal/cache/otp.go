package cache

import (
	"context"
	"fmt"
	"time"

	"milan/internal/otp"

	"github.com/redis/go-redis/v9"
)

// verifyOTPScript consumes the code only when it matches; a mismatch keeps it.
var verifyOTPScript = redis.NewScript(`
local stored = redis.call('GET', KEYS[1])
if not stored then
  return 0
end
if stored == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// OTPStore is an otp.Store backed by Redis key expiry, shared by all API instances.
type OTPStore struct {
	v   *ValkeyClient
	ttl time.Duration
}

func NewOTPStore(v *ValkeyClient, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = otp.DefaultTTL
	}
	return &OTPStore{v: v, ttl: ttl}
}

func (s *OTPStore) Store(ctx context.Context, email, code string) error {
	if err := s.v.client.Set(ctx, s.v.key("otp", otp.NormalizeEmail(email)), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	n, err := verifyOTPScript.Run(ctx, s.v.client, []string{s.v.key("otp", otp.NormalizeEmail(email))}, code).Int()
	if err != nil {
		return false, fmt.Errorf("verify otp: %w", err)
	}
	return n == 1, nil
}
