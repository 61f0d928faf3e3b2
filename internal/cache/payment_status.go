package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"milan/internal/otp"
	"milan/internal/status"

	"github.com/redis/go-redis/v9"
)

// PaymentStatusStore is a status.Store backed by Redis.
type PaymentStatusStore struct {
	v   *ValkeyClient
	ttl time.Duration
}

func NewPaymentStatusStore(v *ValkeyClient, ttl time.Duration) *PaymentStatusStore {
	if ttl <= 0 {
		ttl = status.DefaultTTL
	}
	return &PaymentStatusStore{v: v, ttl: ttl}
}

func (s *PaymentStatusStore) SetPaid(ctx context.Context, email string, paid bool) error {
	val := "0"
	if paid {
		val = "1"
	}
	if err := s.v.client.Set(ctx, s.v.key("paid", otp.NormalizeEmail(email)), val, s.ttl).Err(); err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return nil
}

func (s *PaymentStatusStore) IsPaid(ctx context.Context, email string) (bool, error) {
	val, err := s.v.client.Get(ctx, s.v.key("paid", otp.NormalizeEmail(email))).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get payment status: %w", err)
	}
	return val == "1", nil
}
