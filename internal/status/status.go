// Package status records payment outcomes observed by the Konfhub webhook so
// the checkout page can poll for them.
package status

import (
	"context"
	"strings"
	"sync"
	"time"

	"milan/internal/otp"
)

// DefaultTTL bounds how long a paid flag is remembered.
const DefaultTTL = 24 * time.Hour

// Store keeps the last observed payment outcome per buyer email.
type Store interface {
	SetPaid(ctx context.Context, email string, paid bool) error
	IsPaid(ctx context.Context, email string) (bool, error)
}

// IsPaidStatus reports whether a gateway status string means the payment went through.
func IsPaidStatus(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "success", "successful", "captured", "paid":
		return true
	}
	return false
}

type flag struct {
	paid      bool
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[string]flag
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{flags: make(map[string]flag), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) SetPaid(_ context.Context, email string, paid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[otp.NormalizeEmail(email)] = flag{paid: paid, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) IsPaid(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flags[otp.NormalizeEmail(email)]
	if !ok || s.now().After(f.expiresAt) {
		return false, nil
	}
	return f.paid, nil
}
