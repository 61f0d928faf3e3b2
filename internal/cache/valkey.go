package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config описывает подключение к Redis/Valkey. Пустой Addr - хранилища в памяти.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Enabled сообщает, настроен ли Redis
func (c Config) Enabled() bool {
	return c.Addr != ""
}

type ValkeyClient struct {
	client *redis.Client
	prefix string
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewValkeyClientFrom(rdb, cfg.KeyPrefix), nil
}

// NewValkeyClientFrom wraps an existing go-redis client.
func NewValkeyClientFrom(rdb *redis.Client, prefix string) *ValkeyClient {
	return &ValkeyClient{client: rdb, prefix: prefix}
}

func (v *ValkeyClient) key(parts ...string) string {
	k := v.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

// Ping проверяет доступность Redis для health check
func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Ping(ctx).Err()
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
