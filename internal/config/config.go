package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"milan/internal/cache"
	"milan/internal/database"
	"milan/internal/external"
	"milan/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	MetricsPort    string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AllowedOrigins string

	// Секрет Razorpay для проверки подписи платежа
	RazorpayKeySecret string
	// Секрет для подписи webhook Konfhub, пустой - проверка отключена
	KonfhubWebhookSecret string

	OTPTTL           time.Duration
	PaymentStatusTTL time.Duration
	TeamsCacheMaxAge int

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Backend       external.BackendConfig
	Elasticsearch ElasticsearchConfig
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// .env нужен только для локальной разработки
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8081"),
		MetricsPort:    getEnv("METRICS_PORT", "9091"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		RazorpayKeySecret:    os.Getenv("RAZORPAY_KEY_SECRET"),
		KonfhubWebhookSecret: os.Getenv("KONFHUB_WEBHOOK_SECRET"),

		OTPTTL:           time.Duration(getEnvInt("OTP_TTL_MIN", 10)) * time.Minute,
		PaymentStatusTTL: time.Duration(getEnvInt("PAYMENT_STATUS_TTL_HOURS", 24)) * time.Hour,
		TeamsCacheMaxAge: getEnvInt("TEAMS_CACHE_MAX_AGE_SEC", 3600),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "milan"),
			Password:           getEnv("DB_PASSWORD", "milan"),
			DBName:             getEnv("DB_NAME", "milan"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       os.Getenv("NATS_URL"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "milan"),
			ClientID:  getEnv("NATS_CLIENT_ID", "milan-api"),
		},

		Redis: cache.Config{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "milan:"),
		},

		Backend: external.BackendConfig{
			BaseURL: os.Getenv("AUTH_BACKEND_URL"),
			Timeout: time.Duration(getEnvInt("AUTH_BACKEND_TIMEOUT_SEC", 15)) * time.Second,
		},

		Elasticsearch: LoadElasticsearchConfig(),
	}

	if cfg.RazorpayKeySecret == "" {
		slog.Warn("RAZORPAY_KEY_SECRET is not set, payment verification will fail")
	}

	return cfg
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
