package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"milan/internal/cache"
	"milan/internal/config"
	"milan/internal/content"
	"milan/internal/database"
	"milan/internal/external"
	"milan/internal/handlers"
	"milan/internal/logger"
	"milan/internal/messaging"
	"milan/internal/middleware"
	"milan/internal/otp"
	"milan/internal/repository"
	"milan/internal/search"
	"milan/internal/service"
	"milan/internal/status"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)
	log := logger.Get()

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	server := &Server{
		config: cfg,
		db:     db,
		nats:   natsClient,
	}

	// OTP и статусы оплаты: Redis для нескольких инстансов, иначе память процесса
	var otps otp.Store
	var statuses status.Store
	if cfg.Redis.Enabled() {
		valkey, err := cache.NewValkeyClient(cfg.Redis)
		if err != nil {
			server.Cleanup()
			return nil, err
		}
		server.valkey = valkey
		otps = cache.NewOTPStore(valkey, cfg.OTPTTL)
		statuses = cache.NewPaymentStatusStore(valkey, cfg.PaymentStatusTTL)
		log.Info("Using Redis for OTP and payment status", "addr", cfg.Redis.Addr)
	} else {
		otps = otp.NewMemoryStore(cfg.OTPTTL)
		statuses = status.NewMemoryStore(cfg.PaymentStatusTTL)
		log.Warn("REDIS_ADDR is not set, OTP and payment status are kept in process memory (single instance only)")
	}

	teams, err := content.Teams()
	if err != nil {
		server.Cleanup()
		return nil, err
	}
	events, err := content.Events()
	if err != nil {
		server.Cleanup()
		return nil, err
	}

	// Поиск по каталогу опционален: без Elasticsearch работает фильтр в памяти
	var searcher service.EventSearcher
	if cfg.Elasticsearch.Enabled() {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			log.Error("Elasticsearch is unavailable, catalogue search falls back to memory", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Elasticsearch.Timeout)
			if err := es.IndexEvents(ctx, events); err != nil {
				log.Error("Failed to index events catalogue", "error", err)
			}
			cancel()
			server.search = es
			searcher = es
		}
	}

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Создаем сервисы
	server.services = service.NewServices(service.Deps{
		Bookings:  repos.Bookings,
		Students:  repos.Students,
		OTPs:      otps,
		Statuses:  statuses,
		Publisher: natsClient,
		Signer:    external.NewRazorpaySigner(cfg.RazorpayKeySecret),
		Backend:   external.NewBackendClient(cfg.Backend),
		Searcher:  searcher,
		Teams:     teams,
		Events:    events,
	})

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server.router = router

	// Настраиваем роуты
	server.setupRoutes()

	return server, nil
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.config.TeamsCacheMaxAge)
	h.Register(s.router.Group("/api"), middleware.KonfhubSignature(s.config.KonfhubWebhookSecret))

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	code := http.StatusOK
	components := gin.H{}

	dbHealth := s.db.HealthCheck(ctx)
	components["database"] = dbHealth
	if dbHealth.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	if s.valkey != nil {
		if err := s.valkey.Ping(ctx); err != nil {
			components["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
			code = http.StatusServiceUnavailable
		} else {
			components["redis"] = gin.H{"status": "healthy"}
		}
	}

	// поиск не обязателен, поэтому на код ответа не влияет
	if s.search != nil {
		if err := s.search.HealthCheck(ctx); err != nil {
			components["elasticsearch"] = gin.H{"status": "degraded", "error": err.Error()}
		} else {
			components["elasticsearch"] = gin.H{"status": "healthy"}
		}
	}

	components["nats"] = gin.H{"enabled": s.nats.Enabled()}

	statusText := "ok"
	if code != http.StatusOK {
		statusText = "unhealthy"
	}

	c.JSON(code, gin.H{
		"status":     statusText,
		"service":    "milan-api",
		"version":    "1.0.0",
		"components": components,
	})
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
