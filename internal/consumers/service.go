package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"milan/internal/config"
	"milan/internal/database"
	"milan/internal/messaging"
	"milan/internal/models"
	"milan/internal/repository"

	"github.com/nats-io/stan.go"
)

const queueGroup = "milan-consumers"

type ConsumerService struct {
	db            *database.DB
	nats          *messaging.NATSClient
	repos         *repository.Repositories
	handlers      *Handlers
	subscriptions []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}
	if !natsClient.Enabled() {
		db.Close()
		return nil, fmt.Errorf("consumers require NATS_URL to be set")
	}

	repos := repository.NewRepositories(db)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: NewHandlers(repos.Bookings),
	}, nil
}

// Repositories exposes the repositories for background jobs.
func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subjects := map[string]stan.MsgHandler{
		models.EventBookingConfirmed: cs.handlers.HandleBookingConfirmed,
		models.EventPaymentWebhook:   cs.handlers.HandlePaymentWebhook,
	}

	for subject, handler := range subjects {
		sub, err := cs.nats.SubscribeQueue(subject, queueGroup, handler)
		if err != nil {
			return err
		}
		cs.subscriptions = append(cs.subscriptions, sub)
	}

	slog.Info("All consumers started successfully", "subscriptions", len(cs.subscriptions))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close, not Unsubscribe: durable subscriptions keep their position
	for _, sub := range cs.subscriptions {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
