package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"milan/internal/logger"
	"milan/internal/metrics"
	"milan/internal/models"
	"milan/internal/otp"
	"milan/internal/status"
)

// ErrEmailRequired возвращается, когда запрос не указывает email покупателя
var ErrEmailRequired = errors.New("email is required")

type StatusService struct {
	store     status.Store
	publisher EventPublisher
}

func NewStatusService(store status.Store, publisher EventPublisher) *StatusService {
	return &StatusService{
		store:     store,
		publisher: publisher,
	}
}

// RecordWebhook сохраняет статус оплаты из webhook Konfhub. Webhook без email
// принимается, но ничего не меняет.
func (s *StatusService) RecordWebhook(ctx context.Context, payload *models.KonfhubWebhookPayload) error {
	email := otp.NormalizeEmail(payload.Data.Email)
	paymentStatus := strings.ToLower(payload.Status())
	paid := status.IsPaidStatus(paymentStatus)

	label := "unpaid"
	if paid {
		label = "paid"
	}
	metrics.Webhooks.WithLabelValues(label).Inc()

	log := logger.WithContext(ctx)
	if email == "" {
		log.Warn("Konfhub webhook without buyer email", "event", payload.Event, "status", paymentStatus)
		return nil
	}

	if err := s.store.SetPaid(ctx, email, paid); err != nil {
		return fmt.Errorf("failed to record payment status: %w", err)
	}

	log.Info("Konfhub webhook recorded", "event", payload.Event, "email", email, "status", paymentStatus, "paid", paid)

	if s.publisher != nil {
		event := models.PaymentWebhookEvent{
			Event:     payload.Event,
			Email:     email,
			Status:    paymentStatus,
			Paid:      paid,
			Timestamp: time.Now(),
		}
		if err := s.publisher.Publish(models.EventPaymentWebhook, event); err != nil {
			log.Error("Failed to publish payment webhook event",
				"error", err,
				"event_type", models.EventPaymentWebhook)
		}
	}

	return nil
}

// CheckPayment возвращает последний статус, записанный webhook для email
func (s *StatusService) CheckPayment(ctx context.Context, email string) (bool, error) {
	email = otp.NormalizeEmail(email)
	if email == "" {
		return false, ErrEmailRequired
	}

	paid, err := s.store.IsPaid(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to read payment status: %w", err)
	}

	return paid, nil
}
