package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"milan/internal/metrics"
	"milan/internal/models"

	"github.com/nats-io/stan.go"
)

// BookingLookup - чтение бронирований для сверки подтверждений
type BookingLookup interface {
	GetByOrderID(ctx context.Context, orderID string) (*models.TicketConfirmation, error)
}

type Handlers struct {
	bookings BookingLookup
}

func NewHandlers(bookings BookingLookup) *Handlers {
	return &Handlers{bookings: bookings}
}

// HandleBookingConfirmed сверяет событие booking.confirmed с таблицей бронирований
func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	h.ack(m, models.EventBookingConfirmed, h.ProcessBookingConfirmed(context.Background(), m.Data))
}

// HandlePaymentWebhook пишет аудит уведомлений Konfhub
func (h *Handlers) HandlePaymentWebhook(m *stan.Msg) {
	h.ack(m, models.EventPaymentWebhook, h.ProcessPaymentWebhook(m.Data))
}

// ack подтверждает сообщение, кроме временных ошибок: их NATS доставит повторно
func (h *Handlers) ack(m *stan.Msg, subject string, err error) {
	result := "ok"
	if err != nil {
		var perm *permanentError
		if !errors.As(err, &perm) {
			metrics.ConsumedEvents.WithLabelValues(subject, "retry").Inc()
			slog.Error("Failed to process event, will be redelivered", "subject", subject, "error", err)
			return
		}
		result = "invalid"
		slog.Error("Dropping invalid event", "subject", subject, "error", err)
	}

	metrics.ConsumedEvents.WithLabelValues(subject, result).Inc()
	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack message", "subject", subject, "error", err)
	}
}

func (h *Handlers) ProcessBookingConfirmed(ctx context.Context, data []byte) error {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return &permanentError{fmt.Errorf("unmarshal booking confirmed event: %w", err)}
	}

	slog.Info("Processing booking confirmed event",
		"booking_reference", event.BookingReference,
		"order_id", event.OrderID,
		"email", event.Email,
		"created", event.Created)

	booking, err := h.bookings.GetByOrderID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("get booking %s: %w", event.OrderID, err)
	}

	switch {
	case booking == nil:
		slog.Warn("Confirmed booking is missing from the database", "order_id", event.OrderID)
	case !booking.IsCompleted() || booking.Reference() != event.BookingReference:
		slog.Warn("Confirmed booking does not match stored row",
			"order_id", event.OrderID,
			"stored_status", booking.PaymentStatus,
			"stored_reference", booking.Reference(),
			"event_reference", event.BookingReference)
	}

	return nil
}

func (h *Handlers) ProcessPaymentWebhook(data []byte) error {
	var event models.PaymentWebhookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return &permanentError{fmt.Errorf("unmarshal payment webhook event: %w", err)}
	}

	slog.Info("Processing payment webhook event",
		"event", event.Event,
		"email", event.Email,
		"status", event.Status,
		"paid", event.Paid)

	return nil
}
