package models

import "time"

// NATS Event Types
const (
	EventBookingConfirmed = "booking.confirmed"
	EventPaymentWebhook   = "payment.webhook"
)

// BookingConfirmedEvent публикуется после успешной проверки платежа
type BookingConfirmedEvent struct {
	BookingReference string    `json:"booking_reference"`
	OrderID          string    `json:"order_id"`
	PaymentID        string    `json:"payment_id"`
	Email            string    `json:"email"`
	EventName        string    `json:"event_name"`
	Created          bool      `json:"created"`
	Timestamp        time.Time `json:"timestamp"`
}

// PaymentWebhookEvent публикуется при получении webhook от Konfhub
type PaymentWebhookEvent struct {
	Event     string    `json:"event"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Paid      bool      `json:"paid"`
	Timestamp time.Time `json:"timestamp"`
}
