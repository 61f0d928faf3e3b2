package models

import (
	"time"
)

// Payment statuses of a ticket confirmation
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// TicketConfirmation is a booking row keyed by the Razorpay order id
type TicketConfirmation struct {
	ID                 int64     `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	RegistrationNumber *string   `json:"registration_number" db:"registration_number"`
	Email              string    `json:"email" db:"email"`
	Batch              *string   `json:"batch" db:"batch"`
	EventName          string    `json:"event_name" db:"event_name"`
	EventDate          *string   `json:"event_date" db:"event_date"`
	TicketPrice        float64   `json:"ticket_price" db:"ticket_price"`
	RazorpayOrderID    string    `json:"razorpay_order_id" db:"razorpay_order_id"`
	RazorpayPaymentID  *string   `json:"razorpay_payment_id" db:"razorpay_payment_id"`
	RazorpaySignature  *string   `json:"-" db:"razorpay_signature"`
	PaymentStatus      string    `json:"payment_status" db:"payment_status"`
	BookingReference   *string   `json:"booking_reference" db:"booking_reference"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Reference returns the booking reference or "" when none was assigned
func (t *TicketConfirmation) Reference() string {
	if t.BookingReference == nil {
		return ""
	}
	return *t.BookingReference
}

// IsCompleted reports whether the payment for this booking was confirmed
func (t *TicketConfirmation) IsCompleted() bool {
	return t.PaymentStatus == PaymentStatusCompleted
}

// Student is the read-only directory entry used to backfill bookings
type Student struct {
	Email              string  `json:"email" db:"email"`
	FullName           string  `json:"full_name" db:"full_name"`
	RegistrationNumber string  `json:"registration_number" db:"registration_number"`
	Batch              *string `json:"batch" db:"batch"`
}
