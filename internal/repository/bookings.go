package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"milan/internal/database"
	"milan/internal/models"
)

const bookingColumns = `id, name, registration_number, email, batch, event_name, event_date,
		       ticket_price, razorpay_order_id, razorpay_payment_id, razorpay_signature,
		       payment_status, booking_reference, created_at, updated_at`

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByOrderID returns the booking for a Razorpay order, or nil when there is none
func (r *BookingRepository) GetByOrderID(ctx context.Context, orderID string) (*models.TicketConfirmation, error) {
	booking := &models.TicketConfirmation{}
	query := `
		SELECT ` + bookingColumns + `
		FROM ticket_confirmations
		WHERE razorpay_order_id = $1`

	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&booking.ID,
		&booking.Name,
		&booking.RegistrationNumber,
		&booking.Email,
		&booking.Batch,
		&booking.EventName,
		&booking.EventDate,
		&booking.TicketPrice,
		&booking.RazorpayOrderID,
		&booking.RazorpayPaymentID,
		&booking.RazorpaySignature,
		&booking.PaymentStatus,
		&booking.BookingReference,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get booking by order id: %w", err)
	}

	return booking, nil
}

// Insert creates the booking unless a row for the same order already exists.
// It reports false without error when the unique order id constraint won.
func (r *BookingRepository) Insert(ctx context.Context, booking *models.TicketConfirmation) (bool, error) {
	query := `
		INSERT INTO ticket_confirmations (name, registration_number, email, batch, event_name,
		    event_date, ticket_price, razorpay_order_id, razorpay_payment_id, razorpay_signature,
		    payment_status, booking_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (razorpay_order_id) DO NOTHING
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		booking.Name,
		booking.RegistrationNumber,
		booking.Email,
		booking.Batch,
		booking.EventName,
		booking.EventDate,
		booking.TicketPrice,
		booking.RazorpayOrderID,
		booking.RazorpayPaymentID,
		booking.RazorpaySignature,
		booking.PaymentStatus,
		booking.BookingReference,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert booking: %w", err)
	}

	return true, nil
}

// MarkCompleted records the payment on a pending booking. An already assigned
// booking reference is kept; the stored reference is returned. updated is false
// when the booking is no longer pending.
func (r *BookingRepository) MarkCompleted(ctx context.Context, orderID, paymentID, signature, reference string) (stored string, updated bool, err error) {
	query := `
		UPDATE ticket_confirmations
		SET payment_status = 'completed', razorpay_payment_id = $1, razorpay_signature = $2,
		    booking_reference = COALESCE(booking_reference, $3), updated_at = NOW()
		WHERE razorpay_order_id = $4 AND payment_status = 'pending'
		RETURNING booking_reference`

	err = r.db.QueryRowContext(ctx, query, paymentID, signature, reference, orderID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mark booking completed: %w", err)
	}

	return stored, true, nil
}

// AssignReference sets the booking reference on a booking that has none.
// updated is false when a reference was already assigned.
func (r *BookingRepository) AssignReference(ctx context.Context, orderID, reference string) (stored string, updated bool, err error) {
	query := `
		UPDATE ticket_confirmations
		SET booking_reference = $1, updated_at = NOW()
		WHERE razorpay_order_id = $2 AND booking_reference IS NULL
		RETURNING booking_reference`

	err = r.db.QueryRowContext(ctx, query, reference, orderID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("assign booking reference: %w", err)
	}

	return stored, true, nil
}

// CountByStatus returns the number of bookings per payment status
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payment_status, COUNT(*)
		FROM ticket_confirmations
		GROUP BY payment_status`)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}

	return counts, rows.Err()
}
