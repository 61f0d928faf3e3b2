package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createStudentsTable,
		createTicketConfirmationsTable,
		createTicketConfirmationsEmailIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createStudentsTable = `
CREATE TABLE IF NOT EXISTS students (
    email VARCHAR(255) PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    registration_number VARCHAR(64) NOT NULL,
    batch VARCHAR(32)
);`

// razorpay_order_id is UNIQUE: concurrent verify calls for one order cannot double-insert.
const createTicketConfirmationsTable = `
CREATE TABLE IF NOT EXISTS ticket_confirmations (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    registration_number VARCHAR(64),
    email VARCHAR(255) NOT NULL,
    batch VARCHAR(32),
    event_name VARCHAR(255) NOT NULL,
    event_date VARCHAR(64),
    ticket_price NUMERIC(10,2) NOT NULL DEFAULT 0,
    razorpay_order_id VARCHAR(255) NOT NULL UNIQUE,
    razorpay_payment_id VARCHAR(255),
    razorpay_signature VARCHAR(255),
    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    booking_reference VARCHAR(64),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (payment_status IN ('pending', 'completed'))
);`

const createTicketConfirmationsEmailIndex = `
CREATE INDEX IF NOT EXISTS ticket_confirmations_email_idx
ON ticket_confirmations (email);`
