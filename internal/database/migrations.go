package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createBookingsTable,
		createEventsCreatedAtIndex,
		createBookingsEventIndex,
		createBookingsSessionIndex,
		createBookingsPendingIndex,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

// Date and time are display strings maintained by the content team.
const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date VARCHAR(100) NOT NULL,
    time VARCHAR(100) NOT NULL,
    location VARCHAR(255) NOT NULL,
    price NUMERIC(10,2) NOT NULL DEFAULT 0,
    capacity INTEGER NOT NULL DEFAULT 0,
    sold INTEGER NOT NULL DEFAULT 0,
    image TEXT NOT NULL DEFAULT '',
    category VARCHAR(100) NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (capacity >= 0),
    CHECK (sold >= 0),
    CHECK (price >= 0)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id),
    customer_name VARCHAR(255) NOT NULL,
    customer_email VARCHAR(255) NOT NULL,
    amount_paid NUMERIC(10,2) NOT NULL,
    referral_name VARCHAR(255),
    booking_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    stripe_session_id VARCHAR(255),
    stripe_payment_intent_id VARCHAR(255),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (booking_status IN ('pending', 'confirmed', 'cancelled'))
);`

const createEventsCreatedAtIndex = `
CREATE INDEX IF NOT EXISTS events_created_at_idx ON events (created_at);`

const createBookingsEventIndex = `
CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id);`

const createBookingsSessionIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS bookings_stripe_session_id_idx
ON bookings (stripe_session_id) WHERE stripe_session_id IS NOT NULL;`

const createBookingsPendingIndex = `
CREATE INDEX IF NOT EXISTS bookings_pending_created_at_idx
ON bookings (created_at) WHERE booking_status = 'pending';`
