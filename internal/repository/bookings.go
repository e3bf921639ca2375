package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const bookingColumns = `b.id, b.event_id, b.customer_name, b.customer_email, b.amount_paid, b.referral_name,
		       b.booking_status, b.stripe_session_id, b.stripe_payment_intent_id, b.created_at, b.updated_at`

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func scanBooking(row rowScanner, booking *models.Booking, extra ...any) error {
	dest := []any{
		&booking.ID,
		&booking.EventID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.AmountPaid,
		&booking.ReferralName,
		&booking.Status,
		&booking.StripeSessionID,
		&booking.StripePaymentIntentID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Create inserts a pending booking and fills in its id and timestamps
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.Status = models.BookingStatusPending

	query := `
		INSERT INTO bookings (id, event_id, customer_name, customer_email, amount_paid, referral_name, booking_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		booking.ID,
		booking.EventID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.AmountPaid,
		booking.ReferralName,
		booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

// SetSessionID records the checkout session opened for a booking
func (r *BookingRepository) SetSessionID(ctx context.Context, bookingID, sessionID string) error {
	query := `
		UPDATE bookings
		SET stripe_session_id = $1, updated_at = NOW()
		WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, sessionID, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	return nil
}

// Confirm moves a pending booking to confirmed and increments the event's sold
// count in one transaction. A booking that is not pending is left untouched and
// the sold count is not incremented.
func (r *BookingRepository) Confirm(ctx context.Context, bookingID string, eventID int64, paymentIntentID string) (*models.ConfirmResult, error) {
	result := &models.ConfirmResult{}

	var intent *string
	if paymentIntentID != "" {
		intent = &paymentIntentID
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings
			SET booking_status = 'confirmed', stripe_payment_intent_id = $1, updated_at = NOW()
			WHERE id = $2 AND event_id = $3 AND booking_status = 'pending'`,
			intent, bookingID, eventID)
		if err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE events
			SET sold = sold + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING sold, capacity`, eventID).Scan(&result.Sold, &result.Capacity)
		if err != nil {
			return fmt.Errorf("failed to increment sold count: %w", err)
		}

		result.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Cancel moves a pending booking to cancelled and reports whether it changed
func (r *BookingRepository) Cancel(ctx context.Context, bookingID string) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND booking_status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, bookingID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetWithEvent loads a booking together with its event
func (r *BookingRepository) GetWithEvent(ctx context.Context, bookingID string) (*models.BookingDetails, error) {
	return r.getDetails(ctx, `b.id = $1`, bookingID)
}

// GetBySessionID loads the booking correlated to a checkout session
func (r *BookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.BookingDetails, error) {
	return r.getDetails(ctx, `b.stripe_session_id = $1`, sessionID)
}

func (r *BookingRepository) getDetails(ctx context.Context, where string, arg any) (*models.BookingDetails, error) {
	query := `
		SELECT ` + bookingColumns + `,
		       e.id, e.title, e.description, e.date, e.time, e.location, e.price, e.capacity, e.sold,
		       e.image, e.category, e.created_at, e.updated_at
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE ` + where

	details := &models.BookingDetails{}
	e := &details.Event
	err := scanBooking(r.db.QueryRowContext(ctx, query, arg), &details.Booking,
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location, &e.Price, &e.Capacity, &e.Sold,
		&e.Image, &e.Category, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListStalePending returns pending bookings created before olderThan, oldest first
func (r *BookingRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		WHERE b.booking_status = 'pending' AND b.created_at < $1
		ORDER BY b.created_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
