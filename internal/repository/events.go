package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const eventColumns = `id, title, description, date, time, location, price, capacity, sold, image, category, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner, event *models.Event) error {
	return row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Time,
		&event.Location,
		&event.Price,
		&event.Capacity,
		&event.Sold,
		&event.Image,
		&event.Category,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, date, time, location, price, capacity, sold, image, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Time,
		event.Location,
		event.Price,
		event.Capacity,
		event.Sold,
		event.Image,
		event.Category,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	err := scanEvent(r.db.QueryRowContext(ctx, query, id), event)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return event, nil
}

// List returns events in creation order, optionally restricted to one category
func (r *EventRepository) List(ctx context.Context, category string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any

	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	return r.queryEvents(ctx, query, args...)
}

// ListByIDs returns the events with the given ids in the order of ids.
// Unknown ids are skipped.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	events, err := r.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	ordered := make([]models.Event, 0, len(events))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// DeleteAll removes every event that has no bookings, used by the seed command
func (r *EventRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM events WHERE NOT EXISTS (SELECT 1 FROM bookings b WHERE b.event_id = events.id)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
