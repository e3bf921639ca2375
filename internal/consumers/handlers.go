package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/stan.go"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

// EventGetter loads the current state of an event
type EventGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// EventIndexer writes event documents to the search index
type EventIndexer interface {
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

type Handlers struct {
	events  EventGetter
	index   EventIndexer
	timeout time.Duration
}

func NewHandlers(events EventGetter, index EventIndexer) *Handlers {
	return &Handlers{
		events:  events,
		index:   index,
		timeout: 10 * time.Second,
	}
}

// HandleBookingConfirmed refreshes the sold count of the booked event in the index
func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	h.ackUnlessRetry(m, h.processBookingConfirmed(m.Data))
}

// HandleBookingCancelled keeps the index in step after a cancellation
func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	h.ackUnlessRetry(m, h.processBookingCancelled(m.Data))
}

func (h *Handlers) processBookingConfirmed(data []byte) error {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		return nil
	}

	slog.Info("Processing booking confirmed event",
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"sold", event.Sold)

	return h.reindex(event.EventID)
}

func (h *Handlers) processBookingCancelled(data []byte) error {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return nil
	}

	slog.Info("Processing booking cancelled event",
		"booking_id", event.BookingID,
		"event_id", event.EventID,
		"reason", event.Reason)

	if event.EventID == 0 {
		return nil
	}
	return h.reindex(event.EventID)
}

// reindex returns an error only when a retry could help
func (h *Handlers) reindex(eventID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	event, err := h.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get event %d: %w", eventID, err)
	}
	if event == nil {
		slog.Warn("Event no longer exists, removing from index", "event_id", eventID)
		return h.index.DeleteEvent(ctx, eventID)
	}

	if err := h.index.IndexEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to index event %d: %w", eventID, err)
	}
	return nil
}

// ackUnlessRetry leaves failed messages unacknowledged so they are redelivered after AckWait
func (h *Handlers) ackUnlessRetry(m *stan.Msg, err error) {
	if err != nil {
		slog.Error("Failed to process message, will be redelivered",
			"error", err,
			"subject", m.Subject,
			"sequence", m.Sequence)
		return
	}
	if ackErr := m.Ack(); ackErr != nil {
		slog.Error("Failed to ack message", "error", ackErr, "subject", m.Subject)
	}
}
