package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

type stubEvents struct {
	events map[int64]*models.Event
	err    error
}

func (s *stubEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events[id], nil
}

type stubIndex struct {
	indexed []models.Event
	deleted []int64
	err     error
}

func (s *stubIndex) IndexEvent(_ context.Context, event *models.Event) error {
	if s.err != nil {
		return s.err
	}
	s.indexed = append(s.indexed, *event)
	return nil
}

func (s *stubIndex) DeleteEvent(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestBookingConfirmedReindexesEvent(t *testing.T) {
	events := &stubEvents{events: map[int64]*models.Event{
		7: {ID: 7, Title: "Beer Garden Social", Capacity: 20, Sold: 20},
	}}
	index := &stubIndex{}
	h := NewHandlers(events, index)

	err := h.processBookingConfirmed(mustJSON(t, models.BookingConfirmedEvent{BookingID: "b-1", EventID: 7, Sold: 20, Capacity: 20}))
	require.NoError(t, err)
	require.Len(t, index.indexed, 1)
	assert.Equal(t, 20, index.indexed[0].Sold)
}

func TestBookingConfirmedForDeletedEvent(t *testing.T) {
	index := &stubIndex{}
	h := NewHandlers(&stubEvents{events: map[int64]*models.Event{}}, index)

	require.NoError(t, h.processBookingConfirmed(mustJSON(t, models.BookingConfirmedEvent{EventID: 3})))
	assert.Equal(t, []int64{3}, index.deleted)
}

func TestMalformedMessageIsDropped(t *testing.T) {
	index := &stubIndex{}
	h := NewHandlers(&stubEvents{}, index)

	assert.NoError(t, h.processBookingConfirmed([]byte("not json")))
	assert.NoError(t, h.processBookingCancelled([]byte("{")))
	assert.Empty(t, index.indexed)
}

func TestIndexFailureAsksForRedelivery(t *testing.T) {
	events := &stubEvents{events: map[int64]*models.Event{1: {ID: 1}}}
	h := NewHandlers(events, &stubIndex{err: errors.New("cluster unavailable")})

	assert.Error(t, h.processBookingConfirmed(mustJSON(t, models.BookingConfirmedEvent{EventID: 1})))

	h = NewHandlers(&stubEvents{err: errors.New("db down")}, &stubIndex{})
	assert.Error(t, h.processBookingCancelled(mustJSON(t, models.BookingCancelledEvent{EventID: 1})))
}

func TestBookingCancelledWithoutEventIsAcked(t *testing.T) {
	index := &stubIndex{}
	h := NewHandlers(&stubEvents{}, index)

	assert.NoError(t, h.processBookingCancelled(mustJSON(t, models.BookingCancelledEvent{BookingID: "b-2"})))
	assert.Empty(t, index.indexed)
}
