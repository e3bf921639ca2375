package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

type stubWriter struct {
	created []models.Event
	deleted bool
	err     error
}

func (s *stubWriter) Create(_ context.Context, e *models.Event) error {
	if s.err != nil {
		return s.err
	}
	e.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *e)
	return nil
}

func (s *stubWriter) DeleteAll(context.Context) (int64, error) {
	s.deleted = true
	return 3, nil
}

func TestDemoEventsStartOnSaturday(t *testing.T) {
	wednesday := time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)
	events := demoEvents(wednesday)

	require.NotEmpty(t, events)
	assert.Equal(t, "2025-07-12", events[0].Date)
	assert.Equal(t, "2025-07-13", events[1].Date)
	for _, e := range events {
		assert.Zero(t, e.Sold)
		assert.Positive(t, e.Capacity)
		assert.GreaterOrEqual(t, e.Price, 0.0)
	}
}

func TestSeedDryRunWritesNothing(t *testing.T) {
	w := &stubWriter{}
	s := &Seeder{events: w, dryRun: true}

	require.NoError(t, s.Clear(context.Background()))
	n, err := s.Seed(context.Background(), demoEvents(time.Now()))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w.created)
	assert.False(t, w.deleted)
}

func TestSeedInserts(t *testing.T) {
	w := &stubWriter{}
	s := &Seeder{events: w}

	events := demoEvents(time.Now())
	n, err := s.Seed(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, len(events), n)
	assert.Equal(t, int64(1), events[0].ID)
}

func TestSeedStopsOnError(t *testing.T) {
	s := &Seeder{events: &stubWriter{err: errors.New("duplicate")}}

	n, err := s.Seed(context.Background(), demoEvents(time.Now()))
	assert.Error(t, err)
	assert.Zero(t, n)
}
