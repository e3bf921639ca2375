package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsFixture() *memStore {
	hike := munichEvent(2, 15, 3, 0)
	hike.Title = "Alpine Hike"
	hike.Category = "outdoor"
	return newMemStore(munichEvent(1, 20, 5, 25), hike, munichEvent(3, 30, 30, 10))
}

func TestListEvents(t *testing.T) {
	svc := NewEventService(eventsFixture(), nil)

	resp, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, resp.Events, 3)
	assert.Equal(t, "1", resp.Events[0].ID)
	assert.Equal(t, "2", resp.Events[1].ID)
	assert.Equal(t, 30, resp.Events[2].Sold)
}

func TestListEventsByCategory(t *testing.T) {
	svc := NewEventService(eventsFixture(), nil)

	resp, err := svc.List(context.Background(), "", "outdoor")
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Alpine Hike", resp.Events[0].Title)
}

func TestListEventsEmptyIsNotNil(t *testing.T) {
	svc := NewEventService(newMemStore(), nil)

	resp, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}

func TestListEventsSearchUsesIndexOrder(t *testing.T) {
	searcher := &fakeSearcher{ids: []int64{3, 1}}
	svc := NewEventService(eventsFixture(), searcher)

	resp, err := svc.List(context.Background(), "beer", "")
	require.NoError(t, err)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "3", resp.Events[0].ID)
	assert.Equal(t, "1", resp.Events[1].ID)
}

func TestListEventsSearchNoHits(t *testing.T) {
	svc := NewEventService(eventsFixture(), &fakeSearcher{ids: []int64{}})

	resp, err := svc.List(context.Background(), "opera", "")
	require.NoError(t, err)
	assert.Empty(t, resp.Events)
}

func TestListEventsSearchFailureFallsBack(t *testing.T) {
	svc := NewEventService(eventsFixture(), &fakeSearcher{err: errors.New("cluster red")})

	resp, err := svc.List(context.Background(), "beer", "")
	require.NoError(t, err)
	assert.Len(t, resp.Events, 3)
}

func TestListEventsWithoutQuerySkipsIndex(t *testing.T) {
	searcher := &fakeSearcher{ids: []int64{1}}
	svc := NewEventService(eventsFixture(), searcher)

	_, err := svc.List(context.Background(), "  ", "")
	require.NoError(t, err)
	assert.Zero(t, searcher.calls)
}

func TestListEventsStoreError(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("db down")
	svc := NewEventService(store, nil)

	_, err := svc.List(context.Background(), "", "")
	assert.Error(t, err)
}
