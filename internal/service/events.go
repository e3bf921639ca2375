package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const searchLimit = 100

type EventService struct {
	events EventStore
	search EventSearcher
}

func NewEventService(events EventStore, search EventSearcher) *EventService {
	return &EventService{
		events: events,
		search: search,
	}
}

// List returns events in creation order. A non-empty query goes through the
// search index when one is configured; a failing index falls back to the plain list.
func (s *EventService) List(ctx context.Context, query, category string) (*models.ListEventsResponse, error) {
	query = strings.TrimSpace(query)
	category = strings.TrimSpace(category)

	var (
		events []models.Event
		err    error
	)
	if query != "" && s.search != nil {
		events, err = s.searchEvents(ctx, query, category)
		if err != nil {
			logger.WithContext(ctx).Warn("Event search failed, falling back to database",
				"error", err,
				"query", query)
			events = nil
		}
	}
	if events == nil {
		events, err = s.events.List(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
	}

	resp := &models.ListEventsResponse{Events: make([]models.EventResponse, 0, len(events))}
	for i := range events {
		resp.Events = append(resp.Events, models.NewEventResponse(&events[i]))
	}
	return resp, nil
}

func (s *EventService) searchEvents(ctx context.Context, query, category string) ([]models.Event, error) {
	ids, err := s.search.SearchIDs(ctx, query, category, searchLimit)
	if err != nil {
		return nil, err
	}
	// Rows come from the database so sold counts are never stale
	events, err := s.events.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}
