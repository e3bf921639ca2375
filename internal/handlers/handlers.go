package handlers

import (
	"context"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/service"
)

type EventLister interface {
	List(ctx context.Context, query, category string) (*models.ListEventsResponse, error)
}

type CheckoutCreator interface {
	CreateSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CreateCheckoutResponse, error)
	Status(ctx context.Context, sessionID string) (*models.CheckoutStatusResponse, error)
}

type WebhookProcessor interface {
	Handle(ctx context.Context, payload []byte, signature string) error
}

type ContactSubmitter interface {
	Submit(ctx context.Context, clientKey string, req *models.ContactRequest) error
}

type Handlers struct {
	events   EventLister
	checkout CheckoutCreator
	webhooks WebhookProcessor
	contact  ContactSubmitter
	// cache is nil when Valkey is not configured
	cache service.EventsCache
}

func NewHandlers(services *service.Services, cache service.EventsCache) *Handlers {
	return &Handlers{
		events:   services.Events,
		checkout: services.Checkout,
		webhooks: services.Webhooks,
		contact:  services.Contact,
		cache:    cache,
	}
}
