package service

import (
	"context"
	"time"

	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/ratelimit"
)

// EventStore reads events
type EventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, category string) ([]models.Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
}

// BookingStore persists bookings and their state transitions
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	SetSessionID(ctx context.Context, bookingID, sessionID string) error
	Confirm(ctx context.Context, bookingID string, eventID int64, paymentIntentID string) (*models.ConfirmResult, error)
	Cancel(ctx context.Context, bookingID string) (bool, error)
	GetWithEvent(ctx context.Context, bookingID string) (*models.BookingDetails, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.BookingDetails, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]models.Booking, error)
}

// CheckoutProvider is the hosted payment page provider
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params *models.CheckoutSessionParams) (*models.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error)
}

// Mailer delivers rendered emails
type Mailer interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}

// Publisher emits booking events to other services
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// EventsCache holds the serialized public events list. A miss returns a nil
// body and the version to store the rebuilt list under.
type EventsCache interface {
	GetEventsListRaw(ctx context.Context) ([]byte, int64, error)
	SetEventsList(ctx context.Context, version int64, response any) error
	InvalidateEventsList(ctx context.Context) error
}

// EventSearcher finds event ids by free text
type EventSearcher interface {
	SearchIDs(ctx context.Context, query, category string, limit int) ([]int64, error)
}

// Deps are the collaborators shared by all services. Cache and Search are optional.
type Deps struct {
	Events    EventStore
	Bookings  BookingStore
	Checkout  CheckoutProvider
	Mailer    Mailer
	Publisher Publisher
	Cache     EventsCache
	Search    EventSearcher
	Limiter   ratelimit.Limiter
}

// Options carry the configuration the services need
type Options struct {
	AppURL        string
	AdminEmail    string
	ContactInbox  string
	ContactSender string
}

type Services struct {
	Events   *EventService
	Checkout *CheckoutService
	Webhooks *WebhookService
	Contact  *ContactService
}

func NewServices(deps Deps, opts Options) *Services {
	return &Services{
		Events:   NewEventService(deps.Events, deps.Search),
		Checkout: NewCheckoutService(deps.Events, deps.Bookings, deps.Checkout, opts.AppURL),
		Webhooks: NewWebhookService(deps.Bookings, deps.Checkout, deps.Mailer, deps.Publisher, deps.Cache, opts.AdminEmail),
		Contact:  NewContactService(deps.Limiter, deps.Mailer, opts.ContactInbox, opts.ContactSender),
	}
}
