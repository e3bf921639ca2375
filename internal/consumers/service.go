package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"github.com/tpprogramming22/weekendinthecity/internal/cache"
	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/external"
	"github.com/tpprogramming22/weekendinthecity/internal/messaging"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/repository"
	"github.com/tpprogramming22/weekendinthecity/internal/search"
	"github.com/tpprogramming22/weekendinthecity/internal/service"
)

const queueGroup = "consumers"

// ConsumerService runs the background side of the backend: search index
// updates from booking events and the webhook service used by the reconcile job
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	repos    *repository.Repositories
	handlers *Handlers
	webhooks *service.WebhookService
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	mailer, err := external.NewSESMailer(cfg.Mail)
	if err != nil {
		db.Close()
		natsClient.Close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	repos := repository.NewRepositories(db)
	cs := &ConsumerService{
		db:    db,
		nats:  natsClient,
		repos: repos,
	}

	var eventsCache service.EventsCache
	if cfg.Valkey.Enabled() {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, events cache will not be invalidated", "error", err)
		} else {
			cs.valkey = valkeyClient
			eventsCache = valkeyClient
		}
	}

	cs.webhooks = service.NewWebhookService(repos.Bookings, external.NewStripeClient(cfg.Stripe), mailer, natsClient, eventsCache, cfg.Mail.AdminEmail)

	if cfg.Elasticsearch.Enabled() {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			cs.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
		}
		cs.handlers = NewHandlers(repos.Events, esClient)
	}

	return cs, nil
}

// Webhooks returns the service that completes and cancels bookings
func (cs *ConsumerService) Webhooks() *service.WebhookService {
	return cs.webhooks
}

func (cs *ConsumerService) Start() error {
	if !cs.nats.Enabled() || cs.handlers == nil {
		slog.Info("Search index consumers disabled",
			"nats_enabled", cs.nats.Enabled(),
			"search_enabled", cs.handlers != nil)
		return nil
	}

	slog.Info("Starting NATS consumers...")

	sub, err := cs.nats.SubscribeQueue(models.EventBookingConfirmed, queueGroup, cs.handlers.HandleBookingConfirmed)
	if err != nil {
		return err
	}
	cs.subs = append(cs.subs, sub)

	sub, err = cs.nats.SubscribeQueue(models.EventBookingCancelled, queueGroup, cs.handlers.HandleBookingCancelled)
	if err != nil {
		return err
	}
	cs.subs = append(cs.subs, sub)

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close keeps the durable subscriptions registered on the server
	for _, sub := range cs.subs {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		cs.valkey.Close()
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
