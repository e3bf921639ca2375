package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tpprogramming22/weekendinthecity/internal/cache"
	"github.com/tpprogramming22/weekendinthecity/internal/config"
	"github.com/tpprogramming22/weekendinthecity/internal/database"
	"github.com/tpprogramming22/weekendinthecity/internal/external"
	"github.com/tpprogramming22/weekendinthecity/internal/handlers"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/messaging"
	"github.com/tpprogramming22/weekendinthecity/internal/middleware"
	"github.com/tpprogramming22/weekendinthecity/internal/ratelimit"
	"github.com/tpprogramming22/weekendinthecity/internal/repository"
	"github.com/tpprogramming22/weekendinthecity/internal/search"
	"github.com/tpprogramming22/weekendinthecity/internal/service"
)

const serviceName = "weekendinthecity-api"

// Server is the HTTP API of the booking backend
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	search   *search.ElasticsearchClient
	services *service.Services
	cache    service.EventsCache
	stop     context.CancelFunc
}

// NewServer connects the backing services and builds the router
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mailer, err := external.NewSESMailer(cfg.Mail)
	if err != nil {
		db.Close()
		natsClient.Close()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	s := &Server{
		config: cfg,
		db:     db,
		nats:   natsClient,
		stop:   stop,
	}

	repos := repository.NewRepositories(db)
	deps := service.Deps{
		Events:    repos.Events,
		Bookings:  repos.Bookings,
		Checkout:  external.NewStripeClient(cfg.Stripe),
		Mailer:    mailer,
		Publisher: natsClient,
	}

	// Optional backends are only assigned when connected so the interfaces stay nil otherwise
	if cfg.Valkey.Enabled() {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			logger.Get().Warn("Valkey unavailable, continuing without cache", "error", err)
		} else {
			s.valkey = valkeyClient
			s.cache = valkeyClient
			deps.Cache = valkeyClient
			deps.Limiter = ratelimit.NewValkeyLimiter(valkeyClient.Client(), "ratelimit:contact:", cfg.Contact.RateLimit, cfg.Contact.RateWindow)
		}
	}
	if deps.Limiter == nil {
		memLimiter := ratelimit.NewMemoryLimiter(cfg.Contact.RateLimit, cfg.Contact.RateWindow)
		memLimiter.StartSweeper(ctx, cfg.Contact.SweepPeriod)
		deps.Limiter = memLimiter
	}

	if cfg.Elasticsearch.Enabled() {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search disabled", "error", err)
		} else {
			s.search = esClient
			deps.Search = esClient
		}
	}

	s.services = service.NewServices(deps, service.Options{
		AppURL:        cfg.AppURL,
		AdminEmail:    cfg.Mail.AdminEmail,
		ContactInbox:  cfg.Contact.Inbox,
		ContactSender: cfg.Mail.ContactSender,
	})

	s.router = gin.New()
	if err := middleware.TrustProxies(s.router, cfg.TrustedProxies); err != nil {
		s.Cleanup()
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logger())

	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.cache)

	s.router.GET("/events", h.ListEvents)

	s.router.POST("/checkout", h.CreateCheckout)
	s.router.GET("/checkout/:sessionId", h.GetCheckoutStatus)
	s.router.POST("/webhook", h.HandleWebhook)

	s.router.POST("/contact", h.SubmitContact)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck reports the database and optional backends
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	db := s.db.HealthCheck(ctx)

	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	components := gin.H{"database": db}
	if s.valkey != nil {
		components["valkey"] = componentStatus(s.valkey.Ping(ctx))
	}
	if s.search != nil {
		components["elasticsearch"] = componentStatus(s.search.HealthCheck(ctx))
	}
	if s.nats.Enabled() {
		components["nats"] = "enabled"
	}

	c.JSON(status, gin.H{
		"status":     db.Status,
		"service":    serviceName,
		"version":    "1.0.0",
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

func componentStatus(err error) string {
	if err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for tests and the http.Server
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes connections
func (s *Server) Cleanup() error {
	s.stop()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
