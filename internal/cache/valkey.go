package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/rueidis"
)

// The cached list lives under a key stamped with the current version.
// Invalidation bumps the version, so a list read from the database before
// the bump can only be stored under a key nobody reads anymore.
const eventsListVersionKey = "events:list:version"

func eventsListKey(version int64) string {
	return fmt.Sprintf("events:list:v%d", version)
}

type Config struct {
	// Addr is host:port of Valkey. The cache is disabled when empty.
	Addr          string
	Password      string
	EventsListTTL time.Duration
}

// Enabled reports whether a Valkey address is configured
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// ValkeyClient caches the public events list and exposes the connection for
// shared rate limiting.
type ValkeyClient struct {
	client        rueidis.Client
	eventsListTTL time.Duration
}

func NewValkeyClient(cfg Config) (*ValkeyClient, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("Connected to Valkey", "addr", cfg.Addr)
	return NewValkeyClientWith(client, cfg.EventsListTTL), nil
}

// NewValkeyClientWith wraps an existing rueidis client
func NewValkeyClientWith(client rueidis.Client, eventsListTTL time.Duration) *ValkeyClient {
	if eventsListTTL <= 0 {
		eventsListTTL = 30 * time.Second
	}
	return &ValkeyClient{client: client, eventsListTTL: eventsListTTL}
}

// Client returns the underlying connection
func (v *ValkeyClient) Client() rueidis.Client {
	return v.client
}

// GetEventsListRaw returns the cached GET /events response body for the
// current version, or nil on a miss. The version must be passed back to
// SetEventsList when the list is rebuilt.
func (v *ValkeyClient) GetEventsListRaw(ctx context.Context) ([]byte, int64, error) {
	version, err := v.client.Do(ctx, v.client.B().Get().Key(eventsListVersionKey).Build()).AsInt64()
	if err != nil && !rueidis.IsRedisNil(err) {
		return nil, 0, fmt.Errorf("cache version lookup error: %w", err)
	}

	raw, err := v.client.Do(ctx, v.client.B().Get().Key(eventsListKey(version)).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, version, nil
		}
		return nil, 0, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, version, nil
}

// SetEventsList stores the GET /events response body under the version read
// before the database query
func (v *ValkeyClient) SetEventsList(ctx context.Context, version int64, response any) error {
	payload, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal events list: %w", err)
	}

	seconds := int64(v.eventsListTTL.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	cmd := v.client.B().Set().Key(eventsListKey(version)).Value(rueidis.BinaryString(payload)).
		ExSeconds(seconds).Build()
	return v.client.Do(ctx, cmd).Error()
}

// InvalidateEventsList moves readers to a new version so the next read sees fresh sold counts
func (v *ValkeyClient) InvalidateEventsList(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Incr().Key(eventsListVersionKey).Build()).Error()
}

// Ping checks the connection, used by GET /health
func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}

func (v *ValkeyClient) Close() error {
	v.client.Close()
	return nil
}
