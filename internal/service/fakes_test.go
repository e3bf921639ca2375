package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/ratelimit"
)

// memStore keeps events and bookings together so Confirm can update both
type memStore struct {
	mu        sync.Mutex
	events    map[int64]*models.Event
	bookings  map[string]*models.Booking
	nextID    int
	createErr error
	listErr   error
}

func newMemStore(events ...models.Event) *memStore {
	s := &memStore{
		events:   map[int64]*models.Event{},
		bookings: map[string]*models.Booking{},
	}
	for i := range events {
		e := events[i]
		s.events[e.ID] = &e
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) List(_ context.Context, category string) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := []models.Event{}
	for _, e := range s.events {
		if category == "" || e.Category == category {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Event{}
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	b.ID = fmt.Sprintf("booking-%d", s.nextID)
	b.Status = models.BookingStatusPending
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) SetSessionID(_ context.Context, bookingID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	b.StripeSessionID = &sessionID
	return nil
}

func (s *memStore) Confirm(_ context.Context, bookingID string, eventID int64, paymentIntentID string) (*models.ConfirmResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.EventID != eventID || b.Status != models.BookingStatusPending {
		return &models.ConfirmResult{}, nil
	}
	b.Status = models.BookingStatusConfirmed
	if paymentIntentID != "" {
		b.StripePaymentIntentID = &paymentIntentID
	}
	e := s.events[eventID]
	e.Sold++
	return &models.ConfirmResult{Applied: true, Sold: e.Sold, Capacity: e.Capacity}, nil
}

func (s *memStore) Cancel(_ context.Context, bookingID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok || b.Status != models.BookingStatusPending {
		return false, nil
	}
	b.Status = models.BookingStatusCancelled
	return true, nil
}

func (s *memStore) GetWithEvent(_ context.Context, bookingID string) (*models.BookingDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, nil
	}
	return &models.BookingDetails{Booking: *b, Event: *s.events[b.EventID]}, nil
}

func (s *memStore) GetBySessionID(_ context.Context, sessionID string) (*models.BookingDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.StripeSessionID != nil && *b.StripeSessionID == sessionID {
			return &models.BookingDetails{Booking: *b, Event: *s.events[b.EventID]}, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.Status == models.BookingStatusPending && b.CreatedAt.Before(olderThan) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) booking(id string) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bookings[id]
}

func (s *memStore) event(id int64) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.events[id]
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) age(bookingID string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[bookingID].CreatedAt = time.Now().Add(-d)
}

const validSignature = "t=1,v1=valid"

// fakeProvider accepts only validSignature and returns the queued webhook event
type fakeProvider struct {
	mu        sync.Mutex
	created   []*models.CheckoutSessionParams
	sessions  map[string]*models.CheckoutSession
	createErr error
	webhook   *models.WebhookEvent
	parseErr  error
	getErr    error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: map[string]*models.CheckoutSession{}}
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, params *models.CheckoutSessionParams) (*models.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, params)
	id := fmt.Sprintf("cs_test_%d", len(p.created))
	meta := map[string]string{}
	for k, v := range params.Metadata {
		meta[k] = v
	}
	session := &models.CheckoutSession{
		ID:       id,
		URL:      "https://checkout.stripe.com/c/pay/" + id,
		Status:   models.CheckoutSessionOpen,
		Metadata: meta,
	}
	p.sessions[id] = session
	return session, nil
}

func (p *fakeProvider) GetCheckoutSession(_ context.Context, sessionID string) (*models.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (p *fakeProvider) ParseWebhook(_ []byte, signature string) (*models.WebhookEvent, error) {
	if signature != validSignature {
		return nil, errors.New("no valid signature found")
	}
	return p.webhook, p.parseErr
}

func (p *fakeProvider) setStatus(sessionID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sessionID].Status = status
}

func (p *fakeProvider) session(sessionID string) *models.CheckoutSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *p.sessions[sessionID]
	return &cp
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []*models.EmailMessage
	err      error
	disabled bool
}

func (m *fakeMailer) Enabled() bool {
	return !m.disabled
}

func (m *fakeMailer) Send(_ context.Context, msg *models.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []*models.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.EmailMessage(nil), m.sent...)
}

type published struct {
	Subject string
	Data    interface{}
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{Subject: subject, Data: data})
	return nil
}

type fakeCache struct {
	invalidations int
}

func (c *fakeCache) GetEventsListRaw(context.Context) ([]byte, int64, error) { return nil, 0, nil }
func (c *fakeCache) SetEventsList(context.Context, int64, any) error         { return nil }
func (c *fakeCache) InvalidateEventsList(context.Context) error {
	c.invalidations++
	return nil
}

type fakeSearcher struct {
	ids   []int64
	err   error
	calls int
}

func (f *fakeSearcher) SearchIDs(context.Context, string, string, int) ([]int64, error) {
	f.calls++
	return f.ids, f.err
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("connection refused")
}

func munichEvent(id int64, capacity, sold int, price float64) models.Event {
	return models.Event{
		ID:       id,
		Title:    "Beer Garden Social",
		Date:     "2025-07-12",
		Time:     "18:00",
		Location: "Englischer Garten",
		Price:    price,
		Capacity: capacity,
		Sold:     sold,
		Image:    "https://example.com/beer.jpg",
		Category: "social",
	}
}
