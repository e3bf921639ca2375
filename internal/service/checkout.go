package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/metrics"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const (
	MsgMissingCheckoutFields = "Missing required fields: eventId, customerName, customerEmail"
	MsgInvalidEmail          = "Invalid email address"

	checkoutCurrency = "eur"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

type CheckoutService struct {
	events   EventStore
	bookings BookingStore
	provider CheckoutProvider
	appURL   string
}

func NewCheckoutService(events EventStore, bookings BookingStore, provider CheckoutProvider, appURL string) *CheckoutService {
	return &CheckoutService{
		events:   events,
		bookings: bookings,
		provider: provider,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// CreateSession records a pending booking and opens a hosted checkout session for it.
// The sold out check is a point read; concurrent checkouts for the last place can all pass it.
func (s *CheckoutService) CreateSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CreateCheckoutResponse, error) {
	resp, err := s.createSession(ctx, req)
	metrics.CheckoutSessions.WithLabelValues(checkoutResult(err)).Inc()
	return resp, err
}

func (s *CheckoutService) createSession(ctx context.Context, req *models.CreateCheckoutRequest) (*models.CreateCheckoutResponse, error) {
	name := strings.TrimSpace(req.CustomerName)
	email := strings.TrimSpace(req.CustomerEmail)
	referral := strings.TrimSpace(req.ReferralName)
	eventID := req.EventID.Int64()

	if eventID <= 0 || name == "" || email == "" {
		return nil, apperrors.NewValidation(MsgMissingCheckoutFields)
	}
	if !validEmail(email) {
		return nil, apperrors.NewValidation(MsgInvalidEmail)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	if event.SoldOut() {
		return nil, apperrors.ErrSoldOut
	}

	booking := &models.Booking{
		EventID:       event.ID,
		CustomerName:  name,
		CustomerEmail: email,
		AmountPaid:    event.Price,
	}
	if referral != "" {
		booking.ReferralName = &referral
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Failed to create booking",
			"error", err,
			"event_id", event.ID)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrBookingCreate, err)
	}

	metadata := map[string]string{
		models.MetadataEventID:      strconv.FormatInt(event.ID, 10),
		models.MetadataBookingID:    booking.ID,
		models.MetadataCustomerName: name,
		models.MetadataEventTitle:   event.Title,
	}
	if referral != "" {
		metadata[models.MetadataReferralName] = referral
	}

	session, err := s.provider.CreateCheckoutSession(ctx, &models.CheckoutSessionParams{
		ProductName:        event.Title,
		ProductDescription: fmt.Sprintf("%s at %s - %s", event.Date, event.Time, event.Location),
		ProductImage:       event.Image,
		UnitAmountCents:    event.PriceCents(),
		Currency:           checkoutCurrency,
		Quantity:           1,
		CustomerEmail:      email,
		SuccessURL:         s.appURL + "/booking-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          s.appURL + "/events?canceled=true",
		Metadata:           metadata,
	})
	if err != nil {
		// The booking stays pending; the reconcile job cancels it later
		logger.WithContext(ctx).Error("Failed to create checkout session",
			"error", err,
			"booking_id", booking.ID,
			"event_id", event.ID)
		return nil, err
	}

	if err := s.bookings.SetSessionID(ctx, booking.ID, session.ID); err != nil {
		logger.WithContext(ctx).Error("Failed to store checkout session id",
			"error", err,
			"booking_id", booking.ID,
			"session_id", session.ID)
	}

	logger.WithContext(ctx).Info("Checkout session created",
		"booking_id", booking.ID,
		"event_id", event.ID,
		"session_id", session.ID)

	return &models.CreateCheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
		BookingID: booking.ID,
	}, nil
}

// Status returns the booking behind a checkout session for the success page
func (s *CheckoutService) Status(ctx context.Context, sessionID string) (*models.CheckoutStatusResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	details, err := s.bookings.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if details == nil {
		return nil, apperrors.ErrSessionNotFound
	}

	return &models.CheckoutStatusResponse{
		BookingID:  details.Booking.ID,
		Status:     details.Booking.Status,
		EventTitle: details.Event.Title,
		EventDate:  details.Event.Date,
		EventTime:  details.Event.Time,
		Location:   details.Event.Location,
	}, nil
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, apperrors.ErrPaymentProvider):
		return "provider_error"
	default:
		return "error"
	}
}
