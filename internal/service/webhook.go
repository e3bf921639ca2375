package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/email"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/metrics"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

// Webhook outcomes, also used as metric labels
const (
	OutcomeConfirmed       = "confirmed"
	OutcomeDuplicate       = "duplicate"
	OutcomeCancelled       = "cancelled"
	OutcomeNoop            = "noop"
	OutcomeIgnored         = "ignored"
	OutcomeMissingMetadata = "missing_metadata"
	OutcomeMalformed       = "malformed"
	OutcomeError           = "error"
)

type WebhookService struct {
	bookings   BookingStore
	provider   CheckoutProvider
	mailer     Mailer
	publisher  Publisher
	cache      EventsCache
	adminEmail string
}

func NewWebhookService(bookings BookingStore, provider CheckoutProvider, mailer Mailer, publisher Publisher, cache EventsCache, adminEmail string) *WebhookService {
	return &WebhookService{
		bookings:   bookings,
		provider:   provider,
		mailer:     mailer,
		publisher:  publisher,
		cache:      cache,
		adminEmail: adminEmail,
	}
}

// Handle verifies and applies a payment notification. Only signature problems are
// returned as errors; processing failures are logged so the provider is not asked to retry.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	if signature == "" {
		return apperrors.ErrMissingSignature
	}

	event, err := s.provider.ParseWebhook(payload, signature)
	if errors.Is(err, apperrors.ErrMalformedEvent) && event != nil {
		logger.WithContext(ctx).Error("Verified webhook could not be decoded",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		metrics.WebhookEvents.WithLabelValues(event.Type, OutcomeMalformed).Inc()
		return nil
	}
	if err != nil {
		logger.WithContext(ctx).Warn("Webhook signature verification failed", "error", err)
		if errors.Is(err, apperrors.ErrInvalidSignature) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}

	var outcome string
	switch {
	case event.Type == models.WebhookCheckoutCompleted && event.Session != nil:
		outcome = s.CompleteCheckout(ctx, event.Session)
	case event.Type == models.WebhookCheckoutExpired && event.Session != nil:
		outcome = s.ExpireCheckout(ctx, event.Session, "session expired")
	default:
		outcome = OutcomeIgnored
		logger.WithContext(ctx).Debug("Ignoring webhook event",
			"event_id", event.ID,
			"event_type", event.Type)
	}

	metrics.WebhookEvents.WithLabelValues(event.Type, outcome).Inc()
	return nil
}

// CompleteCheckout confirms the booking referenced by a paid session. It is safe to
// call more than once for the same session: only the first call changes state.
func (s *WebhookService) CompleteCheckout(ctx context.Context, session *models.CheckoutSession) string {
	log := logger.WithContext(ctx).With("session_id", session.ID)

	bookingID := session.Metadata[models.MetadataBookingID]
	eventID, err := strconv.ParseInt(session.Metadata[models.MetadataEventID], 10, 64)
	if bookingID == "" || err != nil {
		log.Error("Checkout session is missing booking metadata",
			"booking_id", bookingID,
			"event_id", session.Metadata[models.MetadataEventID])
		return OutcomeMissingMetadata
	}
	log = log.With("booking_id", bookingID, "event_id", eventID)

	result, err := s.bookings.Confirm(ctx, bookingID, eventID, session.PaymentIntentID)
	if err != nil {
		log.Error("Failed to confirm booking", "error", err)
		return OutcomeError
	}
	if !result.Applied {
		log.Info("Booking already processed, skipping")
		return OutcomeDuplicate
	}

	if result.Oversold() {
		metrics.Oversold.Inc()
		log.Warn("Event sold past capacity",
			"sold", result.Sold,
			"capacity", result.Capacity)
	}

	log.Info("Booking confirmed",
		"sold", result.Sold,
		"capacity", result.Capacity)

	s.publish(ctx, models.EventBookingConfirmed, models.BookingConfirmedEvent{
		BookingID:       bookingID,
		EventID:         eventID,
		PaymentIntentID: session.PaymentIntentID,
		Sold:            result.Sold,
		Capacity:        result.Capacity,
		Timestamp:       time.Now(),
	})
	s.invalidateEvents(ctx)
	s.sendConfirmationEmails(ctx, bookingID)

	return OutcomeConfirmed
}

// ExpireCheckout cancels the pending booking of an abandoned session
func (s *WebhookService) ExpireCheckout(ctx context.Context, session *models.CheckoutSession, reason string) string {
	bookingID := session.Metadata[models.MetadataBookingID]
	if bookingID == "" {
		logger.WithContext(ctx).Warn("Expired session is missing booking metadata", "session_id", session.ID)
		return OutcomeMissingMetadata
	}
	eventID, _ := strconv.ParseInt(session.Metadata[models.MetadataEventID], 10, 64)
	return s.cancel(ctx, bookingID, eventID, reason)
}

func (s *WebhookService) cancel(ctx context.Context, bookingID string, eventID int64, reason string) string {
	cancelled, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to cancel booking",
			"error", err,
			"booking_id", bookingID)
		return OutcomeError
	}
	if !cancelled {
		return OutcomeNoop
	}

	logger.WithContext(ctx).Info("Booking cancelled",
		"booking_id", bookingID,
		"reason", reason)

	s.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
		BookingID: bookingID,
		EventID:   eventID,
		Reason:    reason,
		Timestamp: time.Now(),
	})
	return OutcomeCancelled
}

func (s *WebhookService) sendConfirmationEmails(ctx context.Context, bookingID string) {
	details, err := s.bookings.GetWithEvent(ctx, bookingID)
	if err != nil || details == nil {
		logger.WithContext(ctx).Error("Failed to load booking for confirmation email",
			"error", err,
			"booking_id", bookingID)
		return
	}

	b, ev := details.Booking, details.Event
	confirmation := email.BookingConfirmation{
		CustomerName:  b.CustomerName,
		EventTitle:    ev.Title,
		EventDate:     ev.Date,
		EventTime:     ev.Time,
		EventLocation: ev.Location,
		AmountPaid:    b.AmountPaid,
		BookingID:     b.ID,
	}

	content, err := email.RenderBookingConfirmation(confirmation)
	if err == nil {
		err = s.send(ctx, []string{b.CustomerEmail}, content)
	}
	s.recordEmail(ctx, "confirmation", bookingID, err)

	if s.adminEmail == "" {
		return
	}
	admin := email.AdminNotification{
		BookingConfirmation: confirmation,
		CustomerEmail:       b.CustomerEmail,
		Sold:                ev.Sold,
		Capacity:            ev.Capacity,
	}
	if b.ReferralName != nil {
		admin.ReferralName = *b.ReferralName
	}
	content, err = email.RenderAdminNotification(admin)
	if err == nil {
		err = s.send(ctx, []string{s.adminEmail}, content)
	}
	s.recordEmail(ctx, "admin", bookingID, err)
}

func (s *WebhookService) send(ctx context.Context, to []string, content *email.Content) error {
	if s.mailer == nil {
		return nil
	}
	return s.mailer.Send(ctx, &models.EmailMessage{
		To:      to,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
}

func (s *WebhookService) recordEmail(ctx context.Context, kind, bookingID string, err error) {
	metrics.EmailsSent.WithLabelValues(kind, metrics.Result(err)).Inc()
	if err != nil {
		// The booking stays confirmed
		logger.WithContext(ctx).Error("Failed to send email",
			"error", err,
			"kind", kind,
			"booking_id", bookingID)
	}
}

func (s *WebhookService) publish(ctx context.Context, subject string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}

func (s *WebhookService) invalidateEvents(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEventsList(ctx); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate events cache", "error", err)
	}
}
