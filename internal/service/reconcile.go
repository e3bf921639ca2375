package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/metrics"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

// ReconcileStats counts what a reconcile pass did
type ReconcileStats struct {
	Checked   int
	Confirmed int
	Cancelled int
	Skipped   int
	Failed    int
}

// ReconcileStale resolves bookings still pending after the provider can no longer
// deliver a webhook for them. Paid sessions go through the normal completion path.
func (s *WebhookService) ReconcileStale(ctx context.Context, olderThan time.Time, limit int) (ReconcileStats, error) {
	var stats ReconcileStats

	bookings, err := s.bookings.ListStalePending(ctx, olderThan, limit)
	if err != nil {
		return stats, fmt.Errorf("failed to list stale bookings: %w", err)
	}

	for i := range bookings {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Checked++

		action := s.reconcileOne(ctx, &bookings[i])
		metrics.ReconciledBookings.WithLabelValues(action).Inc()
		switch action {
		case OutcomeConfirmed:
			stats.Confirmed++
		case OutcomeCancelled:
			stats.Cancelled++
		case OutcomeError, OutcomeMissingMetadata:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}

	return stats, nil
}

func (s *WebhookService) reconcileOne(ctx context.Context, b *models.Booking) string {
	if b.StripeSessionID == nil || *b.StripeSessionID == "" {
		return s.cancel(ctx, b.ID, b.EventID, "no checkout session")
	}

	session, err := s.provider.GetCheckoutSession(ctx, *b.StripeSessionID)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return s.cancel(ctx, b.ID, b.EventID, "checkout session not found")
	}
	if err != nil {
		logger.WithContext(ctx).Error("Failed to fetch checkout session",
			"error", err,
			"booking_id", b.ID,
			"session_id", *b.StripeSessionID)
		return OutcomeError
	}

	// The stored booking is authoritative for which row to update
	if session.Metadata == nil {
		session.Metadata = map[string]string{}
	}
	session.Metadata[models.MetadataBookingID] = b.ID
	session.Metadata[models.MetadataEventID] = strconv.FormatInt(b.EventID, 10)

	switch session.Status {
	case models.CheckoutSessionComplete:
		return s.CompleteCheckout(ctx, session)
	case models.CheckoutSessionExpired:
		return s.ExpireCheckout(ctx, session, "session expired")
	default:
		return OutcomeNoop
	}
}
