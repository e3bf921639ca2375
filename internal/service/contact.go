package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/email"
	"github.com/tpprogramming22/weekendinthecity/internal/logger"
	"github.com/tpprogramming22/weekendinthecity/internal/metrics"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
	"github.com/tpprogramming22/weekendinthecity/internal/ratelimit"
)

const MsgMissingContactFields = "All fields are required"

// deliveryChecker is implemented by mailers that can run without a transport
type deliveryChecker interface {
	Enabled() bool
}

type ContactService struct {
	limiter ratelimit.Limiter
	mailer  Mailer
	inbox   string
	sender  string
	now     func() time.Time
}

func NewContactService(limiter ratelimit.Limiter, mailer Mailer, inbox, sender string) *ContactService {
	return &ContactService{
		limiter: limiter,
		mailer:  mailer,
		inbox:   inbox,
		sender:  sender,
		now:     time.Now,
	}
}

// Submit forwards a contact form message to the inbox. The rate limit is checked
// first, so submissions later rejected as spam or invalid still use up the window.
func (s *ContactService) Submit(ctx context.Context, clientKey string, req *models.ContactRequest) error {
	if err := s.checkRate(ctx, clientKey); err != nil {
		return err
	}

	if req.Honeypot != "" {
		logger.WithContext(ctx).Info("Contact form honeypot triggered", "client", clientKey)
		return apperrors.ErrSpam
	}

	msg := email.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return apperrors.NewValidation(MsgMissingContactFields)
	}
	if !validEmail(msg.Email) {
		return apperrors.NewValidation(MsgInvalidEmail)
	}

	// A dropped message must not be reported to the visitor as sent
	if dc, ok := s.mailer.(deliveryChecker); ok && !dc.Enabled() {
		metrics.EmailsSent.WithLabelValues("contact", "disabled").Inc()
		logger.WithContext(ctx).Error("Contact message not sent, mail delivery is disabled")
		return fmt.Errorf("%w: mail delivery disabled", apperrors.ErrSendFailed)
	}

	content, err := email.RenderContactMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSendFailed, err)
	}

	err = s.mailer.Send(ctx, &models.EmailMessage{
		From:    s.sender,
		To:      []string{s.inbox},
		ReplyTo: []string{msg.Email},
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	metrics.EmailsSent.WithLabelValues("contact", metrics.Result(err)).Inc()
	if err != nil {
		logger.WithContext(ctx).Error("Failed to send contact message", "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrSendFailed, err)
	}

	logger.WithContext(ctx).Info("Contact message sent", "client", clientKey)
	return nil
}

func (s *ContactService) checkRate(ctx context.Context, clientKey string) error {
	if s.limiter == nil {
		return nil
	}

	res, err := s.limiter.Allow(ctx, clientKey)
	if err != nil {
		logger.WithContext(ctx).Warn("Rate limiter unavailable, allowing request", "error", err)
		return nil
	}
	if !res.Allowed {
		metrics.ContactRateLimited.Inc()
		logger.WithContext(ctx).Info("Contact form rate limited",
			"client", clientKey,
			"count", res.Count)
		return &apperrors.RateLimitError{RetryAfter: res.RetryAfter(s.now())}
	}
	return nil
}
