package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

// Referral discount offered on the booking form
const (
	ReferralCouponID   = "bringafriend25"
	ReferralCouponName = "BRINGAFRIEND25"
	ReferralPromoCode  = "BRINGAFRIEND25"
	// 10 EUR, applied once
	ReferralAmountOffCents = 1000
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// StripeClient talks to the Stripe API for checkout sessions and verifies
// Stripe webhook signatures.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripeClient(cfg StripeConfig) *StripeClient {
	return NewStripeClientWithBackends(cfg, nil)
}

// NewStripeClientWithBackends allows pointing the client at a different API host
func NewStripeClientWithBackends(cfg StripeConfig, backends *stripe.Backends) *StripeClient {
	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyEUR)
	}

	return &StripeClient{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}
}

// CreateCheckoutSession opens a hosted card checkout for a single line item
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p *models.CheckoutSessionParams) (*models.CheckoutSession, error) {
	currency := p.Currency
	if currency == "" {
		currency = c.currency
	}
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.ProductName),
	}
	if p.ProductDescription != "" {
		productData.Description = stripe.String(p.ProductDescription)
	}
	if p.ProductImage != "" {
		productData.Images = stripe.StringSlice([]string{p.ProductImage})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(p.UnitAmountCents),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
		CustomerEmail:       stripe.String(p.CustomerEmail),
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(p.SuccessURL),
		CancelURL:           stripe.String(p.CancelURL),
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerError("create checkout session", err)
	}

	return toCheckoutSession(s), nil
}

// GetCheckoutSession fetches the current state of a checkout session
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, providerError("get checkout session", err)
	}

	return toCheckoutSession(s), nil
}

// ParseWebhook verifies the Stripe-Signature header against the raw payload
// and returns the normalized event. Any verification failure yields
// ErrInvalidSignature. A verified event whose session cannot be decoded yields
// ErrMalformedEvent together with the event id and type.
func (c *StripeClient) ParseWebhook(payload []byte, signature string) (*models.WebhookEvent, error) {
	if signature == "" {
		return nil, apperrors.ErrMissingSignature
	}
	// An empty key would let anyone produce a valid signature
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", apperrors.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}

	out := &models.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch out.Type {
	case models.WebhookCheckoutCompleted, models.WebhookCheckoutExpired:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return out, fmt.Errorf("%w: checkout session: %v", apperrors.ErrMalformedEvent, err)
		}
		out.Session = toCheckoutSession(&s)
	}

	return out, nil
}

// EnsurePromotionCode creates the referral coupon and its promotion code if
// they do not exist yet. It reports whether anything was created.
func (c *StripeClient) EnsurePromotionCode(ctx context.Context) (bool, error) {
	created := false

	getParams := &stripe.CouponParams{}
	getParams.Context = ctx
	if _, err := c.api.Coupons.Get(ReferralCouponID, getParams); err != nil {
		if !isResourceMissing(err) {
			return false, providerError("get coupon", err)
		}

		couponParams := &stripe.CouponParams{
			ID:        stripe.String(ReferralCouponID),
			Name:      stripe.String(ReferralCouponName),
			AmountOff: stripe.Int64(ReferralAmountOffCents),
			Currency:  stripe.String(c.currency),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
		}
		couponParams.Context = ctx
		if _, err := c.api.Coupons.New(couponParams); err != nil {
			return false, providerError("create coupon", err)
		}
		slog.Info("Created referral coupon", "coupon_id", ReferralCouponID)
		created = true
	}

	listParams := &stripe.PromotionCodeListParams{Code: stripe.String(ReferralPromoCode)}
	listParams.Context = ctx
	it := c.api.PromotionCodes.List(listParams)
	for it.Next() {
		if it.PromotionCode().Code == ReferralPromoCode {
			return created, nil
		}
	}
	if err := it.Err(); err != nil {
		return created, providerError("list promotion codes", err)
	}

	promoParams := &stripe.PromotionCodeParams{
		Coupon: stripe.String(ReferralCouponID),
		Code:   stripe.String(ReferralPromoCode),
		Active: stripe.Bool(true),
	}
	promoParams.Context = ctx
	if _, err := c.api.PromotionCodes.New(promoParams); err != nil {
		return created, providerError("create promotion code", err)
	}
	slog.Info("Created referral promotion code", "code", ReferralPromoCode)

	return true, nil
}

// AccountStatus checks that the secret key works and returns the account id
func (c *StripeClient) AccountStatus() (string, error) {
	acct, err := c.api.Accounts.Get()
	if err != nil {
		return "", providerError("retrieve account", err)
	}
	return acct.ID, nil
}

func toCheckoutSession(s *stripe.CheckoutSession) *models.CheckoutSession {
	out := &models.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	return out
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}

func providerError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		slog.Error("Stripe request failed",
			"op", op, "type", stripeErr.Type, "code", stripeErr.Code,
			"status", stripeErr.HTTPStatusCode, "request_id", stripeErr.RequestID)
		return &apperrors.ProviderError{Message: stripeErr.Msg, Err: err}
	}
	return &apperrors.ProviderError{Err: fmt.Errorf("%s: %w", op, err)}
}
