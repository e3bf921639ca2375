package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	apperrors "github.com/tpprogramming22/weekendinthecity/internal/errors"
	"github.com/tpprogramming22/weekendinthecity/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

const completedPayload = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "api_version": "2020-08-27",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "status": "complete",
      "payment_status": "paid",
      "payment_intent": "pi_123",
      "metadata": {"booking_id": "b-1", "event_id": "3"}
    }
  }
}`

func signedHeader(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestParseWebhookCompleted(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(completedPayload)

	event, err := c.ParseWebhook(payload, signedHeader(t, payload, testWebhookSecret))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, models.WebhookCheckoutCompleted, event.Type)
	require.NotNil(t, event.Session)
	assert.Equal(t, "cs_test_1", event.Session.ID)
	assert.Equal(t, "pi_123", event.Session.PaymentIntentID)
	assert.Equal(t, "b-1", event.Session.Metadata[models.MetadataBookingID])
	assert.Equal(t, "3", event.Session.Metadata[models.MetadataEventID])
}

func TestParseWebhookRejectsWrongSecret(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(completedPayload)

	_, err := c.ParseWebhook(payload, signedHeader(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestParseWebhookRejectsTamperedBody(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(completedPayload)
	header := signedHeader(t, payload, testWebhookSecret)

	tampered := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{}}}`)
	_, err := c.ParseWebhook(tampered, header)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestParseWebhookRejectsEmptySecret(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: ""})
	payload := []byte(completedPayload)

	event, err := c.ParseWebhook(payload, signedHeader(t, payload, ""))
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
	assert.Nil(t, event)
}

func TestParseWebhookMalformedSession(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(`{"id":"evt_3","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_3","object":"checkout.session","metadata":"not-a-map"}}}`)

	event, err := c.ParseWebhook(payload, signedHeader(t, payload, testWebhookSecret))
	assert.ErrorIs(t, err, apperrors.ErrMalformedEvent)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidSignature)
	require.NotNil(t, event)
	assert.Equal(t, "evt_3", event.ID)
	assert.Equal(t, models.WebhookCheckoutCompleted, event.Type)
	assert.Nil(t, event.Session)
}

func TestParseWebhookMissingSignature(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})

	_, err := c.ParseWebhook([]byte(completedPayload), "")
	assert.ErrorIs(t, err, apperrors.ErrMissingSignature)
}

func TestParseWebhookOtherType(t *testing.T) {
	c := NewStripeClient(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret})
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge"}}}`)

	event, err := c.ParseWebhook(payload, signedHeader(t, payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", event.Type)
	assert.Nil(t, event.Session)
}

func newTestStripeClient(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeClientWithBackends(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret},
		&stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestCreateCheckoutSessionParams(t *testing.T) {
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		assert.Equal(t, "true", r.PostForm.Get("allow_promotion_codes"))
		assert.Equal(t, "anna@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "2550", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "Beer Garden Social", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[0][quantity]"))
		assert.Equal(t, "b-1", r.PostForm.Get("metadata[booking_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1","status":"open","payment_status":"unpaid","metadata":{"booking_id":"b-1"}}`))
	})

	session, err := c.CreateCheckoutSession(context.Background(), &models.CheckoutSessionParams{
		ProductName:     "Beer Garden Social",
		UnitAmountCents: 2550,
		CustomerEmail:   "anna@example.com",
		SuccessURL:      "http://localhost:3000/booking-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "http://localhost:3000/events?canceled=true",
		Metadata:        map[string]string{models.MetadataBookingID: "b-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	assert.Equal(t, models.CheckoutSessionOpen, session.Status)
}

func TestCreateCheckoutSessionProviderMessage(t *testing.T) {
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid email address: nope","type":"invalid_request_error"}}`))
	})

	_, err := c.CreateCheckoutSession(context.Background(), &models.CheckoutSessionParams{
		ProductName:     "Isar Walk",
		UnitAmountCents: 1000,
		CustomerEmail:   "nope",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPaymentProvider))
	assert.Equal(t, "Invalid email address: nope", err.Error())
}

func TestGetCheckoutSessionMissing(t *testing.T) {
	c := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"resource_missing","message":"No such checkout.session","type":"invalid_request_error"}}`))
	})

	_, err := c.GetCheckoutSession(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}
