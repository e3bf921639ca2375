package models

// Checkout session metadata keys echoed back by the payment provider
const (
	MetadataEventID      = "event_id"
	MetadataBookingID    = "booking_id"
	MetadataCustomerName = "customer_name"
	MetadataEventTitle   = "event_title"
	MetadataReferralName = "referral_name"
)

// Webhook event types handled by the booking flow
const (
	WebhookCheckoutCompleted = "checkout.session.completed"
	WebhookCheckoutExpired   = "checkout.session.expired"
)

// Checkout session states reported by the provider
const (
	CheckoutSessionOpen     = "open"
	CheckoutSessionComplete = "complete"
	CheckoutSessionExpired  = "expired"
)

// CheckoutSessionParams describes a single-item hosted checkout
type CheckoutSessionParams struct {
	ProductName        string
	ProductDescription string
	ProductImage       string
	UnitAmountCents    int64
	Currency           string
	Quantity           int64
	CustomerEmail      string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CheckoutSession is the provider-independent view of a checkout session
type CheckoutSession struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	Metadata        map[string]string
}

// WebhookEvent is a verified provider notification
type WebhookEvent struct {
	ID   string
	Type string
	// Session is set for checkout.session.* events
	Session *CheckoutSession
}

// EmailMessage is a rendered message ready for the mail transport
type EmailMessage struct {
	// From overrides the transport's default sender when set
	From    string
	To      []string
	ReplyTo []string
	Subject string
	HTML    string
	Text    string
}
