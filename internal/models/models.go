package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID accepts an identifier sent either as a JSON number or as a numeric string
type FlexibleID int64

// UnmarshalJSON parses 12, "12" and " 12 "
func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	str := strings.TrimSpace(strings.Trim(string(data), `"`))
	if str == "" || str == "null" {
		*id = 0
		return nil
	}

	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id value: %s", str)
	}
	*id = FlexibleID(v)
	return nil
}

// Int64 returns the underlying value
func (id FlexibleID) Int64() int64 {
	return int64(id)
}

// CreateCheckoutRequest - body of POST /checkout
type CreateCheckoutRequest struct {
	EventID       FlexibleID `json:"eventId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	ReferralName  string     `json:"referralName,omitempty"`
}

// CreateCheckoutResponse - response of POST /checkout
type CreateCheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	BookingID string `json:"bookingId"`
}

// CheckoutStatusResponse - response of GET /checkout/:sessionId
type CheckoutStatusResponse struct {
	BookingID  string        `json:"bookingId"`
	Status     BookingStatus `json:"status"`
	EventTitle string        `json:"eventTitle"`
	EventDate  string        `json:"eventDate"`
	EventTime  string        `json:"eventTime"`
	Location   string        `json:"location"`
}

// WebhookResponse - response of POST /webhook
type WebhookResponse struct {
	Received bool `json:"received"`
}

// EventResponse - a single event as exposed to the display layer
type EventResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	Capacity    int     `json:"capacity"`
	Sold        int     `json:"sold"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// ListEventsResponse - response of GET /events
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}

// NewEventResponse converts a stored event to its response form
func NewEventResponse(e *Event) EventResponse {
	return EventResponse{
		ID:          strconv.FormatInt(e.ID, 10),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Price:       e.Price,
		Capacity:    e.Capacity,
		Sold:        e.Sold,
		Image:       e.Image,
		Category:    e.Category,
	}
}

// ContactRequest - body of POST /contact.
// Fields are validated by the contact service so that the check order is fixed.
type ContactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Honeypot string `json:"honeypot"`
}

// ContactResponse - response of POST /contact
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
