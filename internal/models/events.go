package models

import "time"

// NATS Event Types
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingConfirmedEvent is published after a paid booking is confirmed
type BookingConfirmedEvent struct {
	BookingID       string    `json:"booking_id"`
	EventID         int64     `json:"event_id"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Sold            int       `json:"sold"`
	Capacity        int       `json:"capacity"`
	Timestamp       time.Time `json:"timestamp"`
}

// BookingCancelledEvent is published when an unpaid booking is cancelled
type BookingCancelledEvent struct {
	BookingID string    `json:"booking_id"`
	EventID   int64     `json:"event_id,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
