package models

import (
	"math"
	"time"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Event represents a bookable community event
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Location    string    `json:"location" db:"location"`
	Price       float64   `json:"price" db:"price"` // EUR
	Capacity    int       `json:"capacity" db:"capacity"`
	Sold        int       `json:"sold" db:"sold"`
	Image       string    `json:"image" db:"image"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SoldOut reports whether no places are left
func (e *Event) SoldOut() bool {
	return e.Sold >= e.Capacity
}

// PriceCents returns the price in euro cents, rounded to the nearest cent
func (e *Event) PriceCents() int64 {
	return int64(math.Round(e.Price * 100))
}

// Remaining returns the number of unsold places, never negative
func (e *Event) Remaining() int {
	if e.Sold >= e.Capacity {
		return 0
	}
	return e.Capacity - e.Sold
}

// Booking represents a single ticket purchase for an event
type Booking struct {
	ID                    string        `json:"id" db:"id"`
	EventID               int64         `json:"event_id" db:"event_id"`
	CustomerName          string        `json:"customer_name" db:"customer_name"`
	CustomerEmail         string        `json:"customer_email" db:"customer_email"`
	AmountPaid            float64       `json:"amount_paid" db:"amount_paid"`
	ReferralName          *string       `json:"referral_name" db:"referral_name"`
	Status                BookingStatus `json:"booking_status" db:"booking_status"`
	StripeSessionID       *string       `json:"stripe_session_id" db:"stripe_session_id"`
	StripePaymentIntentID *string       `json:"stripe_payment_intent_id" db:"stripe_payment_intent_id"`
	CreatedAt             time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingDetails is a booking joined with its event
type BookingDetails struct {
	Booking Booking `json:"booking"`
	Event   Event   `json:"event"`
}

// ConfirmResult describes the outcome of a pending -> confirmed transition
type ConfirmResult struct {
	// Applied is false when the booking was not pending, so nothing changed
	Applied  bool `json:"applied"`
	Sold     int  `json:"sold"`
	Capacity int  `json:"capacity"`
}

// Oversold reports whether the increment pushed sold past capacity
func (r *ConfirmResult) Oversold() bool {
	return r.Applied && r.Sold > r.Capacity
}
