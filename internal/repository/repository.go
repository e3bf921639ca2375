package repository

import (
	"github.com/tpprogramming22/weekendinthecity/internal/database"
)

type Repositories struct {
	Events   *EventRepository
	Bookings *BookingRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:   NewEventRepository(db),
		Bookings: NewBookingRepository(db),
	}
}
