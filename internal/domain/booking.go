package domain

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a confirmed reservation of a quantity of seats for one show by
// one user. Bookings are immutable once created; there is no cancel path.
type Booking struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ShowID          uuid.UUID
	Quantity        int32
	TotalPriceCents int64
	CreatedAt       time.Time
}

// NewBooking prices a reservation at quantity times the seat price read in
// the same committing transaction.
func NewBooking(showID, userID uuid.UUID, quantity int32, priceCents int64) Booking {
	return Booking{
		ID:              uuid.New(),
		UserID:          userID,
		ShowID:          showID,
		Quantity:        quantity,
		TotalPriceCents: int64(quantity) * priceCents,
		CreatedAt:       time.Now().UTC(),
	}
}

// BookingRecord is a booking joined with display fields of its show, used by
// history and admin listings.
type BookingRecord struct {
	Booking
	ShowTitle    string
	ShowStartsAt time.Time
	UserEmail    string
}
