package rabbit

import (
	"time"

	"github.com/google/uuid"
)

// BookingEvent is the payload published under booking.* routing keys.
type BookingEvent struct {
	Type            string    `json:"type"`
	BookingID       uuid.UUID `json:"booking_id"`
	ShowID          uuid.UUID `json:"show_id"`
	UserID          uuid.UUID `json:"user_id"`
	Quantity        int32     `json:"quantity"`
	TotalPriceCents int64     `json:"total_price_cents"`
	At              time.Time `json:"at"`
}

// ShowEvent is the payload published under show.* routing keys after admin
// catalog changes.
type ShowEvent struct {
	Type    string    `json:"type"`
	ShowID  uuid.UUID `json:"show_id"`
	AdminID uuid.UUID `json:"admin_id"`
	At      time.Time `json:"at"`
}
