package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can create bookings. Admin users additionally
// manage the show catalog and can inspect all bookings.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
