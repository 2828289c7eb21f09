package domain

import (
	"time"

	"github.com/google/uuid"
)

// Show is a bookable event with a fixed seat capacity. AvailableSeats always
// equals TotalSeats minus the quantities of all bookings for the show, and
// never goes below zero.
type Show struct {
	ID             uuid.UUID
	Title          string
	Description    string
	StartsAt       time.Time
	Location       string
	TotalSeats     int32
	AvailableSeats int32
	PriceCents     int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewShow builds a show with AvailableSeats initialized to the full capacity.
func NewShow(title, description string, startsAt time.Time, location string, totalSeats int32, priceCents int64, isActive bool) (Show, error) {
	if totalSeats <= 0 {
		return Show{}, ErrInvalidCapacity
	}
	if priceCents < 0 || title == "" || location == "" {
		return Show{}, ErrInvalidInput
	}
	now := time.Now().UTC()
	return Show{
		ID:             uuid.New(),
		Title:          title,
		Description:    description,
		StartsAt:       startsAt,
		Location:       location,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		PriceCents:     priceCents,
		IsActive:       isActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Booked returns the number of seats committed to bookings.
func (s *Show) Booked() int32 {
	return s.TotalSeats - s.AvailableSeats
}

// ReviseCapacity changes TotalSeats and shifts AvailableSeats by the same
// delta, so already-booked seats stay accounted for. The new capacity must
// cover every seat already booked.
func (s *Show) ReviseCapacity(newTotal int32) error {
	if newTotal <= 0 {
		return ErrInvalidCapacity
	}
	if newTotal < s.Booked() {
		return ErrCapacityBelowBooked
	}
	s.AvailableSeats += newTotal - s.TotalSeats
	if s.AvailableSeats < 0 {
		// Unreachable after the Booked check; floor it anyway.
		s.AvailableSeats = 0
	}
	s.TotalSeats = newTotal
	return nil
}
