package domain

import "errors"

// Sentinel errors returned by services and adapters. Handlers map these to
// HTTP responses with errors.Is; everything else is treated as an internal
// failure.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("quantity must be a positive integer")
	ErrInvalidCapacity     = errors.New("total seats must be a positive integer")
	ErrShowNotFound        = errors.New("show not found")
	ErrShowInactive        = errors.New("show is not open for booking")
	ErrInsufficientSeats   = errors.New("not enough seats available")
	ErrSeatsConflict       = errors.New("seats were taken by a concurrent booking, please retry")
	ErrCapacityBelowBooked = errors.New("total seats cannot drop below seats already booked")
	ErrShowHasBookings     = errors.New("show has bookings and cannot be deleted")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
