package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShow(t *testing.T) {
	s, err := NewShow("Hamlet", "modern staging", time.Now().Add(48*time.Hour), "Globe", 120, 2500, true)
	require.NoError(t, err)
	assert.Equal(t, int32(120), s.TotalSeats)
	assert.Equal(t, int32(120), s.AvailableSeats)
	assert.Equal(t, int32(0), s.Booked())

	_, err = NewShow("Hamlet", "", time.Now(), "Globe", 0, 2500, true)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewShow("", "", time.Now(), "Globe", 10, 2500, true)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewShow("Hamlet", "", time.Now(), "Globe", 10, -1, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestShow_ReviseCapacity(t *testing.T) {
	tests := []struct {
		name          string
		total         int32
		available     int32
		newTotal      int32
		wantErr       error
		wantAvailable int32
	}{
		{"grow", 100, 40, 120, nil, 60},
		{"shrink above booked", 100, 40, 80, nil, 20},
		{"shrink to exactly booked", 100, 40, 60, nil, 0},
		{"shrink below booked", 100, 40, 50, ErrCapacityBelowBooked, 40},
		{"zero", 100, 40, 0, ErrInvalidCapacity, 40},
		{"negative", 100, 40, -5, ErrInvalidCapacity, 40},
		{"no bookings shrink", 100, 100, 1, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Show{TotalSeats: tt.total, AvailableSeats: tt.available}
			err := s.ReviseCapacity(tt.newTotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.total, s.TotalSeats, "failed revision must not mutate")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.newTotal, s.TotalSeats)
			}
			assert.Equal(t, tt.wantAvailable, s.AvailableSeats)
		})
	}
}

func TestNewBooking_Pricing(t *testing.T) {
	show, err := NewShow("Cats", "", time.Now(), "Winter Garden", 10, 2000, true)
	require.NoError(t, err)

	userID := uuid.New()
	b := NewBooking(show.ID, userID, 3, show.PriceCents)
	assert.Equal(t, int64(6000), b.TotalPriceCents)
	assert.Equal(t, int32(3), b.Quantity)
	assert.Equal(t, show.ID, b.ShowID)
	assert.Equal(t, userID, b.UserID)
	assert.False(t, b.CreatedAt.IsZero())
}
