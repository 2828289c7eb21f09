// Package booking implements the booking ledger: reserving seats against a
// show and reading booking history.
package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/showtix/showtix/internal/adapters/rabbit"
	"github.com/showtix/showtix/internal/domain"
	"github.com/showtix/showtix/internal/observability"
)

// Store is the persistence surface the ledger needs. ReserveSeats must
// perform the seat decrement and the booking insert atomically, and return
// domain.ErrSeatsConflict when the conditional decrement matches no row.
type Store interface {
	GetShow(ctx context.Context, id uuid.UUID) (domain.Show, error)
	ReserveSeats(ctx context.Context, showID, userID uuid.UUID, quantity int32) (domain.Booking, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.BookingRecord, error)
	ListAllBookings(ctx context.Context) ([]domain.BookingRecord, error)
}

// EventPublisher emits booking events after commit. Implementations must be
// safe to call concurrently; failures are logged, never surfaced.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

type Service struct {
	store     Store
	publisher EventPublisher
	logger    observability.Logger
}

// NewService builds the ledger. publisher may be nil when events are not
// wired (tests, notifier-less deployments).
func NewService(store Store, publisher EventPublisher, logger observability.Logger) *Service {
	return &Service{store: store, publisher: publisher, logger: logger}
}

// Reserve books quantity seats on a show for a user.
//
// The check runs in two phases. The advisory phase reads the show and fails
// fast on bad input, a missing or hidden show, or an obviously short seat
// count; nothing is written. The commit phase delegates to the store's
// atomic decrement-and-insert; if that reports a conflict after the advisory
// check passed, another reservation won the race, and the caller is told to
// retry rather than that their input was wrong.
func (s *Service) Reserve(ctx context.Context, showID, userID uuid.UUID, quantity int32) (domain.Booking, error) {
	if quantity <= 0 {
		return domain.Booking{}, domain.ErrInvalidQuantity
	}

	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !show.IsActive {
		return domain.Booking{}, domain.ErrShowInactive
	}
	if quantity > show.AvailableSeats {
		return domain.Booking{}, domain.ErrInsufficientSeats
	}

	booking, err := s.store.ReserveSeats(ctx, showID, userID, quantity)
	if errors.Is(err, domain.ErrSeatsConflict) {
		observability.SeatConflictsTotal.Inc()
		// The decrement can also miss because the show was deleted or
		// deactivated since the advisory read. Re-read to report the
		// precise cause.
		current, getErr := s.store.GetShow(ctx, showID)
		if getErr != nil {
			return domain.Booking{}, getErr
		}
		if !current.IsActive {
			return domain.Booking{}, domain.ErrShowInactive
		}
		return domain.Booking{}, domain.ErrSeatsConflict
	}
	if err != nil {
		return domain.Booking{}, err
	}

	observability.BookingsTotal.Inc()
	s.publish(ctx, booking)
	return booking, nil
}

// History returns the user's bookings, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]domain.BookingRecord, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// ListAll returns every booking in the system, newest first. Admin only;
// the handler enforces that.
func (s *Service) ListAll(ctx context.Context) ([]domain.BookingRecord, error) {
	return s.store.ListAllBookings(ctx)
}

func (s *Service) publish(ctx context.Context, b domain.Booking) {
	if s.publisher == nil {
		return
	}
	ev := rabbit.BookingEvent{
		Type:            "booking.created",
		BookingID:       b.ID,
		ShowID:          b.ShowID,
		UserID:          b.UserID,
		Quantity:        b.Quantity,
		TotalPriceCents: b.TotalPriceCents,
		At:              time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, ev.Type, ev); err != nil {
		s.logger.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking event")
	}
}
