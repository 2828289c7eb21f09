package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/showtix/showtix/internal/domain"
)

// ReserveSeats decrements a show's seat counter and records the booking as
// one transaction. The decrement is a conditional UPDATE that only matches
// while enough seats remain, which makes it the serialization point for
// concurrent reservations: losers match zero rows and come back as
// ErrSeatsConflict, and the counter cannot go negative. The booking is
// priced from the price_cents value RETURNING hands back in the same
// statement.
func (r *Repository) ReserveSeats(ctx context.Context, showID, userID uuid.UUID, quantity int32) (domain.Booking, error) {
	var booking domain.Booking
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var priceCents int64
		var remaining int32
		err := tx.QueryRow(ctx, `
			UPDATE shows
			SET available_seats = available_seats - $2, updated_at = now()
			WHERE id = $1 AND is_active AND available_seats >= $2
			RETURNING price_cents, available_seats
		`, showID, quantity).Scan(&priceCents, &remaining)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrSeatsConflict
		}
		if err != nil {
			return errors.Wrap(err, "decrement seats")
		}

		booking = domain.NewBooking(showID, userID, quantity, priceCents)
		_, err = tx.Exec(ctx, `
			INSERT INTO bookings (id, user_id, show_id, quantity, total_price_cents, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, booking.ID, booking.UserID, booking.ShowID, booking.Quantity, booking.TotalPriceCents, booking.CreatedAt)
		return errors.Wrap(err, "insert booking")
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return booking, nil
}

// ListBookingsByUser returns the caller's booking history, newest first.
func (r *Repository) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]domain.BookingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.user_id, b.show_id, b.quantity, b.total_price_cents, b.created_at,
		       s.title, s.starts_at
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list bookings by user")
	}
	defer rows.Close()

	var records []domain.BookingRecord
	for rows.Next() {
		var rec domain.BookingRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ShowID, &rec.Quantity, &rec.TotalPriceCents, &rec.CreatedAt,
			&rec.ShowTitle, &rec.ShowStartsAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan booking")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListAllBookings is the admin view across every user, newest first.
func (r *Repository) ListAllBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.user_id, b.show_id, b.quantity, b.total_price_cents, b.created_at,
		       s.title, s.starts_at, u.email
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "list all bookings")
	}
	defer rows.Close()

	var records []domain.BookingRecord
	for rows.Next() {
		var rec domain.BookingRecord
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.ShowID, &rec.Quantity, &rec.TotalPriceCents, &rec.CreatedAt,
			&rec.ShowTitle, &rec.ShowStartsAt, &rec.UserEmail)
		if err != nil {
			return nil, errors.Wrap(err, "scan booking")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
