package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/showtix/showtix/internal/domain"
)

const showColumns = `id, title, description, starts_at, location, total_seats, available_seats, price_cents, is_active, created_at, updated_at`

func scanShow(row pgx.Row) (domain.Show, error) {
	var s domain.Show
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.StartsAt, &s.Location,
		&s.TotalSeats, &s.AvailableSeats, &s.PriceCents, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Show{}, domain.ErrShowNotFound
	}
	if err != nil {
		return domain.Show{}, errors.Wrap(err, "scan show")
	}
	return s, nil
}

func (r *Repository) CreateShow(ctx context.Context, s domain.Show) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shows (`+showColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, s.ID, s.Title, s.Description, s.StartsAt, s.Location,
		s.TotalSeats, s.AvailableSeats, s.PriceCents, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return errors.Wrap(err, "insert show")
}

func (r *Repository) GetShow(ctx context.Context, id uuid.UUID) (domain.Show, error) {
	return scanShow(r.pool.QueryRow(ctx, `SELECT `+showColumns+` FROM shows WHERE id = $1`, id))
}

// ListShows returns shows ordered by start time. With activeOnly set, hidden
// shows are excluded, which is the public listing.
func (r *Repository) ListShows(ctx context.Context, activeOnly bool) ([]domain.Show, error) {
	q := `SELECT ` + showColumns + ` FROM shows ORDER BY starts_at`
	if activeOnly {
		q = `SELECT ` + showColumns + ` FROM shows WHERE is_active ORDER BY starts_at`
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "list shows")
	}
	defer rows.Close()

	var shows []domain.Show
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

// UpdateShow persists the editable fields of a show and revises its capacity
// to newTotal in the same statement. The seat delta is applied against the
// row's current counter, not the caller's stale read, so bookings committed
// since the load are never clobbered. Zero rows means the show vanished or a
// concurrent booking pushed the booked count above newTotal.
func (r *Repository) UpdateShow(ctx context.Context, s domain.Show, newTotal int32) (domain.Show, error) {
	updated, err := scanShow(r.pool.QueryRow(ctx, `
		UPDATE shows SET
			title = $2,
			description = $3,
			starts_at = $4,
			location = $5,
			price_cents = $6,
			is_active = $7,
			available_seats = GREATEST(available_seats + ($8 - total_seats), 0),
			total_seats = $8,
			updated_at = now()
		WHERE id = $1 AND total_seats - available_seats <= $8
		RETURNING `+showColumns,
		s.ID, s.Title, s.Description, s.StartsAt, s.Location, s.PriceCents, s.IsActive, newTotal))
	if errors.Is(err, domain.ErrShowNotFound) {
		if _, getErr := r.GetShow(ctx, s.ID); getErr != nil {
			return domain.Show{}, getErr
		}
		return domain.Show{}, domain.ErrCapacityBelowBooked
	}
	return updated, err
}

// DeleteShow removes a show only when no booking references it. The delete
// and the guard are one statement, so a booking racing in between cannot be
// orphaned.
func (r *Repository) DeleteShow(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `
		DELETE FROM shows
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM bookings WHERE show_id = $1)
	`, id)
	if err != nil {
		return errors.Wrap(err, "delete show")
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetShow(ctx, id); err != nil {
			return err
		}
		return domain.ErrShowHasBookings
	}
	return nil
}
