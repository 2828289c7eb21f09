// Package shows implements the show catalog: public browsing plus the
// administrative create/update/delete surface, including capacity revision
// and the deletion guard.
package shows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/showtix/showtix/internal/adapters/rabbit"
	"github.com/showtix/showtix/internal/domain"
	"github.com/showtix/showtix/internal/observability"
)

type Store interface {
	CreateShow(ctx context.Context, s domain.Show) error
	GetShow(ctx context.Context, id uuid.UUID) (domain.Show, error)
	ListShows(ctx context.Context, activeOnly bool) ([]domain.Show, error)
	UpdateShow(ctx context.Context, s domain.Show, newTotal int32) (domain.Show, error)
	DeleteShow(ctx context.Context, id uuid.UUID) error
}

// ListingCache fronts the public listing. All methods are best effort from
// the service's point of view.
type ListingCache interface {
	GetActiveShows(ctx context.Context) ([]domain.Show, error)
	SetActiveShows(ctx context.Context, shows []domain.Show) error
	InvalidateShows(ctx context.Context) error
}

// Auditor records admin actions. Failures never fail the action itself.
type Auditor interface {
	LogEvent(ctx context.Context, action string, actorID uuid.UUID, data map[string]interface{}) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v interface{}) error
}

type Service struct {
	store     Store
	cache     ListingCache
	auditor   Auditor
	publisher EventPublisher
	logger    observability.Logger
}

// NewService builds the catalog. cache, auditor and publisher may each be
// nil when the corresponding backend is not wired.
func NewService(store Store, cache ListingCache, auditor Auditor, publisher EventPublisher, logger observability.Logger) *Service {
	return &Service{store: store, cache: cache, auditor: auditor, publisher: publisher, logger: logger}
}

// ShowInput carries the admin-editable fields of a show.
type ShowInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	Location    string
	TotalSeats  int32
	PriceCents  int64
	IsActive    bool
}

// BrowseActive lists active shows ordered by start time, through the cache.
func (s *Service) BrowseActive(ctx context.Context) ([]domain.Show, error) {
	if s.cache != nil {
		cached, err := s.cache.GetActiveShows(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("show cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	listed, err := s.store.ListShows(ctx, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActiveShows(ctx, listed); err != nil {
			s.logger.WithError(err).Warn("show cache write failed")
		}
	}
	return listed, nil
}

// GetActive returns one show for the public detail page. Hidden shows are
// indistinguishable from missing ones.
func (s *Service) GetActive(ctx context.Context, id uuid.UUID) (domain.Show, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return domain.Show{}, err
	}
	if !show.IsActive {
		return domain.Show{}, domain.ErrShowNotFound
	}
	return show, nil
}

// ListAll returns every show, hidden ones included, for the admin listing.
func (s *Service) ListAll(ctx context.Context) ([]domain.Show, error) {
	return s.store.ListShows(ctx, false)
}

// Get returns one show without the is_active filter, for admin edit forms.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Show, error) {
	return s.store.GetShow(ctx, id)
}

// Create adds a show with available seats initialized to the full capacity.
func (s *Service) Create(ctx context.Context, adminID uuid.UUID, in ShowInput) (domain.Show, error) {
	show, err := domain.NewShow(in.Title, in.Description, in.StartsAt, in.Location, in.TotalSeats, in.PriceCents, in.IsActive)
	if err != nil {
		return domain.Show{}, err
	}
	if err := s.store.CreateShow(ctx, show); err != nil {
		return domain.Show{}, err
	}
	s.afterWrite(ctx, "show.created", adminID, show)
	return show, nil
}

// Update edits a show's fields and revises its capacity. The capacity rule
// is validated against the loaded show first so the caller gets the precise
// error, then enforced again atomically by the store against the current
// row, since bookings may land between the read and the write.
func (s *Service) Update(ctx context.Context, adminID, id uuid.UUID, in ShowInput) (domain.Show, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		return domain.Show{}, err
	}

	if in.Title == "" || in.Location == "" || in.PriceCents < 0 {
		return domain.Show{}, domain.ErrInvalidInput
	}
	revised := show
	if err := revised.ReviseCapacity(in.TotalSeats); err != nil {
		return domain.Show{}, err
	}

	show.Title = in.Title
	show.Description = in.Description
	show.StartsAt = in.StartsAt
	show.Location = in.Location
	show.PriceCents = in.PriceCents
	show.IsActive = in.IsActive

	updated, err := s.store.UpdateShow(ctx, show, in.TotalSeats)
	if err != nil {
		return domain.Show{}, err
	}
	s.afterWrite(ctx, "show.updated", adminID, updated)
	return updated, nil
}

// Delete removes a show unless bookings reference it.
func (s *Service) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.store.DeleteShow(ctx, id); err != nil {
		return err
	}
	s.afterWrite(ctx, "show.deleted", adminID, domain.Show{ID: id})
	return nil
}

func (s *Service) afterWrite(ctx context.Context, action string, adminID uuid.UUID, show domain.Show) {
	if s.cache != nil {
		if err := s.cache.InvalidateShows(ctx); err != nil {
			s.logger.WithError(err).Warn("show cache invalidation failed")
		}
	}
	if s.auditor != nil {
		_ = s.auditor.LogEvent(ctx, action, adminID, map[string]interface{}{
			"show_id":         show.ID,
			"title":           show.Title,
			"total_seats":     show.TotalSeats,
			"available_seats": show.AvailableSeats,
		})
	}
	if s.publisher != nil {
		ev := rabbit.ShowEvent{Type: action, ShowID: show.ID, AdminID: adminID, At: time.Now().UTC()}
		if err := s.publisher.PublishJSON(ctx, action, ev); err != nil {
			s.logger.WithError(err).WithField("show_id", show.ID).Warn("failed to publish show event")
		}
	}
}
