package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	redisadapter "github.com/showtix/showtix/internal/adapters/redis"
	"github.com/showtix/showtix/internal/auth"
	"github.com/showtix/showtix/internal/booking"
	"github.com/showtix/showtix/internal/domain"
	"github.com/showtix/showtix/internal/observability"
	"github.com/showtix/showtix/internal/shows"
)

type Handlers struct {
	auth     *auth.Service
	bookings *booking.Service
	catalog  *shows.Service
	idemp    *redisadapter.Idempotency
	logger   observability.Logger
}

// NewHandlers wires the HTTP surface. idemp may be nil, which disables
// Idempotency-Key replay.
func NewHandlers(authSvc *auth.Service, bookings *booking.Service, catalog *shows.Service, idemp *redisadapter.Idempotency, logger observability.Logger) *Handlers {
	return &Handlers{auth: authSvc, bookings: bookings, catalog: catalog, idemp: idemp, logger: logger}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeError maps sentinel errors to responses. Input errors, business-rule
// violations and concurrency conflicts each keep distinct codes so clients
// can tell "fix your input" from "someone got there first, retry".
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeErrorCode(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeErrorCode(w, http.StatusBadRequest, "invalid_capacity", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, domain.ErrShowNotFound), errors.Is(err, domain.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrShowInactive):
		writeErrorCode(w, http.StatusConflict, "show_inactive", err.Error())
	case errors.Is(err, domain.ErrInsufficientSeats):
		writeErrorCode(w, http.StatusConflict, "insufficient_seats", err.Error())
	case errors.Is(err, domain.ErrSeatsConflict):
		writeErrorCode(w, http.StatusConflict, "seats_conflict", err.Error())
	case errors.Is(err, domain.ErrCapacityBelowBooked):
		writeErrorCode(w, http.StatusConflict, "capacity_below_booked", err.Error())
	case errors.Is(err, domain.ErrShowHasBookings):
		writeErrorCode(w, http.StatusConflict, "show_has_bookings", err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeErrorCode(w, http.StatusConflict, "email_taken", err.Error())
	default:
		RequestLogger(r.Context(), h.logger).WithError(err).Error("request failed")
		writeErrorCode(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type showResponse struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartsAt       time.Time `json:"starts_at"`
	Location       string    `json:"location"`
	TotalSeats     int32     `json:"total_seats"`
	AvailableSeats int32     `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
	IsActive       bool      `json:"is_active"`
}

func toShowResponse(s domain.Show) showResponse {
	return showResponse{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		StartsAt:       s.StartsAt,
		Location:       s.Location,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		PriceCents:     s.PriceCents,
		IsActive:       s.IsActive,
	}
}

func toShowResponses(list []domain.Show) []showResponse {
	out := make([]showResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toShowResponse(s))
	}
	return out
}

type bookingResponse struct {
	ID              uuid.UUID `json:"id"`
	ShowID          uuid.UUID `json:"show_id"`
	Quantity        int32     `json:"quantity"`
	TotalPriceCents int64     `json:"total_price_cents"`
	CreatedAt       time.Time `json:"created_at"`
	ShowTitle       string    `json:"show_title,omitempty"`
	ShowStartsAt    time.Time `json:"show_starts_at,omitzero"`
	UserEmail       string    `json:"user_email,omitempty"`
}

func toBookingRecords(records []domain.BookingRecord) []bookingResponse {
	out := make([]bookingResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, bookingResponse{
			ID:              rec.ID,
			ShowID:          rec.ShowID,
			Quantity:        rec.Quantity,
			TotalPriceCents: rec.TotalPriceCents,
			CreatedAt:       rec.CreatedAt,
			ShowTitle:       rec.ShowTitle,
			ShowStartsAt:    rec.ShowStartsAt,
			UserEmail:       rec.UserEmail,
		})
	}
	return out
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	token, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{AccessToken: token.AccessToken, ExpiresAt: token.ExpiresAt})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token.AccessToken, ExpiresAt: token.ExpiresAt})
}

func (h *Handlers) ListShows(w http.ResponseWriter, r *http.Request) {
	listed, err := h.catalog.BrowseActive(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShowResponses(listed))
}

func (h *Handlers) GetShow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid show id")
		return
	}
	show, err := h.catalog.GetActive(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShowResponse(show))
}

// CreateBooking reserves seats on a show for the authenticated caller. With
// an Idempotency-Key header, a resubmission replays the first outcome
// instead of booking again.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	showID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid show id")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idemp != nil {
		existing, err := h.idemp.Get(r.Context(), key)
		if err != nil {
			RequestLogger(r.Context(), h.logger).WithError(err).Warn("idempotency lookup failed")
		} else if existing != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(existing.Status)
			_, _ = w.Write(existing.Result)
			return
		}
	}

	var req struct {
		Quantity int32 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_quantity", "malformed request body")
		return
	}

	booked, err := h.bookings.Reserve(r.Context(), showID, claims.UserID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := bookingResponse{
		ID:              booked.ID,
		ShowID:          booked.ShowID,
		Quantity:        booked.Quantity,
		TotalPriceCents: booked.TotalPriceCents,
		CreatedAt:       booked.CreatedAt,
	}
	if key != "" && h.idemp != nil {
		data, _ := json.Marshal(resp)
		if err := h.idemp.Set(r.Context(), key, redisadapter.IdempResponse{Status: http.StatusCreated, Result: data}); err != nil {
			RequestLogger(r.Context(), h.logger).WithError(err).Warn("idempotency store failed")
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) MyBookings(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	records, err := h.bookings.History(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingRecords(records))
}

type showRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	TotalSeats  int32     `json:"total_seats"`
	PriceCents  int64     `json:"price_cents"`
	IsActive    bool      `json:"is_active"`
}

func (req showRequest) toInput() shows.ShowInput {
	return shows.ShowInput{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		Location:    req.Location,
		TotalSeats:  req.TotalSeats,
		PriceCents:  req.PriceCents,
		IsActive:    req.IsActive,
	}
}

func (h *Handlers) AdminListShows(w http.ResponseWriter, r *http.Request) {
	listed, err := h.catalog.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShowResponses(listed))
}

func (h *Handlers) AdminGetShow(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid show id")
		return
	}
	show, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShowResponse(show))
}

func (h *Handlers) AdminCreateShow(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	var req showRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	show, err := h.catalog.Create(r.Context(), claims.UserID, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShowResponse(show))
}

func (h *Handlers) AdminUpdateShow(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid show id")
		return
	}
	var req showRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}
	show, err := h.catalog.Update(r.Context(), claims.UserID, id, req.toInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShowResponse(show))
}

func (h *Handlers) AdminDeleteShow(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid_input", "invalid show id")
		return
	}
	if err := h.catalog.Delete(r.Context(), claims.UserID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdminListBookings(w http.ResponseWriter, r *http.Request) {
	records, err := h.bookings.ListAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingRecords(records))
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}
