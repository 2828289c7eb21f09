package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/showtix/showtix/internal/auth"
	"github.com/showtix/showtix/internal/booking"
	"github.com/showtix/showtix/internal/domain"
	"github.com/showtix/showtix/internal/observability"
	"github.com/showtix/showtix/internal/shows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handlers-test-secret"

// memStore is a single in-memory backend for users, shows and bookings, so
// the whole HTTP surface can be exercised against one fixture.
type memStore struct {
	mu       sync.Mutex
	users    map[string]domain.User
	shows    map[uuid.UUID]domain.Show
	bookings []domain.BookingRecord
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]domain.User), shows: make(map[uuid.UUID]domain.Show)}
}

func (m *memStore) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	m.users[u.Email] = u
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (m *memStore) CreateShow(_ context.Context, s domain.Show) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows[s.ID] = s
	return nil
}

func (m *memStore) GetShow(_ context.Context, id uuid.UUID) (domain.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[id]
	if !ok {
		return domain.Show{}, domain.ErrShowNotFound
	}
	return s, nil
}

func (m *memStore) ListShows(_ context.Context, activeOnly bool) ([]domain.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Show
	for _, s := range m.shows {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) UpdateShow(_ context.Context, s domain.Show, newTotal int32) (domain.Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.shows[s.ID]
	if !ok {
		return domain.Show{}, domain.ErrShowNotFound
	}
	if current.TotalSeats-current.AvailableSeats > newTotal {
		return domain.Show{}, domain.ErrCapacityBelowBooked
	}
	s.AvailableSeats = current.AvailableSeats + (newTotal - current.TotalSeats)
	if s.AvailableSeats < 0 {
		s.AvailableSeats = 0
	}
	s.TotalSeats = newTotal
	m.shows[s.ID] = s
	return s, nil
}

func (m *memStore) DeleteShow(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shows[id]; !ok {
		return domain.ErrShowNotFound
	}
	for _, b := range m.bookings {
		if b.ShowID == id {
			return domain.ErrShowHasBookings
		}
	}
	delete(m.shows, id)
	return nil
}

func (m *memStore) ReserveSeats(_ context.Context, showID, userID uuid.UUID, quantity int32) (domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shows[showID]
	if !ok || !s.IsActive || s.AvailableSeats < quantity {
		return domain.Booking{}, domain.ErrSeatsConflict
	}
	s.AvailableSeats -= quantity
	m.shows[showID] = s
	b := domain.NewBooking(showID, userID, quantity, s.PriceCents)
	m.bookings = append(m.bookings, domain.BookingRecord{Booking: b, ShowTitle: s.Title, ShowStartsAt: s.StartsAt})
	return b, nil
}

func (m *memStore) ListBookingsByUser(_ context.Context, userID uuid.UUID) ([]domain.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.BookingRecord
	for i := len(m.bookings) - 1; i >= 0; i-- {
		if m.bookings[i].UserID == userID {
			out = append(out, m.bookings[i])
		}
	}
	return out, nil
}

func (m *memStore) ListAllBookings(_ context.Context) ([]domain.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.BookingRecord, len(m.bookings))
	copy(out, m.bookings)
	return out, nil
}

func (m *memStore) addShow(t *testing.T, totalSeats int32, priceCents int64, active bool) domain.Show {
	t.Helper()
	s, err := domain.NewShow("Macbeth", "", time.Now().Add(72*time.Hour), "Old Vic", totalSeats, priceCents, active)
	require.NoError(t, err)
	require.NoError(t, m.CreateShow(context.Background(), s))
	return s
}

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	store := newMemStore()
	logger := observability.NewLogger()
	authSvc := auth.NewService(store, testSecret, time.Hour, 4)
	bookingSvc := booking.NewService(store, nil, logger)
	catalogSvc := shows.NewService(store, nil, nil, nil, logger)
	h := NewHandlers(authSvc, bookingSvc, catalogSvc, nil, logger)
	srv := httptest.NewServer(SetupRouter(h, authSvc, logger, nil))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	return body.Code
}

func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "a long password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, resp, &tok)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

func adminToken(t *testing.T) string {
	t.Helper()
	signed, _, err := auth.NewAccessToken(testSecret, uuid.New(), true, time.Hour)
	require.NoError(t, err)
	return signed
}

func TestAuthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	registerUser(t, srv, "alice@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "a long password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_taken", errorCode(t, resp))

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", errorCode(t, resp))

	resp = doJSON(t, http.MethodPost, srv.URL+"/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "a long password",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPublicCatalog(t *testing.T) {
	srv, store := newTestServer(t)
	active := store.addShow(t, 50, 2000, true)
	store.addShow(t, 50, 2000, false)

	resp, err := http.Get(srv.URL + "/v1/shows")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []struct {
		ID uuid.UUID `json:"id"`
	}
	decodeBody(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, active.ID, listed[0].ID)

	resp, err = http.Get(srv.URL + "/v1/shows/" + active.ID.String())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/v1/shows/not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/v1/shows/" + uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestBookingFlow(t *testing.T) {
	srv, store := newTestServer(t)
	show := store.addShow(t, 10, 2000, true)
	token := registerUser(t, srv, "bob@example.com")
	bookURL := fmt.Sprintf("%s/v1/shows/%s/bookings", srv.URL, show.ID)

	// No token, no booking.
	resp := doJSON(t, http.MethodPost, bookURL, "", map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, bookURL, token, map[string]int{"quantity": 3})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var booked struct {
		Quantity        int32 `json:"quantity"`
		TotalPriceCents int64 `json:"total_price_cents"`
	}
	decodeBody(t, resp, &booked)
	assert.Equal(t, int32(3), booked.Quantity)
	assert.Equal(t, int64(6000), booked.TotalPriceCents)

	resp = doJSON(t, http.MethodPost, bookURL, token, map[string]int{"quantity": 8})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "insufficient_seats", errorCode(t, resp))

	resp = doJSON(t, http.MethodPost, bookURL, token, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_quantity", errorCode(t, resp))

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/bookings", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []struct {
		ShowTitle string `json:"show_title"`
	}
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Macbeth", history[0].ShowTitle)
}

func TestBookingInactiveShow(t *testing.T) {
	srv, store := newTestServer(t)
	hidden := store.addShow(t, 10, 2000, false)
	token := registerUser(t, srv, "carol@example.com")

	resp := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/shows/%s/bookings", srv.URL, hidden.ID), token, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "show_inactive", errorCode(t, resp))
}

func TestAdminAccessControl(t *testing.T) {
	srv, _ := newTestServer(t)
	userTok := registerUser(t, srv, "dave@example.com")

	resp := doJSON(t, http.MethodGet, srv.URL+"/v1/admin/shows", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/admin/shows", userTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/admin/shows", adminToken(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminShowLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	admin := adminToken(t)

	create := map[string]interface{}{
		"title":       "Othello",
		"location":    "Barbican",
		"starts_at":   time.Now().Add(96 * time.Hour).Format(time.RFC3339),
		"total_seats": 100,
		"price_cents": 3000,
		"is_active":   true,
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/v1/admin/shows", admin, create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID             uuid.UUID `json:"id"`
		AvailableSeats int32     `json:"available_seats"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, int32(100), created.AvailableSeats)

	// Sell 40 seats, then shrinking below the booked count must fail.
	user := registerUser(t, srv, "eve@example.com")
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/shows/%s/bookings", srv.URL, created.ID), user, map[string]int{"quantity": 40})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	update := create
	update["total_seats"] = 50
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/admin/shows/%s", srv.URL, created.ID), admin, update)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "capacity_below_booked", errorCode(t, resp))

	update["total_seats"] = 80
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/v1/admin/shows/%s", srv.URL, created.ID), admin, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var revised struct {
		TotalSeats     int32 `json:"total_seats"`
		AvailableSeats int32 `json:"available_seats"`
	}
	decodeBody(t, resp, &revised)
	assert.Equal(t, int32(80), revised.TotalSeats)
	assert.Equal(t, int32(20), revised.AvailableSeats)

	// Delete is blocked while bookings exist.
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/v1/admin/shows/%s", srv.URL, created.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "show_has_bookings", errorCode(t, resp))

	empty := store.addShow(t, 10, 1000, true)
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/v1/admin/shows/%s", srv.URL, empty.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/v1/admin/bookings", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []struct {
		Quantity int32 `json:"quantity"`
	}
	decodeBody(t, resp, &all)
	require.Len(t, all, 1)
	assert.Equal(t, int32(40), all[0].Quantity)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/v1/healthz", "/v1/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}
