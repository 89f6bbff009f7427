package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchcard/internal/attendance"
	"punchcard/internal/attendance/daylock"
	"punchcard/internal/attendance/store"
	"punchcard/internal/beacon"
	"punchcard/internal/geo"
	"punchcard/internal/jwtauth"
	"punchcard/internal/platform/middleware"
)

var hqCenter = geo.Coordinate{Latitude: 24.7136, Longitude: 46.6753}

func newTestHandler(t *testing.T, now time.Time) *Handler {
	t.Helper()

	dir := attendance.NewStaticDirectory(
		[]geo.Geofence{
			{ID: "gf-hq", Name: "Headquarters", Center: hqCenter, RadiusMeters: 50, Active: true},
		},
		[]beacon.Beacon{
			{ID: "bcn-lobby", Name: "Lobby entrance", GeofenceID: "gf-hq", Active: true},
		},
		map[string][]string{"user-1": {"gf-hq"}},
	)
	rec, err := attendance.NewRecorder(store.NewMemory(), dir, daylock.NewMemory(), nil,
		attendance.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(rec, logger, nil, nil, 0)
}

func asUser(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
	return req.WithContext(ctx)
}

func postJSON(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleCheckIn(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	lat, lon := hqCenter.Latitude, hqCenter.Longitude
	req := asUser(postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon}), "user-1")

	w := httptest.NewRecorder()
	h.handleCheckIn(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "check_in", resp["kind"])
	assert.Equal(t, "gps", resp["method"])
	assert.Equal(t, true, resp["approved"])
	assert.Equal(t, "gf-hq", resp["matched_geofence_id"])
}

func TestHandleCheckIn_Duplicate(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)
	lat, lon := hqCenter.Latitude, hqCenter.Longitude

	w := httptest.NewRecorder()
	h.handleCheckIn(w, asUser(postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon}), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.handleCheckIn(w, asUser(postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon}), "user-1"))

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "already_checked_in", resp["error"])
}

func TestHandleCheckOut_NoCheckIn(t *testing.T) {
	now := time.Date(2026, time.March, 9, 17, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	w := httptest.NewRecorder()
	h.handleCheckOut(w, asUser(postJSON(t, "/attendance/check-out", checkRequest{}), "user-1"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_check_in_found", resp["error"])
}

func TestHandleCheckIn_InvalidBody(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	req := httptest.NewRequest(http.MethodPost, "/attendance/check-in", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	h.handleCheckIn(w, asUser(req, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCheckIn_MissingAuthContext(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	w := httptest.NewRecorder()
	h.handleCheckIn(w, postJSON(t, "/attendance/check-in", checkRequest{}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleToday(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)
	lat, lon := hqCenter.Latitude, hqCenter.Longitude

	w := httptest.NewRecorder()
	h.handleCheckIn(w, asUser(postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon}), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.handleToday(w, asUser(httptest.NewRequest(http.MethodGet, "/attendance/today", nil), "user-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp todayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.CheckedIn)
	assert.False(t, resp.CheckedOut)
	assert.Len(t, resp.Events, 1)
}

func TestHandleHistory(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)
	lat, lon := hqCenter.Latitude, hqCenter.Longitude

	w := httptest.NewRecorder()
	h.handleCheckIn(w, asUser(postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon}), "user-1"))
	require.Equal(t, http.StatusCreated, w.Code)

	target := "/attendance/history?start=" + now.Add(-time.Hour).Format(time.RFC3339) +
		"&end=" + now.Add(time.Hour).Format(time.RFC3339)
	w = httptest.NewRecorder()
	h.handleHistory(w, asUser(httptest.NewRequest(http.MethodGet, target, nil), "user-1"))

	require.Equal(t, http.StatusOK, w.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.UserID)
	assert.Len(t, resp.Events, 1)
}

func TestHandleHistory_InvalidWindow(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	w := httptest.NewRecorder()
	h.handleHistory(w, asUser(httptest.NewRequest(http.MethodGet, "/attendance/history?start=yesterday", nil), "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRequiresAuth(t *testing.T) {
	now := time.Date(2026, time.March, 9, 8, 0, 0, 0, time.UTC)
	h := newTestHandler(t, now)

	jwtService := jwtauth.NewService("test-key", "punchcard", "punchcard-api")
	h.jwtValidator = jwtauth.NewMiddlewareAdapter(jwtService)

	r := chi.NewRouter()
	h.Register(r)

	// No token: rejected before the handler runs.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, postJSON(t, "/attendance/check-in", checkRequest{}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token: the claims flow through to the recorder.
	token, err := jwtService.GenerateAccessToken("user-1", "SA", "device-9", time.Hour)
	require.NoError(t, err)

	lat, lon := hqCenter.Latitude, hqCenter.Longitude
	req := postJSON(t, "/attendance/check-in", checkRequest{Latitude: &lat, Longitude: &lon})
	req.Header.Set("Authorization", "Bearer "+token)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "device-9", resp["device_id"])
}
