// Package handler exposes the attendance recording endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"punchcard/internal/attendance"
	"punchcard/internal/platform/metrics"
	"punchcard/internal/platform/middleware"
	"punchcard/pkg/httperr"
)

// Service defines the interface for attendance operations.
type Service interface {
	CheckIn(ctx context.Context, req attendance.CheckRequest) (*attendance.Event, error)
	CheckOut(ctx context.Context, req attendance.CheckRequest) (*attendance.Event, error)
	History(ctx context.Context, userID string, start, end time.Time) ([]attendance.Event, error)
	Today(ctx context.Context, userID string) ([]attendance.Event, error)
}

// Handler handles attendance-related endpoints.
type Handler struct {
	logger       *slog.Logger
	attendance   Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	timeout      time.Duration
}

// New creates a new attendance Handler.
func New(
	attendance Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		logger:       logger,
		attendance:   attendance,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		timeout:      timeout,
	}
}

// Register registers the attendance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(h.timeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Post("/check-in", h.handleCheckIn)
	router.Post("/check-out", h.handleCheckOut)
	router.Get("/history", h.handleHistory)
	router.Get("/today", h.handleToday)

	r.Mount("/attendance", router)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.handleCheck(w, r, h.attendance.CheckIn, "check-in")
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.handleCheck(w, r, h.attendance.CheckOut, "check-out")
}

func (h *Handler) handleCheck(
	w http.ResponseWriter,
	r *http.Request,
	record func(context.Context, attendance.CheckRequest) (*attendance.Event, error),
	action string) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "authentication context error"))
		return
	}

	var body checkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid "+action+" request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "invalid request body"))
		return
	}

	req := body.toCheckRequest(userID, middleware.GetDeviceID(ctx))
	event, err := record(ctx, req)
	if err != nil {
		switch httperr.CodeOf(err) {
		case httperr.CodeInternal:
			h.logger.ErrorContext(ctx, "failed to record "+action,
				"request_id", requestID,
				"user_id", userID,
				"error", err.Error(),
			)
			httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to record attendance"))
		default:
			h.logger.WarnContext(ctx, action+" rejected",
				"request_id", requestID,
				"user_id", userID,
				"error", err.Error(),
			)
			httperr.WriteError(w, err)
		}
		return
	}

	httperr.WriteJSON(w, http.StatusCreated, newEventResponse(*event))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "authentication context error"))
		return
	}

	start, end, err := parseWindow(r, 30*24*time.Hour)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	events, err := h.attendance.History(ctx, userID, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load attendance history",
			"request_id", requestID,
			"user_id", userID,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to load history"))
		return
	}

	httperr.WriteJSON(w, http.StatusOK, newHistoryResponse(userID, start, end, events))
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "authentication context error"))
		return
	}

	events, err := h.attendance.Today(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load today's attendance",
			"request_id", requestID,
			"user_id", userID,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to load today"))
		return
	}

	httperr.WriteJSON(w, http.StatusOK, newTodayResponse(userID, events))
}
