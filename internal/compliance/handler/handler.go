// Package handler exposes the compliance evaluation endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"punchcard/internal/compliance"
	"punchcard/internal/platform/metrics"
	"punchcard/internal/platform/middleware"
	"punchcard/pkg/httperr"
)

// Service defines the interface for compliance operations.
type Service interface {
	UserStatus(ctx context.Context, userID, region string, start, end time.Time) (compliance.Status, error)
	UserViolations(ctx context.Context, userID, region string, start, end time.Time) ([]compliance.Violation, error)
	RegionRequirements(region string) []compliance.Requirement
	RegionReport(ctx context.Context, region string, start, end time.Time) (compliance.Report, error)
}

// Handler handles compliance-related endpoints.
type Handler struct {
	logger       *slog.Logger
	compliance   Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	timeout      time.Duration
}

// New creates a new compliance Handler.
func New(
	compliance Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{
		logger:       logger,
		compliance:   compliance,
		metrics:      metrics,
		jwtValidator: jwtValidator,
		timeout:      timeout,
	}
}

// Register registers the compliance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(h.timeout))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	router.Get("/status", h.handleStatus)
	router.Get("/violations", h.handleViolations)
	router.Get("/requirements", h.handleRequirements)
	router.Post("/report", h.handleReport)

	r.Mount("/compliance", router)
}

// regionOf resolves the region a request evaluates under: an explicit
// query parameter wins, then the token's home region.
func regionOf(r *http.Request) string {
	if region := r.URL.Query().Get("region"); region != "" {
		return region
	}
	return middleware.GetRegion(r.Context())
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "authentication context error"))
		return
	}
	region := regionOf(r)
	if region == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "region is required"))
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	status, err := h.compliance.UserStatus(ctx, userID, region, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to evaluate compliance status",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"region", region,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to evaluate status"))
		return
	}

	httperr.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleViolations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "authentication context error"))
		return
	}
	region := regionOf(r)
	if region == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "region is required"))
		return
	}

	start, end, err := parseWindow(r)
	if err != nil {
		httperr.WriteError(w, err)
		return
	}

	violations, err := h.compliance.UserViolations(ctx, userID, region, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to evaluate violations",
			"request_id", middleware.GetRequestID(ctx),
			"user_id", userID,
			"region", region,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to evaluate violations"))
		return
	}
	if violations == nil {
		violations = []compliance.Violation{}
	}

	httperr.WriteJSON(w, http.StatusOK, violationsResponse{
		Region:     region,
		Start:      start,
		End:        end,
		Violations: violations,
	})
}

func (h *Handler) handleRequirements(w http.ResponseWriter, r *http.Request) {
	region := regionOf(r)
	if region == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "region is required"))
		return
	}

	reqs := h.compliance.RegionRequirements(region)
	if reqs == nil {
		reqs = []compliance.Requirement{}
	}
	httperr.WriteJSON(w, http.StatusOK, requirementsResponse{
		Region:       region,
		Requirements: reqs,
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var body reportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.WarnContext(ctx, "invalid report request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "invalid request body"))
		return
	}

	region := body.Region
	if region == "" {
		region = middleware.GetRegion(ctx)
	}
	if region == "" {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "region is required"))
		return
	}
	if body.StartDate.IsZero() || body.EndDate.IsZero() {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "start_date and end_date are required"))
		return
	}
	if body.EndDate.Before(body.StartDate) {
		httperr.WriteError(w, httperr.New(httperr.CodeBadRequest, "end_date precedes start_date"))
		return
	}

	report, err := h.compliance.RegionReport(ctx, region, body.StartDate, body.EndDate)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate compliance report",
			"request_id", requestID,
			"region", region,
			"error", err.Error(),
		)
		httperr.WriteError(w, httperr.New(httperr.CodeInternal, "failed to generate report"))
		return
	}

	httperr.WriteJSON(w, http.StatusOK, report)
}
