package handler

import (
	"net/http"
	"time"

	"punchcard/internal/compliance"
	"punchcard/pkg/httperr"
)

// reportRequest is the JSON body for POST /compliance/report. Region is
// optional when the token carries one.
type reportRequest struct {
	Region    string    `json:"region,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type violationsResponse struct {
	Region     string                 `json:"region"`
	Start      time.Time              `json:"start"`
	End        time.Time              `json:"end"`
	Violations []compliance.Violation `json:"violations"`
}

type requirementsResponse struct {
	Region       string                   `json:"region"`
	Requirements []compliance.Requirement `json:"requirements"`
}

// parseWindow reads optional start and end query parameters as RFC 3339
// timestamps, defaulting to the trailing 30 days.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, httperr.New(httperr.CodeBadRequest, "invalid start parameter")
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, httperr.New(httperr.CodeBadRequest, "invalid end parameter")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, httperr.New(httperr.CodeBadRequest, "end precedes start")
	}
	return start, end, nil
}
