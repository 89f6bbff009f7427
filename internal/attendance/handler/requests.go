package handler

import (
	"net/http"
	"time"

	"punchcard/internal/attendance"
	"punchcard/internal/geo"
	"punchcard/pkg/httperr"
)

// checkRequest is the JSON body for check-in and check-out. Latitude and
// longitude are pointers so "absent" and "zero" stay distinguishable.
type checkRequest struct {
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	BeaconID         string     `json:"beacon_id,omitempty"`
	Biometric        bool       `json:"biometric,omitempty"`
	DeviceID         string     `json:"device_id,omitempty"`
	Offline          bool       `json:"offline,omitempty"`
	OfflineTimestamp *time.Time `json:"offline_timestamp,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// toCheckRequest maps the body onto the domain request. The token's
// device ID wins over the body's when both are present.
func (b checkRequest) toCheckRequest(userID, tokenDeviceID string) attendance.CheckRequest {
	req := attendance.CheckRequest{
		UserID:           userID,
		BeaconID:         b.BeaconID,
		Biometric:        b.Biometric,
		DeviceID:         b.DeviceID,
		Offline:          b.Offline,
		OfflineTimestamp: b.OfflineTimestamp,
		Notes:            b.Notes,
	}
	if tokenDeviceID != "" {
		req.DeviceID = tokenDeviceID
	}
	if b.Latitude != nil && b.Longitude != nil {
		req.Coordinate = &geo.Coordinate{Latitude: *b.Latitude, Longitude: *b.Longitude}
	}
	return req
}

type eventResponse struct {
	attendance.Event
}

func newEventResponse(ev attendance.Event) eventResponse {
	return eventResponse{Event: ev}
}

type historyResponse struct {
	UserID string             `json:"user_id"`
	Start  time.Time          `json:"start"`
	End    time.Time          `json:"end"`
	Events []attendance.Event `json:"events"`
}

func newHistoryResponse(userID string, start, end time.Time, events []attendance.Event) historyResponse {
	if events == nil {
		events = []attendance.Event{}
	}
	return historyResponse{UserID: userID, Start: start, End: end, Events: events}
}

type todayResponse struct {
	UserID     string             `json:"user_id"`
	CheckedIn  bool               `json:"checked_in"`
	CheckedOut bool               `json:"checked_out"`
	Events     []attendance.Event `json:"events"`
}

func newTodayResponse(userID string, events []attendance.Event) todayResponse {
	resp := todayResponse{UserID: userID, Events: events}
	if resp.Events == nil {
		resp.Events = []attendance.Event{}
	}
	for _, ev := range events {
		if ev.Offline {
			continue
		}
		switch ev.Kind {
		case attendance.KindCheckIn:
			resp.CheckedIn = true
		case attendance.KindCheckOut:
			resp.CheckedOut = true
		}
	}
	return resp
}

// parseWindow reads the start and end query parameters as RFC 3339
// timestamps. Absent parameters default to the trailing window ending
// now.
func parseWindow(r *http.Request, fallback time.Duration) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.Add(-fallback)

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
