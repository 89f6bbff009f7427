// Package attendance implements the check-in/check-out state machine. Each
// (user, calendar day) moves through at most one non-offline check-in and
// one non-offline check-out; offline records are after-the-fact
// reconciliations and are exempt from that uniqueness rule. Events are
// append-only: the recorder never mutates what a store already holds.
package attendance

import (
	"time"

	"punchcard/internal/geo"
)

// EventKind distinguishes the two halves of a daily attendance cycle.
type EventKind string

const (
	KindCheckIn  EventKind = "check_in"
	KindCheckOut EventKind = "check_out"
)

// Method records which evidence source backed an event. When a request
// carries several sources the strongest wins: biometric over beacon over
// GPS, with manual as the fallback.
type Method string

const (
	MethodBiometric Method = "biometric"
	MethodBeacon    Method = "beacon"
	MethodGPS       Method = "gps"
	MethodManual    Method = "manual"
)

// Event is one immutable attendance fact. Approved is derived from the
// geofence and beacon outcomes at recording time and never set directly.
type Event struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Timestamp         time.Time       `json:"timestamp"`
	Kind              EventKind       `json:"kind"`
	Method            Method          `json:"method"`
	Coordinate        *geo.Coordinate `json:"coordinate,omitempty"`
	WithinGeofence    bool            `json:"within_geofence"`
	MatchedGeofenceID string          `json:"matched_geofence_id,omitempty"`
	BeaconID          string          `json:"beacon_id,omitempty"`
	BeaconName        string          `json:"beacon_name,omitempty"`
	DeviceID          string          `json:"device_id,omitempty"`
	Approved          bool            `json:"approved"`
	Offline           bool            `json:"offline"`
	Notes             string          `json:"notes,omitempty"`
}

// CheckRequest is the caller-supplied shape for both check-in and
// check-out. Coordinate and BeaconID are optional evidence; Offline marks a
// reconciled historical entry and may carry its original timestamp.
type CheckRequest struct {
	UserID           string
	Coordinate       *geo.Coordinate
	BeaconID         string
	Biometric        bool
	DeviceID         string
	Offline          bool
	OfflineTimestamp *time.Time
	Notes            string
}

// MethodOf applies the evidence priority to a request.
func MethodOf(req CheckRequest) Method {
	switch {
	case req.Biometric:
		return MethodBiometric
	case req.BeaconID != "":
		return MethodBeacon
	case req.Coordinate != nil:
		return MethodGPS
	default:
		return MethodManual
	}
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
