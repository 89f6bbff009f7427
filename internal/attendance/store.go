package attendance

import (
	"context"
	"time"

	"punchcard/internal/geo"
	"punchcard/pkg/httperr"
)

// ErrNotFound keeps store-level misses consistent across implementations.
var ErrNotFound = httperr.New(httperr.CodeNotFound, "attendance event not found")

// EventStore is the append-only persistence contract. Implementations must
// never update or delete events; the uniqueness invariant for non-offline
// events is enforced by the recorder under its day lock, and storage-level
// constraints may back it up but are not relied upon.
type EventStore interface {
	Append(ctx context.Context, ev Event) error

	// ListDay returns all events for the user on the given UTC calendar
	// day, ordered by timestamp ascending.
	ListDay(ctx context.Context, userID string, day time.Time) ([]Event, error)

	// ListByUserBetween returns events with start <= Timestamp <= end,
	// ordered by timestamp ascending.
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]Event, error)

	// Latest returns the most recent event for the user, or ErrNotFound.
	Latest(ctx context.Context, userID string) (Event, error)
}

// Directory supplies the per-call read-only geofence and beacon context the
// recorder validates against. Assignment lookup lives with the host; the
// recorder only ever sees the already-scoped view for a user.
type Directory interface {
	// AssignedGeofences returns the geofences the user may attend from.
	AssignedGeofences(ctx context.Context, userID string) ([]geo.Geofence, error)

	// ValidateBeacon reports whether the beacon resolves to an active,
	// assigned geofence for the user. Unknown beacons are false, not errors.
	ValidateBeacon(ctx context.Context, beaconID, userID string) (bool, error)

	// BeaconName returns a display name for known beacons.
	BeaconName(ctx context.Context, beaconID string) (string, bool)
}
