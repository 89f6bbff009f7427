package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"punchcard/internal/attendance/daylock"
	"punchcard/internal/attendance/metrics"
	"punchcard/internal/audit"
	"punchcard/internal/geo"
	"punchcard/pkg/httperr"
)

// Recorder runs the per-day check-in/check-out state machine. It holds the
// (user, day) lock across its read-then-append sequence so two concurrent
// requests cannot both pass the uniqueness check.
type Recorder struct {
	store   EventStore
	dir     Directory
	lock    daylock.DayLock
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	now     func() time.Time
}

// RecorderOption configures optional recorder collaborators.
type RecorderOption func(*Recorder)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

// WithAudit attaches the audit trail publisher.
func WithAudit(p *audit.Publisher) RecorderOption {
	return func(r *Recorder) { r.audit = p }
}

// NewRecorder constructs a recorder. Store, directory, and lock are
// required; their absence is a wiring bug, reported loudly.
func NewRecorder(store EventStore, dir Directory, lock daylock.DayLock, logger *slog.Logger, opts ...RecorderOption) (*Recorder, error) {
	if store == nil || dir == nil || lock == nil {
		return nil, fmt.Errorf("attendance: store, directory, and day lock are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		store:  store,
		dir:    dir,
		lock:   lock,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// CheckIn records the start of a user's day. A second non-offline check-in
// on the same calendar day is rejected with already_checked_in; offline
// records bypass the uniqueness check entirely.
func (r *Recorder) CheckIn(ctx context.Context, req CheckRequest) (*Event, error) {
	return r.record(ctx, req, KindCheckIn)
}

// CheckOut records the end of a user's day. It requires a same-day
// check-in (no_check_in_found otherwise) and rejects a second non-offline
// check-out with already_checked_out.
func (r *Recorder) CheckOut(ctx context.Context, req CheckRequest) (*Event, error) {
	return r.record(ctx, req, KindCheckOut)
}

func (r *Recorder) record(ctx context.Context, req CheckRequest, kind EventKind) (*Event, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveRecordLatency(time.Since(start)) }()

	if req.UserID == "" {
		return nil, httperr.New(httperr.CodeBadRequest, "user id is required")
	}
	if req.Coordinate != nil && !req.Coordinate.Valid() {
		return nil, httperr.New(httperr.CodeBadRequest, "coordinate out of range")
	}

	day := DayOf(r.now())

	release, err := r.lock.Acquire(ctx, req.UserID, day)
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeInternal, "acquire day lock", err)
	}
	defer release()

	today, err := r.store.ListDay(ctx, req.UserID, day)
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeInternal, "load today's events", err)
	}

	if err := checkPreconditions(today, req, kind); err != nil {
		r.metrics.IncrementOutcome(string(kind), string(httperr.CodeOf(err)))
		r.emitAudit(ctx, req.UserID, kind, string(httperr.CodeOf(err)), "")
		return nil, err
	}

	ev, err := r.buildEvent(ctx, req, kind)
	if err != nil {
		return nil, err
	}

	if err := r.store.Append(ctx, *ev); err != nil {
		return nil, httperr.Wrap(httperr.CodeInternal, "append attendance event", err)
	}

	r.metrics.IncrementOutcome(string(kind), "recorded")
	r.metrics.IncrementRecorded(string(ev.Method), ev.Approved)
	r.emitAudit(ctx, req.UserID, kind, "recorded", string(ev.Method))

	r.logger.InfoContext(ctx, "attendance event recorded",
		"user_id", ev.UserID,
		"kind", ev.Kind,
		"method", ev.Method,
		"approved", ev.Approved,
		"within_geofence", ev.WithinGeofence,
		"offline", ev.Offline,
	)
	return ev, nil
}

// checkPreconditions applies the state machine rules against the day's
// existing events. Offline requests bypass uniqueness; the check-out
// requirement for a prior check-in applies to every request.
func checkPreconditions(today []Event, req CheckRequest, kind EventKind) error {
	var hasCheckIn, hasLiveCheckIn, hasLiveCheckOut bool
	for _, ev := range today {
		switch ev.Kind {
		case KindCheckIn:
			hasCheckIn = true
			if !ev.Offline {
				hasLiveCheckIn = true
			}
		case KindCheckOut:
			if !ev.Offline {
				hasLiveCheckOut = true
			}
		}
	}

	switch kind {
	case KindCheckIn:
		if hasLiveCheckIn && !req.Offline {
			return httperr.New(httperr.CodeAlreadyCheckedIn, "you have already checked in today")
		}
	case KindCheckOut:
		if !hasCheckIn {
			return httperr.New(httperr.CodeNoCheckInFound, "no check-in recorded for today")
		}
		if hasLiveCheckOut && !req.Offline {
			return httperr.New(httperr.CodeAlreadyCheckedOut, "you have already checked out today")
		}
	}
	return nil
}

// buildEvent resolves geofence and beacon evidence and derives the
// approval and method fields.
func (r *Recorder) buildEvent(ctx context.Context, req CheckRequest, kind EventKind) (*Event, error) {
	var (
		within     bool
		matchedID  string
		validBcn   bool
		beaconName string
	)

	if req.Coordinate != nil {
		fences, err := r.dir.AssignedGeofences(ctx, req.UserID)
		if err != nil {
			return nil, httperr.Wrap(httperr.CodeInternal, "resolve assigned geofences", err)
		}
		within = geo.Validate(*req.Coordinate, fences)
		if within {
			if matched, ok := geo.NearestMatch(*req.Coordinate, fences); ok {
				matchedID = matched.ID
			}
		}
	}

	if req.BeaconID != "" {
		valid, err := r.dir.ValidateBeacon(ctx, req.BeaconID, req.UserID)
		if err != nil {
			return nil, httperr.Wrap(httperr.CodeInternal, "validate beacon", err)
		}
		validBcn = valid
		if name, ok := r.dir.BeaconName(ctx, req.BeaconID); ok {
			beaconName = name
		}
	}

	ts := r.now().UTC()
	if req.Offline && req.OfflineTimestamp != nil {
		ts = req.OfflineTimestamp.UTC()
	}

	return &Event{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		Timestamp:         ts,
		Kind:              kind,
		Method:            MethodOf(req),
		Coordinate:        req.Coordinate,
		WithinGeofence:    within,
		MatchedGeofenceID: matchedID,
		BeaconID:          req.BeaconID,
		BeaconName:        beaconName,
		DeviceID:          req.DeviceID,
		Approved:          within || validBcn,
		Offline:           req.Offline,
		Notes:             req.Notes,
	}, nil
}

func (r *Recorder) emitAudit(ctx context.Context, userID string, kind EventKind, outcome, detail string) {
	err := r.audit.Emit(ctx, audit.Event{
		UserID:  userID,
		Action:  "attendance." + string(kind),
		Outcome: outcome,
		Detail:  detail,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "audit emit failed", "user_id", userID, "error", err)
	}
}
