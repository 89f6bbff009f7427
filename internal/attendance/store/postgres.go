package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"punchcard/internal/attendance"
	"punchcard/internal/geo"
)

// Postgres persists attendance events in PostgreSQL. The schema carries a
// partial unique index on (user_id, day, kind) for non-offline rows, so
// the per-day uniqueness invariant holds even if a second writer slips
// past the day lock.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is the DDL for the attendance_events table. Applied by the host's
// migration tooling; exposed here so integration tests stay in sync.
const Schema = `
CREATE TABLE IF NOT EXISTS attendance_events (
	id                  TEXT PRIMARY KEY,
	user_id             TEXT NOT NULL,
	ts                  TIMESTAMPTZ NOT NULL,
	day                 DATE NOT NULL,
	kind                TEXT NOT NULL,
	method              TEXT NOT NULL,
	coordinate          JSONB,
	within_geofence     BOOLEAN NOT NULL,
	matched_geofence_id TEXT,
	beacon_id           TEXT,
	beacon_name         TEXT,
	device_id           TEXT,
	approved            BOOLEAN NOT NULL,
	offline             BOOLEAN NOT NULL,
	notes               TEXT
);
CREATE INDEX IF NOT EXISTS attendance_events_user_ts
	ON attendance_events (user_id, ts);
CREATE UNIQUE INDEX IF NOT EXISTS attendance_events_live_day_unique
	ON attendance_events (user_id, day, kind) WHERE NOT offline;
`

func (s *Postgres) Append(ctx context.Context, ev attendance.Event) error {
	var coordJSON any
	if ev.Coordinate != nil {
		b, err := json.Marshal(ev.Coordinate)
		if err != nil {
			return fmt.Errorf("marshal coordinate: %w", err)
		}
		coordJSON = b
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_events (
			id, user_id, ts, day, kind, method, coordinate,
			within_geofence, matched_geofence_id, beacon_id, beacon_name,
			device_id, approved, offline, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		ev.ID, ev.UserID, ev.Timestamp, attendance.DayOf(ev.Timestamp),
		string(ev.Kind), string(ev.Method), coordJSON,
		ev.WithinGeofence, nullable(ev.MatchedGeofenceID), nullable(ev.BeaconID),
		nullable(ev.BeaconName), nullable(ev.DeviceID), ev.Approved, ev.Offline,
		nullable(ev.Notes),
	)
	if err != nil {
		return fmt.Errorf("append attendance event: %w", err)
	}
	return nil
}

func (s *Postgres) ListDay(ctx context.Context, userID string, day time.Time) ([]attendance.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, ts, kind, method, coordinate, within_geofence,
		       matched_geofence_id, beacon_id, beacon_name, device_id,
		       approved, offline, notes
		FROM attendance_events
		WHERE user_id = $1 AND day = $2
		ORDER BY ts ASC`,
		userID, attendance.DayOf(day),
	)
	if err != nil {
		return nil, fmt.Errorf("list day events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Postgres) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, ts, kind, method, coordinate, within_geofence,
		       matched_geofence_id, beacon_id, beacon_name, device_id,
		       approved, offline, notes
		FROM attendance_events
		WHERE user_id = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list events between: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListBetween returns every user's events in [start, end]. Compliance
// reporting uses it to evaluate a whole site.
func (s *Postgres) ListBetween(ctx context.Context, start, end time.Time) ([]attendance.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, ts, kind, method, coordinate, within_geofence,
		       matched_geofence_id, beacon_id, beacon_name, device_id,
		       approved, offline, notes
		FROM attendance_events
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts ASC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list all events between: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Postgres) Latest(ctx context.Context, userID string) (attendance.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, ts, kind, method, coordinate, within_geofence,
		       matched_geofence_id, beacon_id, beacon_name, device_id,
		       approved, offline, notes
		FROM attendance_events
		WHERE user_id = $1
		ORDER BY ts DESC
		LIMIT 1`,
		userID,
	)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return attendance.Event{}, attendance.ErrNotFound
	}
	if err != nil {
		return attendance.Event{}, fmt.Errorf("latest event: %w", err)
	}
	return ev, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (attendance.Event, error) {
	var (
		ev        attendance.Event
		kind      string
		method    string
		coordJSON []byte
		matched   sql.NullString
		beaconID  sql.NullString
		beaconNm  sql.NullString
		deviceID  sql.NullString
		notes     sql.NullString
	)
	err := row.Scan(
		&ev.ID, &ev.UserID, &ev.Timestamp, &kind, &method, &coordJSON,
		&ev.WithinGeofence, &matched, &beaconID, &beaconNm, &deviceID,
		&ev.Approved, &ev.Offline, &notes,
	)
	if err != nil {
		return attendance.Event{}, err
	}
	ev.Kind = attendance.EventKind(kind)
	ev.Method = attendance.Method(method)
	ev.Timestamp = ev.Timestamp.UTC()
	ev.MatchedGeofenceID = matched.String
	ev.BeaconID = beaconID.String
	ev.BeaconName = beaconNm.String
	ev.DeviceID = deviceID.String
	ev.Notes = notes.String
	if len(coordJSON) > 0 {
		var c geo.Coordinate
		if err := json.Unmarshal(coordJSON, &c); err != nil {
			return attendance.Event{}, fmt.Errorf("unmarshal coordinate: %w", err)
		}
		ev.Coordinate = &c
	}
	return ev, nil
}

func scanEvents(rows *sql.Rows) ([]attendance.Event, error) {
	var out []attendance.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
