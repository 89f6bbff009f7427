package attendance

import (
	"context"
	"errors"
	"time"

	"punchcard/pkg/httperr"
)

// History returns the user's events within [start, end], oldest first.
func (r *Recorder) History(ctx context.Context, userID string, start, end time.Time) ([]Event, error) {
	if userID == "" {
		return nil, httperr.New(httperr.CodeBadRequest, "user id is required")
	}
	events, err := r.store.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeInternal, "list attendance events", err)
	}
	return events, nil
}

// Today returns the user's events for the current UTC day.
func (r *Recorder) Today(ctx context.Context, userID string) ([]Event, error) {
	if userID == "" {
		return nil, httperr.New(httperr.CodeBadRequest, "user id is required")
	}
	events, err := r.store.ListDay(ctx, userID, DayOf(r.now()))
	if err != nil {
		return nil, httperr.Wrap(httperr.CodeInternal, "list today's events", err)
	}
	return events, nil
}

// Latest returns the user's most recent event. The second return is false
// when the user has no events at all.
func (r *Recorder) Latest(ctx context.Context, userID string) (Event, bool, error) {
	if userID == "" {
		return Event{}, false, httperr.New(httperr.CodeBadRequest, "user id is required")
	}
	ev, err := r.store.Latest(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, httperr.Wrap(httperr.CodeInternal, "load latest event", err)
	}
	return ev, true, nil
}
