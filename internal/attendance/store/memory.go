// Package store provides EventStore implementations: an in-memory one for
// tests and single-node runs, and a PostgreSQL one for production.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"punchcard/internal/attendance"
)

// Memory keeps events per user in append order. It intentionally favors
// clarity over performance.
type Memory struct {
	mu     sync.RWMutex
	events map[string][]attendance.Event
}

// NewMemory returns an empty in-memory event store.
func NewMemory() *Memory {
	return &Memory{events: make(map[string][]attendance.Event)}
}

func (s *Memory) Append(_ context.Context, ev attendance.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.UserID] = append(s.events[ev.UserID], ev)
	return nil
}

func (s *Memory) ListDay(_ context.Context, userID string, day time.Time) ([]attendance.Event, error) {
	day = attendance.DayOf(day)
	next := day.AddDate(0, 0, 1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Event
	for _, ev := range s.events[userID] {
		if !ev.Timestamp.Before(day) && ev.Timestamp.Before(next) {
			out = append(out, ev)
		}
	}
	sortByTime(out)
	return out, nil
}

func (s *Memory) ListByUserBetween(_ context.Context, userID string, start, end time.Time) ([]attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Event
	for _, ev := range s.events[userID] {
		if !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
			out = append(out, ev)
		}
	}
	sortByTime(out)
	return out, nil
}

// ListBetween returns every user's events in [start, end], ordered by
// timestamp. Compliance reporting uses it to evaluate a whole site.
func (s *Memory) ListBetween(_ context.Context, start, end time.Time) ([]attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.Event
	for _, events := range s.events {
		for _, ev := range events {
			if !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
				out = append(out, ev)
			}
		}
	}
	sortByTime(out)
	return out, nil
}

func (s *Memory) Latest(_ context.Context, userID string) (attendance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[userID]
	if len(events) == 0 {
		return attendance.Event{}, attendance.ErrNotFound
	}
	latest := events[0]
	for _, ev := range events[1:] {
		if ev.Timestamp.After(latest.Timestamp) {
			latest = ev
		}
	}
	return latest, nil
}

func sortByTime(events []attendance.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
