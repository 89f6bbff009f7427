package compliance

import (
	"context"
	"fmt"
	"time"

	"punchcard/internal/attendance"
)

// EventSource supplies the attendance events a compliance evaluation
// reads. The event store satisfies it.
type EventSource interface {
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]attendance.Event, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]attendance.Event, error)
}

// Service ties the rule engine to the event store for the HTTP surface:
// per-user status and violations, and site-wide reports.
type Service struct {
	engine   *Engine
	registry *Registry
	events   EventSource
}

// NewService wires the compliance engine to its event source.
func NewService(engine *Engine, registry *Registry, events EventSource) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("compliance: engine is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("compliance: registry is required")
	}
	if events == nil {
		return nil, fmt.Errorf("compliance: event source is required")
	}
	return &Service{engine: engine, registry: registry, events: events}, nil
}

// UserStatus evaluates one user's window under their region's rules.
func (s *Service) UserStatus(ctx context.Context, userID, region string, start, end time.Time) (Status, error) {
	events, err := s.events.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return Status{}, fmt.Errorf("load events for status: %w", err)
	}
	return s.engine.Status(ctx, events, region, start, end)
}

// UserViolations evaluates one user's window and returns the findings.
func (s *Service) UserViolations(ctx context.Context, userID, region string, start, end time.Time) ([]Violation, error) {
	events, err := s.events.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load events for violations: %w", err)
	}
	return s.engine.EvaluateViolations(ctx, events, region, start, end)
}

// RegionRequirements renders a region's rule set as requirement entries.
func (s *Service) RegionRequirements(region string) []Requirement {
	return s.registry.Requirements(region)
}

// RegionReport evaluates every user's events in the window under the
// given region's rules and assembles the full report.
func (s *Service) RegionReport(ctx context.Context, region string, start, end time.Time) (Report, error) {
	events, err := s.events.ListBetween(ctx, start, end)
	if err != nil {
		return Report{}, fmt.Errorf("load events for report: %w", err)
	}
	return s.engine.Report(ctx, events, region, start, end)
}
