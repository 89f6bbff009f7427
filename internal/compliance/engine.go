package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"punchcard/internal/attendance"
	"punchcard/internal/audit"
	"punchcard/internal/compliance/metrics"
)

// Engine scans attendance events against a region's rule set and emits
// typed violations. It holds no mutable state and is safe for concurrent
// evaluation.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
	now      func() time.Time
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithAudit attaches the audit trail publisher.
func WithAudit(p *audit.Publisher) EngineOption {
	return func(e *Engine) { e.audit = p }
}

// NewEngine constructs an engine over an immutable rule registry.
func NewEngine(registry *Registry, logger *slog.Logger, opts ...EngineOption) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("compliance: rule registry is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// shift is one same-day check-in/check-out pairing: the first check-in of
// the day with the first check-out after it. Days with no check-out
// contribute zero duration.
type shift struct {
	in  attendance.Event
	out attendance.Event
}

func (s shift) hours() float64 {
	return s.out.Timestamp.Sub(s.in.Timestamp).Hours()
}

// EvaluateViolations scans events in [start, end] for the region. Events
// may span many users; findings are grouped per user and flood-controlled
// to one violation per user per rule type per call. An unknown region
// yields no violations.
func (e *Engine) EvaluateViolations(ctx context.Context, events []attendance.Event, region string, start, end time.Time) ([]Violation, error) {
	evalStart := time.Now()
	defer func() { e.metrics.ObserveEvaluateLatency(time.Since(evalStart)) }()
	e.metrics.IncrementEvaluation(region)

	rules, ok := e.registry.Lookup(region)
	if !ok {
		e.logger.DebugContext(ctx, "no rule set for region, skipping evaluation", "region", region)
		return nil, nil
	}

	byUser := groupByUser(filterWindow(events, start, end))
	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	detectedAt := e.now().UTC()
	perUser := make([][]Violation, len(userIDs))

	// Keep the group's context separate: it is done once Wait returns, and
	// the audit emit below still needs the caller's.
	g, gctx := errgroup.WithContext(ctx)
	for i, userID := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perUser[i] = e.evaluateUser(byUser[userID], userID, rules, region, end, detectedAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var violations []Violation
	for _, found := range perUser {
		violations = append(violations, found...)
	}
	for _, v := range violations {
		e.metrics.IncrementViolation(string(v.Type), string(v.Severity))
	}

	e.emitAudit(ctx, region, len(violations))
	e.logger.InfoContext(ctx, "compliance evaluation complete",
		"region", region,
		"users", len(userIDs),
		"violations", len(violations),
	)
	return violations, nil
}

// evaluateUser applies the rule families in a fixed order so output is
// deterministic: weekly overtime, monthly overtime, breaks, rest.
func (e *Engine) evaluateUser(events []attendance.Event, userID string, rules RuleSet, region string, windowEnd time.Time, detectedAt time.Time) []Violation {
	shifts := pairShifts(events)

	var weekly, total float64
	week := weekStart(windowEnd)
	for _, s := range shifts {
		h := s.hours()
		total += h
		if !s.in.Timestamp.Before(week) {
			weekly += h
		}
	}

	newViolation := func(t ViolationType, sev Severity, desc string) Violation {
		return Violation{
			ID:          uuid.NewString(),
			UserID:      userID,
			Type:        t,
			Severity:    sev,
			Description: desc,
			DetectedAt:  detectedAt,
			Region:      region,
		}
	}

	var out []Violation
	if weekly > rules.MaxWeeklyHours {
		out = append(out, newViolation(TypeOvertime, SeverityWarning,
			fmt.Sprintf("employee exceeded maximum weekly hours: %.1fh > %gh", weekly, rules.MaxWeeklyHours)))
	}
	if total > rules.MaxMonthlyHours {
		out = append(out, newViolation(TypeOvertime, SeverityCritical,
			fmt.Sprintf("employee exceeded maximum monthly hours: %.1fh > %gh", total, rules.MaxMonthlyHours)))
	}

	// Break detection deliberately mirrors the recorded policy: a shift
	// "lacks required breaks" exactly when its duration alone crosses the
	// threshold. There is no separate break-event stream to consult.
	for _, s := range shifts {
		if h := s.hours(); h > rules.MinBreakAfterHours {
			out = append(out, newViolation(TypeBreak, SeverityWarning,
				fmt.Sprintf("employee did not take required breaks during %.1fh shift", h)))
			break
		}
	}

	for i := 1; i < len(shifts); i++ {
		rest := shifts[i].in.Timestamp.Sub(shifts[i-1].out.Timestamp).Hours()
		if rest < rules.MinRestBetweenShifts {
			out = append(out, newViolation(TypeRest, SeverityWarning,
				fmt.Sprintf("employee had only %.1fh rest between shifts, minimum is %gh", rest, rules.MinRestBetweenShifts)))
			break
		}
	}

	return out
}

func filterWindow(events []attendance.Event, start, end time.Time) []attendance.Event {
	out := make([]attendance.Event, 0, len(events))
	for _, ev := range events {
		if !ev.Timestamp.Before(start) && !ev.Timestamp.After(end) {
			out = append(out, ev)
		}
	}
	return out
}

func groupByUser(events []attendance.Event) map[string][]attendance.Event {
	byUser := make(map[string][]attendance.Event)
	for _, ev := range events {
		byUser[ev.UserID] = append(byUser[ev.UserID], ev)
	}
	return byUser
}

// pairShifts pairs the first check-in of each day with the first
// check-out after it. Unmatched check-ins are dropped: an open day has no
// measurable duration yet.
func pairShifts(events []attendance.Event) []shift {
	sorted := make([]attendance.Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	byDay := make(map[time.Time][]attendance.Event)
	var days []time.Time
	for _, ev := range sorted {
		day := attendance.DayOf(ev.Timestamp)
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], ev)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var shifts []shift
	for _, day := range days {
		var in *attendance.Event
		for i := range byDay[day] {
			ev := byDay[day][i]
			if in == nil && ev.Kind == attendance.KindCheckIn {
				in = &byDay[day][i]
				continue
			}
			if in != nil && ev.Kind == attendance.KindCheckOut {
				shifts = append(shifts, shift{in: *in, out: ev})
				break
			}
		}
	}
	return shifts
}

// weekStart returns the Monday 00:00 UTC opening the ISO week containing t.
func weekStart(t time.Time) time.Time {
	day := attendance.DayOf(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (e *Engine) emitAudit(ctx context.Context, region string, violations int) {
	err := e.audit.Emit(ctx, audit.Event{
		Action:  "compliance.evaluate",
		Outcome: "evaluated",
		Detail:  fmt.Sprintf("region=%s violations=%d", region, violations),
	})
	if err != nil {
		e.logger.WarnContext(ctx, "audit emit failed", "region", region, "error", err)
	}
}
