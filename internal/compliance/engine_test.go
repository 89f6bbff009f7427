package compliance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchcard/internal/attendance"
	"punchcard/internal/audit"
)

func testEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRegistry(), slog.New(slog.DiscardHandler), opts...)
	require.NoError(t, err)
	return e
}

func shiftEvents(userID string, day time.Time, inHour, outHour float64) []attendance.Event {
	in := day.Add(time.Duration(inHour * float64(time.Hour)))
	out := day.Add(time.Duration(outHour * float64(time.Hour)))
	return []attendance.Event{
		{UserID: userID, Timestamp: in, Kind: attendance.KindCheckIn, Method: attendance.MethodManual, Approved: true},
		{UserID: userID, Timestamp: out, Kind: attendance.KindCheckOut, Method: attendance.MethodManual, Approved: true},
	}
}

func byType(violations []Violation) map[ViolationType][]Violation {
	out := make(map[ViolationType][]Violation)
	for _, v := range violations {
		out[v.Type] = append(out[v.Type], v)
	}
	return out
}

func TestEvaluateEmitsAuditEveryRun(t *testing.T) {
	// Emit runs after the errgroup has finished, so it must see the
	// caller's context, not the group's already-cancelled one.
	const runs = 50
	inbox := make(chan audit.Event, runs)
	e := testEngine(t, WithAudit(audit.NewPublisher(inbox)))

	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	events := shiftEvents("user-1", day, 9, 15)
	start := day
	end := day.AddDate(0, 0, 1)

	for i := 0; i < runs; i++ {
		_, err := e.EvaluateViolations(context.Background(), events, "EU", start, end)
		require.NoError(t, err)
	}

	require.Len(t, inbox, runs)
	ev := <-inbox
	assert.Equal(t, "compliance.evaluate", ev.Action)
	assert.Equal(t, "evaluated", ev.Outcome)
	assert.Contains(t, ev.Detail, "region=EU")
}

func TestWeeklyOvertimeWarning(t *testing.T) {
	e := testEngine(t)

	// Seven 6-hour shifts inside one Monday-opened week: 42h against the
	// US limit of 40. Short shifts keep break and rest rules quiet.
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	var events []attendance.Event
	for d := 0; d < 7; d++ {
		events = append(events, shiftEvents("user-1", monday.AddDate(0, 0, d), 9, 15)...)
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, TypeOvertime, violations[0].Type)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Equal(t, "user-1", violations[0].UserID)
	assert.Equal(t, "US", violations[0].Region)
	assert.Contains(t, violations[0].Description, "42.0h > 40h")
	assert.NotEmpty(t, violations[0].ID)
}

func TestMonthlyOvertimeCritical(t *testing.T) {
	e := testEngine(t)

	// 28 consecutive 6-hour days: 168h against the US monthly limit of
	// 160. The window ends on a Tuesday, so the final week holds only 12h
	// and the weekly rule stays quiet.
	first := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	var events []attendance.Event
	for d := 0; d < 28; d++ {
		events = append(events, shiftEvents("user-1", first.AddDate(0, 0, d), 9, 15)...)
	}

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 26, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, TypeOvertime, violations[0].Type)
	assert.Equal(t, SeverityCritical, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "monthly")
}

func TestBreakViolation(t *testing.T) {
	e := testEngine(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	events := shiftEvents("user-1", day, 8, 18.5)

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, TypeBreak, violations[0].Type)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "10.5h shift")
}

func TestBreakViolationFloodControl(t *testing.T) {
	e := testEngine(t)

	// Two qualifying shifts still yield a single break violation per user
	// per evaluation.
	day1 := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	events := append(shiftEvents("user-1", day1, 8, 18.5), shiftEvents("user-1", day2, 8, 18.5)...)

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	assert.Len(t, byType(violations)[TypeBreak], 1)
}

func TestRestViolation(t *testing.T) {
	e := testEngine(t)

	// Out at 21:00, back in at 03:00 the next day: six hours of rest
	// against a US minimum of eight.
	day1 := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	events := append(shiftEvents("user-1", day1, 15, 21), shiftEvents("user-1", day2, 3, 9)...)

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	require.Len(t, violations, 1)
	assert.Equal(t, TypeRest, violations[0].Type)
	assert.Equal(t, SeverityWarning, violations[0].Severity)
	assert.Contains(t, violations[0].Description, "6.0h rest")
}

func TestUnknownRegionYieldsNothing(t *testing.T) {
	e := testEngine(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	events := shiftEvents("user-1", day, 0, 14)

	violations, err := e.EvaluateViolations(context.Background(), events, "ZZ",
		day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestEventsOutsideWindowIgnored(t *testing.T) {
	e := testEngine(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	events := shiftEvents("user-1", day, 8, 18.5)

	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestViolationsPerUser(t *testing.T) {
	e := testEngine(t)

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	var events []attendance.Event
	for d := 0; d < 7; d++ {
		events = append(events, shiftEvents("user-1", monday.AddDate(0, 0, d), 9, 15)...)
		events = append(events, shiftEvents("user-2", monday.AddDate(0, 0, d), 9, 15)...)
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
	violations, err := e.EvaluateViolations(context.Background(), events, "US", start, end)
	require.NoError(t, err)

	require.Len(t, violations, 2)
	assert.Equal(t, "user-1", violations[0].UserID)
	assert.Equal(t, "user-2", violations[1].UserID)
}

func TestOpenDayContributesNoHours(t *testing.T) {
	e := testEngine(t)

	// A check-in with no matching check-out has no measurable duration.
	day := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	events := []attendance.Event{
		{UserID: "user-1", Timestamp: day, Kind: attendance.KindCheckIn, Method: attendance.MethodGPS},
	}

	violations, err := e.EvaluateViolations(context.Background(), events, "US",
		day.AddDate(0, 0, -7), day.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2024, 3, 11, 13, 45, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday maps to preceding monday",
			in:   time.Date(2024, 3, 17, 2, 0, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday mid week",
			in:   time.Date(2024, 3, 13, 23, 59, 0, 0, time.UTC),
			want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, weekStart(tc.in))
		})
	}
}
