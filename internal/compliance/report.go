package compliance

import (
	"context"
	"fmt"
	"time"

	"punchcard/internal/attendance"
)

// Status evaluates the window and summarizes it: score, verdict, counts,
// and the region's next scheduled review.
func (e *Engine) Status(ctx context.Context, events []attendance.Event, region string, start, end time.Time) (Status, error) {
	violations, err := e.EvaluateViolations(ctx, events, region, start, end)
	if err != nil {
		return Status{}, err
	}

	critical, _ := countBySeverity(violations)
	checked := e.now().UTC()
	return Status{
		Region:                 region,
		IsCompliant:            len(violations) == 0,
		ComplianceScore:        Score(violations),
		ViolationCount:         len(violations),
		CriticalViolationCount: critical,
		LastChecked:            checked,
		NextReviewDate:         nextReviewDate(region, checked),
		Status:                 StatusOf(violations),
	}, nil
}

// nextReviewDate schedules the following compliance review. Stricter
// regimes get reviewed more often.
func nextReviewDate(region string, from time.Time) time.Time {
	switch region {
	case "EU", "UK", "AU", "SA":
		return from.AddDate(0, 1, 0)
	case "CA":
		return from.AddDate(0, 2, 0)
	default:
		return from.AddDate(0, 3, 0)
	}
}

// Report assembles the full evaluation artifact for a window: violations,
// score, the region's requirement catalogue, headcount, working-day count,
// and a narrative summary with recommendations.
func (e *Engine) Report(ctx context.Context, events []attendance.Event, region string, start, end time.Time) (Report, error) {
	violations, err := e.EvaluateViolations(ctx, events, region, start, end)
	if err != nil {
		return Report{}, err
	}

	windowed := filterWindow(events, start, end)
	employees := make(map[string]struct{})
	for _, ev := range windowed {
		employees[ev.UserID] = struct{}{}
	}

	score := Score(violations)
	rep := Report{
		Region:           region,
		StartDate:        start,
		EndDate:          end,
		GeneratedAt:      e.now().UTC(),
		TotalEmployees:   len(employees),
		TotalWorkingDays: workingDays(start, end),
		ComplianceScore:  score,
		Violations:       violations,
		Requirements:     e.registry.Requirements(region),
		Recommendations:  recommendations(violations),
	}
	rep.Summary = fmt.Sprintf(
		"Compliance report for %s covering %s to %s: %d employees evaluated over %d working days, %d violations found, compliance score %.1f.",
		region,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		rep.TotalEmployees,
		rep.TotalWorkingDays,
		len(violations),
		score,
	)
	return rep, nil
}

// workingDays counts weekdays in [start, end], inclusive.
func workingDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := attendance.DayOf(start); !d.After(attendance.DayOf(end)); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func recommendations(violations []Violation) []string {
	if len(violations) == 0 {
		return []string{"Maintain current compliance practices and continue periodic reviews."}
	}
	seen := make(map[ViolationType]bool)
	var out []string
	for _, v := range violations {
		if seen[v.Type] {
			continue
		}
		seen[v.Type] = true
		switch v.Type {
		case TypeOvertime:
			out = append(out, "Review employee schedules and redistribute workload to reduce overtime.")
		case TypeBreak:
			out = append(out, "Enforce mandatory break policies and remind employees to record breaks.")
		case TypeRest:
			out = append(out, "Adjust shift rosters to guarantee the minimum rest period between shifts.")
		}
	}
	return out
}
