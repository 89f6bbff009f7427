package compliance

import "fmt"

// RuleSet is one region's labor-law limits. Values are immutable after
// registry construction.
type RuleSet struct {
	Region                  string
	MaxWeeklyHours          float64
	MaxMonthlyHours         float64
	MinBreakAfterHours      float64
	MinBreakDurationMinutes int
	MinRestBetweenShifts    float64
	OvertimeRate            float64
	RecordRetentionYears    int
}

// Registry is an immutable region → rule set catalogue, built once at
// startup and injected wherever rules are needed. Unknown regions resolve
// to "no rules apply", never an error.
type Registry struct {
	rules map[string]RuleSet
}

// NewRegistry builds a registry from the given rule sets, keyed by their
// region codes.
func NewRegistry(sets []RuleSet) *Registry {
	rules := make(map[string]RuleSet, len(sets))
	for _, rs := range sets {
		rules[rs.Region] = rs
	}
	return &Registry{rules: rules}
}

// DefaultRegistry returns the built-in regional catalogue.
func DefaultRegistry() *Registry {
	return NewRegistry([]RuleSet{
		{Region: "US", MaxWeeklyHours: 40, MaxMonthlyHours: 160, MinBreakAfterHours: 6, MinBreakDurationMinutes: 30, MinRestBetweenShifts: 8, OvertimeRate: 1.5, RecordRetentionYears: 3},
		{Region: "EU", MaxWeeklyHours: 48, MaxMonthlyHours: 192, MinBreakAfterHours: 6, MinBreakDurationMinutes: 20, MinRestBetweenShifts: 11, OvertimeRate: 1.25, RecordRetentionYears: 5},
		{Region: "UK", MaxWeeklyHours: 48, MaxMonthlyHours: 192, MinBreakAfterHours: 6, MinBreakDurationMinutes: 20, MinRestBetweenShifts: 11, OvertimeRate: 1.5, RecordRetentionYears: 2},
		{Region: "CA", MaxWeeklyHours: 44, MaxMonthlyHours: 176, MinBreakAfterHours: 5, MinBreakDurationMinutes: 30, MinRestBetweenShifts: 8, OvertimeRate: 1.5, RecordRetentionYears: 3},
		{Region: "AU", MaxWeeklyHours: 38, MaxMonthlyHours: 152, MinBreakAfterHours: 5, MinBreakDurationMinutes: 30, MinRestBetweenShifts: 10, OvertimeRate: 1.5, RecordRetentionYears: 7},
		{Region: "SA", MaxWeeklyHours: 48, MaxMonthlyHours: 192, MinBreakAfterHours: 5, MinBreakDurationMinutes: 30, MinRestBetweenShifts: 8, OvertimeRate: 1.5, RecordRetentionYears: 5},
	})
}

// Lookup returns the rule set for a region. The second return is false for
// regions the catalogue does not cover.
func (r *Registry) Lookup(region string) (RuleSet, bool) {
	rs, ok := r.rules[region]
	return rs, ok
}

// Regions returns the covered region codes, unordered.
func (r *Registry) Regions() []string {
	out := make([]string, 0, len(r.rules))
	for region := range r.rules {
		out = append(out, region)
	}
	return out
}

// Requirements renders a region's rule set as reportable obligations.
// Unknown regions yield an empty list.
func (r *Registry) Requirements(region string) []Requirement {
	rs, ok := r.Lookup(region)
	if !ok {
		return nil
	}
	return []Requirement{
		{
			Category:    "Working Hours",
			Requirement: fmt.Sprintf("Maximum %g hours per week", rs.MaxWeeklyHours),
			Description: "Legal limit for weekly working hours",
			Mandatory:   true,
			Region:      region,
		},
		{
			Category:    "Working Hours",
			Requirement: fmt.Sprintf("Maximum %g hours per month", rs.MaxMonthlyHours),
			Description: "Legal limit for monthly working hours",
			Mandatory:   true,
			Region:      region,
		},
		{
			Category:    "Breaks",
			Requirement: fmt.Sprintf("Minimum %d minute break after %g hours", rs.MinBreakDurationMinutes, rs.MinBreakAfterHours),
			Description: "Mandatory break requirements",
			Mandatory:   true,
			Region:      region,
		},
		{
			Category:    "Rest Period",
			Requirement: fmt.Sprintf("Minimum %g hours between shifts", rs.MinRestBetweenShifts),
			Description: "Required rest period between work shifts",
			Mandatory:   true,
			Region:      region,
		},
	}
}
