// Package compliance evaluates attendance history against regional labor
// rules and reduces the findings to violations, a score, and a status.
// Evaluation is read-only over caller-supplied events; nothing here is
// persisted or mutated afterwards.
package compliance

import "time"

// ViolationType classifies which rule family was breached.
type ViolationType string

const (
	TypeOvertime ViolationType = "overtime"
	TypeBreak    ViolationType = "break"
	TypeRest     ViolationType = "rest"
)

// Severity grades a violation. Critical findings dominate the status and
// weigh four times a warning in the score.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Violation is one detected breach of a regional rule. Violations are
// generated fresh on every evaluation and never updated in place.
type Violation struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Type        ViolationType `json:"violation_type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	DetectedAt  time.Time     `json:"detected_at"`
	Region      string        `json:"region"`
}

// StatusValue is the three-level compliance verdict.
type StatusValue string

const (
	StatusCompliant StatusValue = "compliant"
	StatusWarning   StatusValue = "warning"
	StatusCritical  StatusValue = "critical"
)

// Status summarizes an evaluation window for a region.
type Status struct {
	Region                 string      `json:"region"`
	IsCompliant            bool        `json:"is_compliant"`
	ComplianceScore        float64     `json:"compliance_score"`
	ViolationCount         int         `json:"violation_count"`
	CriticalViolationCount int         `json:"critical_violation_count"`
	LastChecked            time.Time   `json:"last_checked"`
	NextReviewDate         time.Time   `json:"next_review_date"`
	Status                 StatusValue `json:"status"`
}

// Requirement is one regional rule rendered as a reportable obligation.
type Requirement struct {
	Category    string `json:"category"`
	Requirement string `json:"requirement"`
	Description string `json:"description"`
	Mandatory   bool   `json:"mandatory"`
	Region      string `json:"region"`
}

// Report is the full evaluation artifact handed to reporting
// collaborators. Formatting, localization, and export are external.
type Report struct {
	Region          string        `json:"region"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	GeneratedAt     time.Time     `json:"generated_at"`
	TotalEmployees  int           `json:"total_employees"`
	TotalWorkingDays int          `json:"total_working_days"`
	ComplianceScore float64       `json:"compliance_score"`
	Violations      []Violation   `json:"violations"`
	Requirements    []Requirement `json:"requirements"`
	Summary         string        `json:"summary"`
	Recommendations []string      `json:"recommendations"`
}
