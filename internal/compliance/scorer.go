package compliance

// Score reduces a violation list to a 0–100 aggregate: each critical
// violation costs 20 points, each warning 5, floored at zero.
func Score(violations []Violation) float64 {
	critical, warning := countBySeverity(violations)
	score := 100.0 - 20.0*float64(critical) - 5.0*float64(warning)
	if score < 0 {
		return 0
	}
	return score
}

// StatusOf derives the three-level verdict: compliant when no violations
// exist, critical as soon as one critical violation does, warning
// otherwise.
func StatusOf(violations []Violation) StatusValue {
	if len(violations) == 0 {
		return StatusCompliant
	}
	critical, _ := countBySeverity(violations)
	if critical > 0 {
		return StatusCritical
	}
	return StatusWarning
}

func countBySeverity(violations []Violation) (critical, warning int) {
	for _, v := range violations {
		switch v.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		}
	}
	return critical, warning
}
