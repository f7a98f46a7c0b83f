package interactions

import "strings"

// Severity is a coarse risk tier used for triage in the interaction checker.
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeverityCritical Severity = "Critical"
)

// Rank orders severities so that Critical > Moderate > Minor > None.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if other.Rank() > s.Rank() {
		return other
	}
	return s
}

// Keyword tiers, checked in order. Matching is case-insensitive substring
// containment. "tdr" is kept as published in the corpus rules.
var (
	criticalKeywords = []string{
		"usually avoid", "tdr", "torsades", "fatal", "rhabdomyolysis",
		"lactic acidosis", "angioedema", "qtc prolongation", "contraindicated",
	}
	moderateKeywords = []string{
		"bleeding risk", "monitor", "take precautions", "hypotension", "toxicity",
		"increased levels", "increased effect", "increased concentrations",
	}
)

// InferSeverity classifies free clinical text. Minor is the floor: every
// text gets a tier.
func InferSeverity(text string) Severity {
	lower := strings.ToLower(text)
	if containsAny(lower, criticalKeywords) {
		return SeverityCritical
	}
	if containsAny(lower, moderateKeywords) {
		return SeverityModerate
	}
	return SeverityMinor
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
