package interactions

import "fmt"

const (
	summaryNeedTwo    = "Add at least two medications to check for interactions."
	summaryNoneFound  = "No significant interactions were found between the selected medications."
	noneFoundAdvisory = "This check is not a substitute for professional medical advice. Always consult your doctor or pharmacist."
)

// Result is the aggregate verdict for a set of selected medications.
type Result struct {
	Severity Severity `json:"severity"`
	Summary  string   `json:"summary"`
	Details  []string `json:"details"`
}

// Resolve checks every unordered pair of ids against the index and returns
// the worst severity found. Pairs are visited in (i, j>i) order and details
// keep that order. Duplicated ids are not collapsed; a pair of identical ids
// never matches. Resolve has no side effects.
func (idx *Index) Resolve(ids []string) Result {
	if len(ids) < 2 {
		return Result{
			Severity: SeverityNone,
			Summary:  summaryNeedTwo,
			Details:  []string{},
		}
	}

	var found []Detail
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if d, ok := idx.Lookup(ids[i], ids[j]); ok {
				found = append(found, d)
			}
		}
	}

	if len(found) == 0 {
		return Result{
			Severity: SeverityNone,
			Summary:  summaryNoneFound,
			Details:  []string{noneFoundAdvisory},
		}
	}

	highest := SeverityNone
	details := make([]string, 0, len(found))
	for _, d := range found {
		highest = highest.Max(d.Severity)
		details = append(details, d.Details)
	}

	return Result{
		Severity: highest,
		Summary:  fmt.Sprintf("%d interaction(s) found. Highest severity: %s.", len(found), highest),
		Details:  details,
	}
}
