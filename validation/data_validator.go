// Package validation checks user input and the integrity of the medication
// catalog against the interaction corpus.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/giygas/mymedic-api/catalog/entities"
	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/interfaces"
)

const (
	maxQueryLength = 50
	maxQueryWords  = 6
	maxIDLength    = 64

	// MaxSelection bounds how many identifiers one request may carry.
	MaxSelection = 25

	// reportSampleSize caps the example lists of a quality report.
	reportSampleSize = 10
)

// Compiled once at package initialization and reused for all validations.
var (
	// Letters of any script, digits, spaces and the punctuation found in
	// drug names.
	queryRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'/(),®™]+$`)

	idRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*$`)

	// Substring checks are faster than regex for these.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "url(", "@import",
		// SQL injection
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal
		"../", "..\\", "%2e%2e", "file://",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateMedication checks that a catalog record can be displayed and
// matched against the corpus.
func (v *DataValidatorImpl) ValidateMedication(m *entities.Medication) error {
	if m == nil {
		return fmt.Errorf("medication is nil")
	}
	if err := v.ValidateMedicationID(m.ID); err != nil {
		return fmt.Errorf("medication %q: %w", m.ID, err)
	}
	if strings.TrimSpace(m.GenericName) == "" {
		return fmt.Errorf("medication %q has no generic name", m.ID)
	}
	if len(m.BrandNames) == 0 {
		return fmt.Errorf("medication %q has no brand names", m.ID)
	}
	for _, b := range m.BrandNames {
		if strings.TrimSpace(b) == "" {
			return fmt.Errorf("medication %q has an empty brand name", m.ID)
		}
	}
	if strings.TrimSpace(m.Category) == "" {
		return fmt.Errorf("medication %q has no category", m.ID)
	}
	return nil
}

// ValidateSearchQuery validates a catalog query. Callers skip validation for
// an empty query, which lists everything.
func (v *DataValidatorImpl) ValidateSearchQuery(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > maxQueryLength {
		return fmt.Errorf("input too long: maximum %d characters", maxQueryLength)
	}

	if len(strings.Fields(input)) > maxQueryWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", maxQueryWords)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !queryRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and common punctuation are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateMedicationID checks that input looks like a catalog identifier:
// lowercase letters, digits and hyphens.
func (v *DataValidatorImpl) ValidateMedicationID(input string) error {
	if input == "" {
		return fmt.Errorf("medication id cannot be empty")
	}
	if len(input) > maxIDLength {
		return fmt.Errorf("medication id too long: maximum %d characters", maxIDLength)
	}
	if !idRegex.MatchString(input) {
		return fmt.Errorf("medication id %q contains invalid characters", input)
	}
	return nil
}

// ValidateSelection checks every identifier and that known accepts it.
// Duplicates are allowed.
func (v *DataValidatorImpl) ValidateSelection(ids []string, known func(string) bool) error {
	if len(ids) > MaxSelection {
		return fmt.Errorf("too many medications: maximum %d allowed", MaxSelection)
	}
	for _, id := range ids {
		if err := v.ValidateMedicationID(id); err != nil {
			return err
		}
		if known != nil && !known(id) {
			return fmt.Errorf("unknown medication: %s", id)
		}
	}
	return nil
}

// ReportDataQuality inspects the catalog, the parsed corpus rows and the
// built index. It never fails: every finding is informational.
func (v *DataValidatorImpl) ReportDataQuality(
	meds []entities.Medication,
	rows []interactions.CorpusRow,
	idx *interactions.Index,
) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateIDs:                      []string{},
		MedicationsWithoutInteractionsIDs: []string{},
		UnresolvedCorpusNamesList:         []string{},
	}

	// Check 1: duplicate identifiers
	seen := make(map[string]bool, len(meds))
	for _, m := range meds {
		if seen[m.ID] {
			report.DuplicateIDs = append(report.DuplicateIDs, m.ID)
		}
		seen[m.ID] = true
	}

	// Check 2: records missing content shown by the comparator
	for _, m := range meds {
		if len(m.Uses) == 0 {
			report.MedicationsWithoutUses++
		}
		if len(m.SideEffects.Common) == 0 && len(m.SideEffects.Serious) == 0 {
			report.MedicationsWithoutSideEffects++
		}
	}

	// Check 3: medications with no corpus interaction at all
	for _, m := range meds {
		if len(idx.Partners(m.ID)) == 0 {
			report.MedicationsWithoutInteractions++
			if len(report.MedicationsWithoutInteractionsIDs) < reportSampleSize {
				report.MedicationsWithoutInteractionsIDs = append(report.MedicationsWithoutInteractionsIDs, m.ID)
			}
		}
	}

	// Check 4: corpus drug fields that match no catalog name
	names := interactions.NewNameResolver(meds)
	unresolved := make(map[string]bool)
	for _, row := range rows {
		for _, field := range []string{row.Drug1, row.Drug2} {
			if _, ok := names.ResolveField(field); ok || unresolved[field] {
				continue
			}
			unresolved[field] = true
			report.UnresolvedCorpusNames++
			if len(report.UnresolvedCorpusNamesList) < reportSampleSize {
				report.UnresolvedCorpusNamesList = append(report.UnresolvedCorpusNamesList, field)
			}
		}
	}

	// Check 5: interactions declared on a record that the corpus does not know
	for _, m := range meds {
		for _, declared := range m.Interactions {
			other, ok := names.ResolveField(declared.Drug)
			if !ok || other == m.ID {
				continue
			}
			if _, indexed := idx.Lookup(m.ID, other); !indexed {
				report.DeclaredNotIndexed++
			}
		}
	}

	return report
}

// hasExcessiveRepetition reports the same character repeated more than 10
// times in a row.
func hasExcessiveRepetition(input string) bool {
	for i := 0; i < len(input)-10; i++ {
		allSame := true
		for j := 1; j <= 10; j++ {
			if input[i] != input[i+j] {
				allSame = false
				break
			}
		}
		if allSame {
			return true
		}
	}
	return false
}
