// Package catalog provides the static medication reference data and the
// search helpers used by the catalog, dashboard and selection views.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/mymedic-api/catalog/entities"
)

//go:embed medications.json
var medicationsJSON []byte

// ErrUnknownMedication is returned when an identifier is not in the catalog.
var ErrUnknownMedication = errors.New("unknown medication")

// minSuggestQueryLength mirrors the autocomplete threshold of the dashboard.
const minSuggestQueryLength = 2

// Catalog is the ordered, read-only collection of medication records.
type Catalog struct {
	medications []entities.Medication
	byID        map[string]int
}

// Load decodes the embedded medication records.
func Load() (*Catalog, error) {
	return Parse(medicationsJSON)
}

// Parse builds a catalog from a JSON array of medication records.
// Duplicate identifiers and records without brand names are rejected.
func Parse(raw []byte) (*Catalog, error) {
	var meds []entities.Medication
	if err := json.Unmarshal(raw, &meds); err != nil {
		return nil, fmt.Errorf("failed to decode medications: %w", err)
	}
	return New(meds)
}

// New builds a catalog from already decoded records.
func New(meds []entities.Medication) (*Catalog, error) {
	byID := make(map[string]int, len(meds))
	for i := range meds {
		m := &meds[i]
		if strings.TrimSpace(m.ID) == "" {
			return nil, fmt.Errorf("medication at position %d has an empty id", i)
		}
		if _, exists := byID[m.ID]; exists {
			return nil, fmt.Errorf("duplicate medication id %q", m.ID)
		}
		if len(m.BrandNames) == 0 {
			return nil, fmt.Errorf("medication %q has no brand names", m.ID)
		}
		byID[m.ID] = i
	}

	return &Catalog{medications: meds, byID: byID}, nil
}

// All returns every medication in catalog order.
func (c *Catalog) All() []entities.Medication {
	return c.medications
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.medications)
}

// Get returns the medication with the given identifier.
func (c *Catalog) Get(id string) (entities.Medication, error) {
	i, ok := c.byID[id]
	if !ok {
		return entities.Medication{}, fmt.Errorf("%w: %s", ErrUnknownMedication, id)
	}
	return c.medications[i], nil
}

// Has reports whether id is a known identifier.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Search matches the query against generic name, brand names, category and
// drug class, case-insensitively. An empty query returns everything.
func (c *Catalog) Search(query string) []entities.Medication {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.medications
	}

	results := make([]entities.Medication, 0)
	for _, med := range c.medications {
		if matchesName(&med, q) ||
			strings.Contains(strings.ToLower(med.Category), q) ||
			strings.Contains(strings.ToLower(med.DrugClass), q) {
			results = append(results, med)
		}
	}
	return results
}

// Suggest returns autocomplete candidates matched on names only.
func (c *Catalog) Suggest(query string) []entities.Medication {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]entities.Medication, 0)
	if len([]rune(q)) < minSuggestQueryLength {
		return results
	}

	for _, med := range c.medications {
		if matchesName(&med, q) {
			results = append(results, med)
		}
	}
	return results
}

// Filter returns the medications whose identifiers are in ids, in catalog order.
func (c *Catalog) Filter(ids map[string]bool) []entities.Medication {
	results := make([]entities.Medication, 0, len(ids))
	for _, med := range c.medications {
		if ids[med.ID] {
			results = append(results, med)
		}
	}
	return results
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, med := range c.medications {
		if seen[med.Category] {
			continue
		}
		seen[med.Category] = true
		categories = append(categories, med.Category)
	}
	return categories
}

func matchesName(med *entities.Medication, q string) bool {
	if strings.Contains(strings.ToLower(med.GenericName), q) {
		return true
	}
	for _, name := range med.BrandNames {
		if strings.Contains(strings.ToLower(name), q) {
			return true
		}
	}
	return false
}
