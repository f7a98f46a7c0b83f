// Package compare lays out selected medications side by side over a fixed
// set of named fields.
package compare

import "github.com/giygas/mymedic-api/catalog/entities"

// MaxMedications is the number of medications a comparison can hold.
const MaxMedications = 3

// NotAvailable is rendered for a field without a value.
const NotAvailable = "N/A"

// Field is one comparison row. Value returns the field content of a
// medication as a list; scalar fields yield at most one element.
type Field struct {
	Key   string
	Label string
	Value func(*entities.Medication) []string
}

// Fields lists the compared attributes in display order.
var Fields = []Field{
	{Key: "category", Label: "Category", Value: func(m *entities.Medication) []string { return scalar(m.Category) }},
	{Key: "drugClass", Label: "Drug Class", Value: func(m *entities.Medication) []string { return scalar(m.DrugClass) }},
	{Key: "uses", Label: "Uses", Value: func(m *entities.Medication) []string { return m.Uses }},
	{Key: "dosage.forms", Label: "Dosage Forms", Value: func(m *entities.Medication) []string { return m.Dosage.Forms }},
	{Key: "sideEffects.common", Label: "Common Side Effects", Value: func(m *entities.Medication) []string { return m.SideEffects.Common }},
	{Key: "sideEffects.serious", Label: "Serious Side Effects", Value: func(m *entities.Medication) []string { return m.SideEffects.Serious }},
	{Key: "contraindications", Label: "Contraindications", Value: func(m *entities.Medication) []string { return m.Contraindications }},
	{Key: "pregnancyCategory", Label: "Pregnancy Category", Value: func(m *entities.Medication) []string { return scalar(m.PregnancyCategory) }},
}

func scalar(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// Column identifies one compared medication.
type Column struct {
	ID          string `json:"id"`
	BrandName   string `json:"brandName"`
	GenericName string `json:"genericName"`
}

// Row holds the values of one field, one cell per column.
type Row struct {
	Key    string     `json:"key"`
	Label  string     `json:"label"`
	Values [][]string `json:"values"`
}

// Table is the rendered comparison.
type Table struct {
	Medications []Column `json:"medications"`
	Rows        []Row    `json:"rows"`
}

// Select keeps the first MaxMedications distinct medications, in order.
func Select(meds []entities.Medication) []entities.Medication {
	seen := make(map[string]bool, MaxMedications)
	selected := make([]entities.Medication, 0, MaxMedications)
	for _, m := range meds {
		if len(selected) == MaxMedications {
			break
		}
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		selected = append(selected, m)
	}
	return selected
}

// Build renders meds over Fields. Duplicates and medications past
// MaxMedications are ignored. Empty values are rendered as NotAvailable.
func Build(meds []entities.Medication) Table {
	selected := Select(meds)

	table := Table{
		Medications: make([]Column, 0, len(selected)),
		Rows:        make([]Row, 0, len(Fields)),
	}
	for i := range selected {
		m := &selected[i]
		table.Medications = append(table.Medications, Column{
			ID:          m.ID,
			BrandName:   m.PrimaryBrand(),
			GenericName: m.GenericName,
		})
	}

	for _, f := range Fields {
		row := Row{Key: f.Key, Label: f.Label, Values: make([][]string, 0, len(selected))}
		for i := range selected {
			v := f.Value(&selected[i])
			if len(v) == 0 {
				v = []string{NotAvailable}
			}
			row.Values = append(row.Values, v)
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}
