package entities

// Medication is one catalog entry describing a single drug product.
// Records are loaded once at startup and never mutated.
type Medication struct {
	ID                string                `json:"id"`
	BrandNames        []string              `json:"brandNames"`
	GenericName       string                `json:"genericName"`
	DrugClass         string                `json:"drugClass"`
	Category          string                `json:"category"`
	Description       string                `json:"description"`
	Uses              []string              `json:"uses"`
	Dosage            Dosage                `json:"dosage"`
	SideEffects       SideEffects           `json:"sideEffects"`
	Contraindications []string              `json:"contraindications"`
	Warnings          []string              `json:"warnings"`
	Interactions      []DeclaredInteraction `json:"interactions"`
	PregnancyCategory string                `json:"pregnancyCategory"`
	Storage           string                `json:"storage"`
}

type Dosage struct {
	Forms          []string `json:"forms"`
	Administration string   `json:"administration"`
	Adult          string   `json:"adult,omitempty"`
	Pediatric      string   `json:"pediatric,omitempty"`
}

type SideEffects struct {
	Common  []string `json:"common"`
	Serious []string `json:"serious"`
}

// DeclaredInteraction is authored with the catalog record. It is independent
// from the corpus-derived interaction index.
type DeclaredInteraction struct {
	Drug        string `json:"drug"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// PrimaryBrand returns the first brand name, or the generic name when the
// record has none.
func (m *Medication) PrimaryBrand() string {
	if len(m.BrandNames) == 0 {
		return m.GenericName
	}
	return m.BrandNames[0]
}
