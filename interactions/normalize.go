package interactions

import (
	"strings"

	"github.com/giygas/mymedic-api/catalog/entities"
	"golang.org/x/text/unicode/norm"
)

var glyphReplacer = strings.NewReplacer("®", "", "™", "")

// CleanDrugName turns a raw corpus drug field into candidate bare names.
// "Warfarin (Coumadin®)" gives ["warfarin", "coumadin"].
func CleanDrugName(raw string) []string {
	s := strings.ToLower(norm.NFC.String(raw))
	s = glyphReplacer.Replace(s)

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '(' || r == '/'
	})

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.Replace(part, ")", "", 1))
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// NameResolver maps lowercased generic and brand names to catalog identifiers.
type NameResolver struct {
	names map[string]string
}

// NewNameResolver indexes every generic and brand name of meds, lowercased
// and NFC-normalized. When two records share a name the later record wins.
func NewNameResolver(meds []entities.Medication) *NameResolver {
	names := make(map[string]string, len(meds)*3)
	for _, med := range meds {
		names[nameKey(med.GenericName)] = med.ID
		for _, brand := range med.BrandNames {
			names[nameKey(brand)] = med.ID
		}
	}
	return &NameResolver{names: names}
}

// nameKey folds a catalog name the same way CleanDrugName folds corpus names.
func nameKey(name string) string {
	return strings.ToLower(norm.NFC.String(name))
}

// Lookup resolves a single bare name.
func (r *NameResolver) Lookup(name string) (string, bool) {
	id, ok := r.names[name]
	return id, ok
}

// Resolve returns the identifier of the first candidate, left to right, that
// names a catalog medication. Later candidates are ignored even if they
// would resolve to a different medication.
func (r *NameResolver) Resolve(candidates []string) (string, bool) {
	for _, name := range candidates {
		if id, ok := r.names[name]; ok {
			return id, true
		}
	}
	return "", false
}

// ResolveField cleans and resolves a raw corpus drug field.
func (r *NameResolver) ResolveField(raw string) (string, bool) {
	return r.Resolve(CleanDrugName(raw))
}
