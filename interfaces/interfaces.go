// Package interfaces defines the contracts between the data, validation,
// health, scheduler and HTTP layers of the MyMedic API.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/mymedic-api/catalog"
	"github.com/giygas/mymedic-api/catalog/entities"
	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/store"
)

// LoadStats summarizes how the reference data was built at startup.
type LoadStats struct {
	Medications  int                     `json:"medications"`
	Parse        interactions.ParseStats `json:"parse"`
	Build        interactions.BuildStats `json:"build"`
	Pairs        int                     `json:"pairs"`
	LoadDuration time.Duration           `json:"load_duration_ns"`
}

// DataQualityReport lists issues found in the catalog and corpus. Lists are
// capped at a handful of examples; counters are exact.
type DataQualityReport struct {
	DuplicateIDs                      []string `json:"duplicate_ids"`
	MedicationsWithoutUses            int      `json:"medications_without_uses"`
	MedicationsWithoutSideEffects     int      `json:"medications_without_side_effects"`
	MedicationsWithoutInteractions    int      `json:"medications_without_interactions"`
	MedicationsWithoutInteractionsIDs []string `json:"medications_without_interactions_ids"`
	UnresolvedCorpusNames             int      `json:"unresolved_corpus_names"`
	UnresolvedCorpusNamesList         []string `json:"unresolved_corpus_names_list"`
	DeclaredNotIndexed                int      `json:"declared_not_indexed"`
}

// DataStore gives read access to the reference data built once at startup.
type DataStore interface {
	Catalog() *catalog.Catalog
	Index() *interactions.Index
	LoadedAt() time.Time
	Stats() LoadStats
	GetServerStartTime() time.Time
}

// PreferenceStore persists the user's bookmarks and theme.
type PreferenceStore interface {
	Bookmarks() []string
	BookmarkSet() map[string]bool
	IsBookmarked(id string) bool
	ToggleBookmark(ctx context.Context, id string) (bool, error)
	Theme() store.Theme
	SetTheme(ctx context.Context, theme store.Theme) error
	ToggleTheme(ctx context.Context) (store.Theme, error)
}

// Pinger reports whether a backing resource is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scheduler runs housekeeping jobs.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the API endpoints.
type HTTPHandler interface {
	ListMedications(w http.ResponseWriter, r *http.Request)
	SuggestMedications(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	GetMedication(w http.ResponseWriter, r *http.Request)
	CompareMedications(w http.ResponseWriter, r *http.Request)
	CheckInteractions(w http.ResponseWriter, r *http.Request)
	QueryInteractions(w http.ResponseWriter, r *http.Request)
	GetPatient(w http.ResponseWriter, r *http.Request)
	ListBookmarks(w http.ResponseWriter, r *http.Request)
	ToggleBookmark(w http.ResponseWriter, r *http.Request)
	GetTheme(w http.ResponseWriter, r *http.Request)
	SetTheme(w http.ResponseWriter, r *http.Request)
	ToggleTheme(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker computes the service health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (status string, details map[string]any, httpStatus int)
}

// DataValidator checks user input and the integrity of the reference data.
type DataValidator interface {
	// ValidateMedication checks a single catalog record.
	ValidateMedication(m *entities.Medication) error

	// ValidateSearchQuery checks a free-text catalog query.
	ValidateSearchQuery(input string) error

	// ValidateMedicationID checks the shape of a medication identifier.
	ValidateMedicationID(input string) error

	// ValidateSelection checks a list of identifiers and that each is in
	// the catalog.
	ValidateSelection(ids []string, known func(string) bool) error

	// ReportDataQuality inspects the catalog against the corpus and index.
	ReportDataQuality(meds []entities.Medication, rows []interactions.CorpusRow, idx *interactions.Index) *DataQualityReport
}
