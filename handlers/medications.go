package handlers

import (
	"errors"
	"net/http"

	"github.com/giygas/mymedic-api/catalog"
	"github.com/giygas/mymedic-api/catalog/entities"
	"github.com/giygas/mymedic-api/compare"
	"github.com/giygas/mymedic-api/logging"
	"github.com/go-chi/chi/v5"
)

// medicationResponse is a catalog record with the user's bookmark flag.
type medicationResponse struct {
	entities.Medication
	Bookmarked bool `json:"bookmarked"`
}

// ListMedications searches the catalog. q is optional; bookmarked=true keeps
// only bookmarked medications. Always answers with an array.
func (h *HTTPHandlerImpl) ListMedications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query != "" {
		if err := h.validator.ValidateSearchQuery(query); err != nil {
			logging.Warn("Unusual user input", "q", query, "error", err)
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	onlyBookmarked := false
	switch r.URL.Query().Get("bookmarked") {
	case "", "false":
	case "true":
		onlyBookmarked = true
	default:
		RespondWithError(w, http.StatusBadRequest, "bookmarked must be true or false")
		return
	}

	bookmarks := h.prefs.BookmarkSet()
	results := make([]medicationResponse, 0)
	for _, med := range h.dataStore.Catalog().Search(query) {
		if onlyBookmarked && !bookmarks[med.ID] {
			continue
		}
		results = append(results, medicationResponse{Medication: med, Bookmarked: bookmarks[med.ID]})
	}

	RespondWithJSON(w, http.StatusOK, results)
}

// SuggestMedications returns autocomplete candidates. Queries shorter than
// two characters give an empty list.
func (h *HTTPHandlerImpl) SuggestMedications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query != "" {
		if err := h.validator.ValidateSearchQuery(query); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	RespondWithJSON(w, http.StatusOK, h.dataStore.Catalog().Suggest(query))
}

func (h *HTTPHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.dataStore.Catalog().Categories())
}

// GetMedication returns one record with its bookmark flag.
func (h *HTTPHandlerImpl) GetMedication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateMedicationID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	med, err := h.dataStore.Catalog().Get(id)
	if errors.Is(err, catalog.ErrUnknownMedication) {
		RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to read medication")
		return
	}

	RespondWithJSON(w, http.StatusOK, medicationResponse{Medication: med, Bookmarked: h.prefs.IsBookmarked(id)})
}

// CompareMedications lays out up to three medications side by side.
// Repeated ids count once.
func (h *HTTPHandlerImpl) CompareMedications(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		RespondWithError(w, http.StatusBadRequest, "ids is required")
		return
	}

	cat := h.dataStore.Catalog()
	if err := h.validator.ValidateSelection(ids, nil); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	seen := make(map[string]bool, len(ids))
	meds := make([]entities.Medication, 0, compare.MaxMedications)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if len(seen) > compare.MaxMedications {
			RespondWithError(w, http.StatusBadRequest, "at most 3 medications can be compared")
			return
		}

		med, err := cat.Get(id)
		if err != nil {
			RespondWithError(w, http.StatusNotFound, "Medication not found: "+id)
			return
		}
		meds = append(meds, med)
	}

	RespondWithJSON(w, http.StatusOK, compare.Build(meds))
}
