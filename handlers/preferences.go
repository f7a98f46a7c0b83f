package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/patient"
	"github.com/giygas/mymedic-api/store"
	"github.com/go-chi/chi/v5"
)

// GetPatient returns the mock patient record of the dashboard.
func (h *HTTPHandlerImpl) GetPatient(w http.ResponseWriter, r *http.Request) {
	record := patient.Default()
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"patient":      record,
		"abnormalLabs": record.AbnormalLabs(),
	})
}

// ListBookmarks returns the bookmarked ids and their catalog records.
func (h *HTTPHandlerImpl) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"ids":         h.prefs.Bookmarks(),
		"medications": h.dataStore.Catalog().Filter(h.prefs.BookmarkSet()),
	})
}

// ToggleBookmark flips the bookmark of a catalog medication.
func (h *HTTPHandlerImpl) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateMedicationID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.dataStore.Catalog().Has(id) {
		RespondWithError(w, http.StatusNotFound, "Medication not found")
		return
	}

	bookmarked, err := h.prefs.ToggleBookmark(r.Context(), id)
	if err != nil {
		logging.Error("Failed to persist bookmark", "id", id, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save bookmark")
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"id":         id,
		"bookmarked": bookmarked,
	})
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (h *HTTPHandlerImpl) GetTheme(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, themeBody{Theme: string(h.prefs.Theme())})
}

// SetTheme stores "light" or "dark".
func (h *HTTPHandlerImpl) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	theme, err := store.ParseTheme(body.Theme)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.prefs.SetTheme(r.Context(), theme); err != nil {
		if errors.Is(err, store.ErrInvalidTheme) {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error("Failed to persist theme", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save theme")
		return
	}

	RespondWithJSON(w, http.StatusOK, themeBody{Theme: string(theme)})
}

func (h *HTTPHandlerImpl) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.ToggleTheme(r.Context())
	if err != nil {
		logging.Error("Failed to persist theme", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to save theme")
		return
	}

	RespondWithJSON(w, http.StatusOK, themeBody{Theme: string(theme)})
}
