package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/giygas/mymedic-api/interactions"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/metrics"
)

type checkInteractionsRequest struct {
	MedicationIDs []string `json:"medicationIds"`
}

// CheckInteractions resolves the interactions between the posted
// medications.
func (h *HTTPHandlerImpl) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	var req checkInteractionsRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.resolve(w, req.MedicationIDs)
}

// QueryInteractions is the query string form: ?ids=a,b,c.
func (h *HTTPHandlerImpl) QueryInteractions(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, splitIDs(r.URL.Query().Get("ids")))
}

func (h *HTTPHandlerImpl) resolve(w http.ResponseWriter, ids []string) {
	if ids == nil {
		ids = []string{}
	}

	if err := h.validator.ValidateSelection(ids, h.dataStore.Catalog().Has); err != nil {
		logging.Warn("Rejected interaction check", "ids", ids, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithResult(w, len(ids), h.dataStore.Index().Resolve(ids))
}

// respondWithResult counts checks that compared at least one pair.
func respondWithResult(w http.ResponseWriter, selected int, result interactions.Result) {
	if selected >= 2 {
		metrics.InteractionChecksTotal.WithLabelValues(string(result.Severity)).Inc()
	}
	RespondWithJSON(w, http.StatusOK, result)
}
