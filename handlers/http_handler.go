package handlers

import (
	"net/http"
	"strings"

	"github.com/giygas/mymedic-api/assistant"
	"github.com/giygas/mymedic-api/interfaces"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// Dependencies are injected into the handler. Streamer is nil when no API
// key is configured; the assistant endpoints then answer 503.
type Dependencies struct {
	DataStore   interfaces.DataStore
	Validator   interfaces.DataValidator
	Preferences interfaces.PreferenceStore
	Health      interfaces.HealthChecker
	Streamer    assistant.Streamer
	Sessions    *assistant.Sessions
}

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	prefs     interfaces.PreferenceStore
	health    interfaces.HealthChecker
	streamer  assistant.Streamer
	sessions  *assistant.Sessions
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(deps Dependencies) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		dataStore: deps.DataStore,
		validator: deps.Validator,
		prefs:     deps.Preferences,
		health:    deps.Health,
		streamer:  deps.Streamer,
		sessions:  deps.Sessions,
	}
}

// HealthCheck reports the service health computed by the health checker.
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.HealthCheck(r.Context())

	RespondWithJSON(w, httpStatus, map[string]any{
		"status": status,
		"data":   details,
	})
}

// splitIDs parses a comma separated id list, dropping blanks.
func splitIDs(raw string) []string {
	ids := make([]string, 0)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
