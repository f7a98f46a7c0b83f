// Package handlers provides the HTTP handlers of the MyMedic API: catalog
// search, comparison, interaction checks, the patient record, preferences
// and the streaming assistant.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/giygas/mymedic-api/logging"
)

// RespondWithJSON writes payload as a JSON response.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response whose error field is the
// status text.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithErrorKind(w, code, http.StatusText(code), message)
}

// RespondWithErrorKind writes a JSON error response with a machine readable
// error kind, such as "missing_api_key".
func RespondWithErrorKind(w http.ResponseWriter, code int, kind, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   kind,
		"message": message,
		"code":    code,
	})
}

// eventStream writes server-sent events. Headers are sent with the first
// event so that a handler can still answer with a JSON error before that.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{w: w, flusher: flusher}
}

func (s *eventStream) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

// send writes one event with a JSON encoded payload and flushes it.
func (s *eventStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	s.start()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
