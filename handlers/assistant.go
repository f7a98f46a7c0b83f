package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/giygas/mymedic-api/assistant"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/metrics"
	"github.com/go-chi/chi/v5"
)

const maxMessageLength = 4000

type sessionResponse struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Busy      bool                `json:"busy"`
	Messages  []assistant.Message `json:"messages"`
}

func newSessionResponse(s *assistant.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID(),
		CreatedAt: s.CreatedAt(),
		Busy:      s.Busy(),
		Messages:  s.Messages(),
	}
}

// assistantUnavailable answers 503 when no API key is configured.
func (h *HTTPHandlerImpl) assistantUnavailable(w http.ResponseWriter) bool {
	if h.streamer != nil && h.sessions != nil {
		return false
	}
	RespondWithErrorKind(w, http.StatusServiceUnavailable, "missing_api_key", assistant.ErrMissingAPIKey.Error())
	return true
}

// CreateSession starts a conversation seeded with the greeting.
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.assistantUnavailable(w) {
		return
	}

	session := h.sessions.Create()
	metrics.AssistantSessions.Set(float64(h.sessions.Len()))
	logging.Debug("Assistant session created", "session_id", session.ID())

	RespondWithJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (h *HTTPHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	if h.assistantUnavailable(w) {
		return
	}

	session, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	RespondWithJSON(w, http.StatusOK, newSessionResponse(session))
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type fragmentEvent struct {
	Text string `json:"text"`
}

type errorEvent struct {
	Error   string            `json:"error"`
	Message assistant.Message `json:"message"`
}

// SendMessage streams the assistant reply as server-sent events: one
// "fragment" event per piece of text, then "done" with the completed
// message or "error" with the fallback message.
func (h *HTTPHandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	if h.assistantUnavailable(w) {
		return
	}

	session, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Text) > maxMessageLength {
		RespondWithError(w, http.StatusBadRequest, "message too long")
		return
	}

	stream := newEventStream(w)
	reply, err := session.Send(r.Context(), h.streamer, req.Text, func(text string) {
		if err := stream.send("fragment", fragmentEvent{Text: text}); err != nil {
			logging.Debug("Failed to write fragment", "session_id", session.ID(), "error", err)
		}
	})

	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, assistant.ErrBusy):
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, context.Canceled):
		metrics.AssistantRequestsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
		logging.Info("Assistant reply cancelled by client", "session_id", session.ID())
		return
	case err != nil:
		metrics.AssistantRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		logging.Error("Assistant reply failed", "session_id", session.ID(), "error", err)
		stream.send("error", errorEvent{Error: err.Error(), Message: reply})
		return
	}

	metrics.AssistantRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	stream.send("done", reply)
}
