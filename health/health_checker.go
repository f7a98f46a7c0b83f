// Package health reports the readiness of the MyMedic API.
package health

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/giygas/mymedic-api/interfaces"
	"github.com/sony/gobreaker"
)

const pingTimeout = 2 * time.Second

// AssistantStatus exposes the state of the assistant integration.
type AssistantStatus interface {
	BreakerState() string
}

// SessionCounter reports how many conversations are held in memory.
type SessionCounter interface {
	Len() int
}

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	db        interfaces.Pinger
	assistant AssistantStatus
	sessions  SessionCounter
}

// NewHealthChecker creates a health checker. db, assistant and sessions may
// be nil when the component is not running.
func NewHealthChecker(dataStore interfaces.DataStore, db interfaces.Pinger, assistant AssistantStatus, sessions SessionCounter) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		db:        db,
		assistant: assistant,
		sessions:  sessions,
	}
}

// HealthCheck is unhealthy when the reference data is missing or the
// preference store is unreachable, degraded when the interaction index is
// empty or the assistant breaker is open, healthy otherwise.
func (h *HealthCheckerImpl) HealthCheck(ctx context.Context) (status string, data map[string]any, httpStatus int) {
	medications := h.dataStore.Catalog().Len()
	pairs := h.dataStore.Index().Len()
	loadedAt := h.dataStore.LoadedAt()

	storeStatus := "disabled"
	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := h.db.Ping(pingCtx); err != nil {
			storeStatus = "unreachable"
		} else {
			storeStatus = "ok"
		}
	}

	assistantStatus := "disabled"
	if h.assistant != nil {
		assistantStatus = h.assistant.BreakerState()
	}

	switch {
	case medications == 0 || storeStatus == "unreachable":
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case pairs == 0 || assistantStatus == gobreaker.StateOpen.String():
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"loaded_at":         loadedAt.Format(time.RFC3339),
		"medications":       medications,
		"interaction_pairs": pairs,
		"store":             storeStatus,
		"assistant":         assistantStatus,
	}
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		data["uptime_seconds"] = math.Round(time.Since(start).Seconds())
	}
	if h.sessions != nil {
		data["sessions"] = h.sessions.Len()
	}

	return status, data, httpStatus
}
