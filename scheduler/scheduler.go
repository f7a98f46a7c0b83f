// Package scheduler runs the housekeeping jobs of the MyMedic API: idle
// assistant session pruning, health monitoring, preference store WAL
// checkpoints and log retention.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/mymedic-api/interfaces"
	"github.com/giygas/mymedic-api/logging"
	"github.com/giygas/mymedic-api/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const (
	pruneInterval      = 10 * time.Minute
	healthInterval     = time.Hour
	checkpointInterval = 6 * time.Hour
	logCleanupAt       = "03:30"
	jobTimeout         = 30 * time.Second
)

// SessionPruner drops idle assistant conversations.
type SessionPruner interface {
	PruneIdle(ttl time.Duration) int
	Len() int
}

// Checkpointer folds the write-ahead log back into the database file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Dependencies are the components the jobs act on. Sessions and Store may
// be nil; their jobs are then not scheduled.
type Dependencies struct {
	Health     interfaces.HealthChecker
	Sessions   SessionPruner
	Store      Checkpointer
	SessionTTL time.Duration
}

// Scheduler owns the gocron scheduler and its jobs.
type Scheduler struct {
	deps      Dependencies
	scheduler *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(deps Dependencies) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	return &Scheduler{
		deps:      deps,
		scheduler: s,
	}
}

// Start registers the jobs and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	if s.deps.Sessions != nil {
		if _, err := s.scheduler.Every(pruneInterval).Do(s.pruneSessions); err != nil {
			return fmt.Errorf("failed to schedule session pruning: %w", err)
		}
	}

	if s.deps.Health != nil {
		if _, err := s.scheduler.Every(healthInterval).WaitForSchedule().Do(s.monitorHealth); err != nil {
			return fmt.Errorf("failed to schedule health monitoring: %w", err)
		}
	}

	if s.deps.Store != nil {
		if _, err := s.scheduler.Every(checkpointInterval).WaitForSchedule().Do(s.checkpoint); err != nil {
			return fmt.Errorf("failed to schedule store checkpoint: %w", err)
		}
	}

	if _, err := s.scheduler.Every(1).Day().At(logCleanupAt).Do(s.cleanupLogs); err != nil {
		return fmt.Errorf("failed to schedule log cleanup: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) pruneSessions() {
	pruned := s.deps.Sessions.PruneIdle(s.deps.SessionTTL)
	remaining := s.deps.Sessions.Len()
	metrics.AssistantSessions.Set(float64(remaining))
	if pruned > 0 {
		logging.Info("Pruned idle assistant sessions", "pruned", pruned, "remaining", remaining)
	}
}

func (s *Scheduler) monitorHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	status, details, _ := s.deps.Health.HealthCheck(ctx)
	switch status {
	case "healthy":
		logging.Debug("Health check passed", "details", details)
	case "degraded":
		logging.Warn("Service is degraded", "details", details)
	default:
		logging.Error("Service is unhealthy", "details", details)
	}
}

func (s *Scheduler) checkpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.deps.Store.Checkpoint(ctx); err != nil {
		logging.Error("Failed to checkpoint preference store", "error", err)
	}
}

func (s *Scheduler) cleanupLogs() {
	deleted, err := logging.CleanupOldLogs()
	if err != nil {
		logging.Error("Failed to clean up old logs", "error", err)
		return
	}
	if deleted > 0 {
		logging.Info("Removed old log files", "count", deleted)
	}
}
