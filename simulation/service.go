package simulation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"season-engine/models"
)

// Run lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Store persists run lifecycle and finalized reports. The service works
// without one; everything then lives in memory only.
type Store interface {
	CreateRun(ctx context.Context, runID string, cfg Config) error
	UpdateRunStatus(ctx context.Context, runID, status string) error
	UpdateProgress(ctx context.Context, runID string, completed int) error
	SaveReport(ctx context.Context, runID string, report *models.OutcomeReport) error
	LoadReport(ctx context.Context, runID string) (*models.OutcomeReport, error)
}

// RunStatus tracks the progress of one Monte Carlo run.
type RunStatus struct {
	RunID           string     `json:"run_id"`
	Status          string     `json:"status"`
	TotalTrials     int        `json:"total_trials"`
	CompletedTrials int        `json:"completed_trials"`
	StartTime       time.Time  `json:"start_time"`
	CompletedTime   *time.Time `json:"completed_time,omitempty"`
	Error           string     `json:"error,omitempty"`

	result *RunResult
}

// Service manages concurrent Monte Carlo runs over one league and schedule:
// run IDs, status tracking, optional persistence. The simulation itself is
// delegated to Engine.
type Service struct {
	league   *models.League
	schedule []models.Game
	store    Store

	mu         sync.RWMutex
	activeRuns map[string]*RunStatus
}

// NewService creates a run manager. store may be nil.
func NewService(league *models.League, schedule []models.Game, store Store) *Service {
	return &Service{
		league:     league,
		schedule:   schedule,
		store:      store,
		activeRuns: make(map[string]*RunStatus),
	}
}

// StartRun validates the configuration, registers a new run and launches it
// in the background. Validation failures are returned synchronously so a bad
// request never produces a half-tracked run.
func (s *Service) StartRun(cfg Config) (string, error) {
	engine, err := NewEngine(s.league, s.schedule, cfg)
	if err != nil {
		return "", err
	}

	runID := uuid.New().String()

	s.mu.Lock()
	s.activeRuns[runID] = &RunStatus{
		RunID:       runID,
		Status:      StatusPending,
		TotalTrials: engine.Config().TrialCount,
		StartTime:   time.Now().UTC(),
	}
	s.mu.Unlock()

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.CreateRun(ctx, runID, engine.Config()); err != nil {
			log.Printf("Failed to persist run %s: %v", runID, err)
		}
	}

	go s.execute(runID, engine)
	return runID, nil
}

// execute drives one run to completion and records the outcome.
func (s *Service) execute(runID string, engine *Engine) {
	ctx := context.Background()
	s.setStatus(runID, StatusRunning, "")

	engine.OnProgress(func(completed int) {
		s.mu.Lock()
		status, exists := s.activeRuns[runID]
		if exists {
			status.CompletedTrials = completed
		}
		s.mu.Unlock()

		// Persist progress every 100 trials and at the end, not per trial.
		if s.store != nil && exists && (completed%100 == 0 || completed == status.TotalTrials) {
			storeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.store.UpdateProgress(storeCtx, runID, completed); err != nil {
				log.Printf("Failed to update progress for %s: %v", runID, err)
			}
		}
	})

	start := time.Now()
	result, err := engine.Run(ctx)
	if err != nil {
		log.Printf("Run %s failed: %v", runID, err)
		s.setStatus(runID, StatusError, err.Error())
		return
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if status, exists := s.activeRuns[runID]; exists {
		status.Status = StatusCompleted
		status.CompletedTrials = status.TotalTrials
		status.CompletedTime = &now
		status.result = result
	}
	s.mu.Unlock()

	if s.store != nil {
		storeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.store.UpdateRunStatus(storeCtx, runID, StatusCompleted); err != nil {
			log.Printf("Failed to update run status for %s: %v", runID, err)
		}
		if err := s.store.SaveReport(storeCtx, runID, result.Report); err != nil {
			log.Printf("Failed to save report for %s: %v", runID, err)
		}
	}

	log.Printf("Run %s completed: %d trials in %v", runID, result.Report.Trials, time.Since(start))
}

func (s *Service) setStatus(runID, state, errMsg string) {
	s.mu.Lock()
	if status, exists := s.activeRuns[runID]; exists {
		status.Status = state
		status.Error = errMsg
	}
	s.mu.Unlock()

	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.UpdateRunStatus(ctx, runID, state); err != nil {
			log.Printf("Failed to update run status for %s: %v", runID, err)
		}
	}
}

// GetRunStatus returns a snapshot of a run's progress.
func (s *Service) GetRunStatus(runID string) (RunStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, exists := s.activeRuns[runID]
	if !exists {
		return RunStatus{}, false
	}
	return *status, true
}

// GetRunResult returns the finalized report, consulting memory first and
// then the store for runs that aged out of memory.
func (s *Service) GetRunResult(ctx context.Context, runID string) (*models.OutcomeReport, error) {
	s.mu.RLock()
	status, exists := s.activeRuns[runID]
	if exists && status.result != nil {
		report := status.result.Report
		s.mu.RUnlock()
		return report, nil
	}
	s.mu.RUnlock()

	if s.store == nil {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	report, err := s.store.LoadReport(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("loading report for run %s: %w", runID, err)
	}
	return report, nil
}

// GetRunDetails returns the retained per-trial detail, when the run was
// configured to keep it. Details are never persisted.
func (s *Service) GetRunDetails(runID string) ([]TrialDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, exists := s.activeRuns[runID]
	if !exists || status.result == nil {
		return nil, false
	}
	return status.result.Details, status.result.Details != nil
}

// CleanupOldRuns drops completed runs older than the retention window from
// memory. Persisted reports remain loadable through the store.
func (s *Service) CleanupOldRuns(retention time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	for runID, status := range s.activeRuns {
		if status.StartTime.Before(cutoff) && status.Status != StatusRunning {
			delete(s.activeRuns, runID)
		}
	}
}
