package simulation

import (
	"context"
	"testing"
	"time"
)

func waitForCompletion(t *testing.T, service *Service, runID string) RunStatus {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		status, ok := service.GetRunStatus(runID)
		if !ok {
			t.Fatalf("Run %s disappeared", runID)
		}
		if status.Status == StatusCompleted || status.Status == StatusError {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Run %s did not finish in time", runID)
	return RunStatus{}
}

// TestStartRunLifecycle tests a run from start through completed result
func TestStartRunLifecycle(t *testing.T) {
	service := NewService(engineLeague(t, nil), engineSchedule(), nil)

	runID, err := service.StartRun(engineConfig(50, 21))
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if runID == "" {
		t.Fatal("Empty run ID")
	}

	status := waitForCompletion(t, service, runID)
	if status.Status != StatusCompleted {
		t.Fatalf("Run finished as %s: %s", status.Status, status.Error)
	}
	if status.CompletedTrials != 50 || status.TotalTrials != 50 {
		t.Errorf("Trials = %d/%d, want 50/50", status.CompletedTrials, status.TotalTrials)
	}
	if status.CompletedTime == nil {
		t.Error("Completed run missing completion time")
	}

	report, err := service.GetRunResult(context.Background(), runID)
	if err != nil {
		t.Fatalf("GetRunResult failed: %v", err)
	}
	if report.Trials != 50 {
		t.Errorf("Report trials = %d, want 50", report.Trials)
	}
}

// TestStartRunRejectsBadConfig tests synchronous validation
func TestStartRunRejectsBadConfig(t *testing.T) {
	service := NewService(engineLeague(t, nil), engineSchedule(), nil)

	cfg := engineConfig(0, 0)
	if _, err := service.StartRun(cfg); err == nil {
		t.Error("Expected error for zero trials")
	}

	// Nothing half-tracked remains after a rejected start.
	if _, ok := service.GetRunStatus(""); ok {
		t.Error("Rejected run left state behind")
	}
}

// TestRunDetailsRetention tests detail availability per configuration
func TestRunDetailsRetention(t *testing.T) {
	service := NewService(engineLeague(t, nil), engineSchedule(), nil)

	cfg := engineConfig(5, 2)
	cfg.RetainTrialDetail = true
	runID, err := service.StartRun(cfg)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	waitForCompletion(t, service, runID)

	details, ok := service.GetRunDetails(runID)
	if !ok || len(details) != 5 {
		t.Errorf("Details = %d entries, ok=%v; want 5", len(details), ok)
	}

	plainID, err := service.StartRun(engineConfig(5, 2))
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	waitForCompletion(t, service, plainID)
	if _, ok := service.GetRunDetails(plainID); ok {
		t.Error("Details retained without being requested")
	}
}

// TestUnknownRun tests lookups for runs that never existed
func TestUnknownRun(t *testing.T) {
	service := NewService(engineLeague(t, nil), engineSchedule(), nil)

	if _, ok := service.GetRunStatus("nope"); ok {
		t.Error("Unknown run reported a status")
	}
	if _, err := service.GetRunResult(context.Background(), "nope"); err == nil {
		t.Error("Unknown run returned a result")
	}
}

// TestCleanupOldRuns tests memory retention policy
func TestCleanupOldRuns(t *testing.T) {
	service := NewService(engineLeague(t, nil), engineSchedule(), nil)

	runID, err := service.StartRun(engineConfig(5, 1))
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	waitForCompletion(t, service, runID)

	// A generous retention keeps the run.
	service.CleanupOldRuns(time.Hour)
	if _, ok := service.GetRunStatus(runID); !ok {
		t.Error("Fresh run cleaned up too early")
	}

	// Zero retention drops every finished run.
	service.CleanupOldRuns(0)
	if _, ok := service.GetRunStatus(runID); ok {
		t.Error("Finished run survived zero retention")
	}
}
