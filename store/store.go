package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"season-engine/models"
	"season-engine/simulation"
)

// DB is the subset of pgxpool.Pool the store needs, kept narrow so tests
// can substitute a mock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store persists simulation runs and reports and loads league inputs from
// Postgres. It satisfies simulation.Store.
type Store struct {
	db DB
}

// New wraps a connection pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.db.Close()
}

// InitSchema creates the tables the store uses if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS simulation_runs (
			id UUID PRIMARY KEY,
			config JSONB NOT NULL,
			total_trials INTEGER NOT NULL,
			completed_trials INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS simulation_reports (
			run_id UUID PRIMARY KEY REFERENCES simulation_runs(id),
			report JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			abbrev TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT NOT NULL DEFAULT '',
			division TEXT NOT NULL,
			conference TEXT NOT NULL,
			rating DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schedule (
			id TEXT PRIMARY KEY,
			week INTEGER NOT NULL,
			home TEXT NOT NULL REFERENCES teams(abbrev),
			away TEXT NOT NULL REFERENCES teams(abbrev)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}

// CreateRun records a new pending run with its configuration.
func (s *Store) CreateRun(ctx context.Context, runID string, cfg simulation.Config) error {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal run config: %w", err)
	}

	query := `
		INSERT INTO simulation_runs (id, config, total_trials, status)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.Exec(ctx, query, runID, configJSON, cfg.TrialCount, simulation.StatusPending); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// UpdateRunStatus moves a run through its lifecycle states.
func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string) error {
	query := `
		UPDATE simulation_runs
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := s.db.Exec(ctx, query, runID, status); err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	return nil
}

// UpdateProgress records the completed-trial count.
func (s *Store) UpdateProgress(ctx context.Context, runID string, completed int) error {
	query := `
		UPDATE simulation_runs
		SET completed_trials = $2, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := s.db.Exec(ctx, query, runID, completed); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// SaveReport upserts the finalized outcome report for a run.
func (s *Store) SaveReport(ctx context.Context, runID string, report *models.OutcomeReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO simulation_reports (run_id, report)
		VALUES ($1, $2)
		ON CONFLICT (run_id) DO UPDATE SET report = EXCLUDED.report
	`
	if _, err := s.db.Exec(ctx, query, runID, reportJSON); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// LoadReport fetches a finalized report by run ID.
func (s *Store) LoadReport(ctx context.Context, runID string) (*models.OutcomeReport, error) {
	var reportJSON []byte
	query := `SELECT report FROM simulation_reports WHERE run_id = $1`
	if err := s.db.QueryRow(ctx, query, runID).Scan(&reportJSON); err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report models.OutcomeReport
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// LoadTeams reads the full team list with strength ratings.
func (s *Store) LoadTeams(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT abbrev, name, city, division, conference, rating
		FROM teams
		ORDER BY abbrev
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.Abbrev, &t.Name, &t.City, &t.Division, &t.Conference, &t.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading teams: %w", err)
	}
	return teams, nil
}

// LoadSchedule reads the season schedule in week order.
func (s *Store) LoadSchedule(ctx context.Context) ([]models.Game, error) {
	query := `
		SELECT id, week, home, away
		FROM schedule
		ORDER BY week, id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Week, &g.Home, &g.Away); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	return games, nil
}
