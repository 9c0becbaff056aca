package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"season-engine/models"
	"season-engine/simulation"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

// TestInitSchema tests table creation
func TestInitSchema(t *testing.T) {
	store, mock := newMockStore(t)

	for i := 0; i < 4; i++ {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	err := store.InitSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCreateRun tests run insertion with its serialized config
func TestCreateRun(t *testing.T) {
	store, mock := newMockStore(t)
	cfg := simulation.DefaultConfig()

	mock.ExpectExec("INSERT INTO simulation_runs").
		WithArgs("run-1", pgxmock.AnyArg(), cfg.TrialCount, simulation.StatusPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.CreateRun(context.Background(), "run-1", cfg)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdateRunStatus tests the lifecycle update
func TestUpdateRunStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE simulation_runs").
		WithArgs("run-1", simulation.StatusRunning).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateRunStatus(context.Background(), "run-1", simulation.StatusRunning)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdateProgress tests the completed-trial counter update
func TestUpdateProgress(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE simulation_runs").
		WithArgs("run-1", 500).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateProgress(context.Background(), "run-1", 500)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestSaveAndLoadReport tests report round-tripping through JSONB
func TestSaveAndLoadReport(t *testing.T) {
	store, mock := newMockStore(t)

	report := &models.OutcomeReport{
		Trials: 100,
		Seed:   42,
		Teams: []models.TeamProbabilities{
			{Team: "KC", MadePlayoffs: 0.9, WonChampionship: 0.25},
		},
	}

	mock.ExpectExec("INSERT INTO simulation_reports").
		WithArgs("run-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.SaveReport(context.Background(), "run-1", report)
	require.NoError(t, err)

	reportJSON, err := json.Marshal(report)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT report FROM simulation_reports").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"report"}).AddRow(reportJSON))

	loaded, err := store.LoadReport(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, report.Trials, loaded.Trials)
	assert.Equal(t, report.Seed, loaded.Seed)
	require.Len(t, loaded.Teams, 1)
	assert.Equal(t, "KC", loaded.Teams[0].Team)
	assert.Equal(t, 0.25, loaded.Teams[0].WonChampionship)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLoadTeams tests team list hydration
func TestLoadTeams(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"abbrev", "name", "city", "division", "conference", "rating"}).
		AddRow("BUF", "Bills", "Buffalo", "AFC East", "AFC", 1580.0).
		AddRow("KC", "Chiefs", "Kansas City", "AFC West", "AFC", 1650.0)
	mock.ExpectQuery("SELECT abbrev, name, city, division, conference, rating").
		WillReturnRows(rows)

	teams, err := store.LoadTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "BUF", teams[0].Abbrev)
	assert.Equal(t, "AFC West", teams[1].Division)
	assert.Equal(t, 1650.0, teams[1].Rating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestLoadSchedule tests schedule hydration in week order
func TestLoadSchedule(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"id", "week", "home", "away"}).
		AddRow("KC@BUF_W1", 1, "BUF", "KC").
		AddRow("BUF@KC_W9", 9, "KC", "BUF")
	mock.ExpectQuery("SELECT id, week, home, away").
		WillReturnRows(rows)

	games, err := store.LoadSchedule(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "KC@BUF_W1", games[0].ID)
	assert.Equal(t, 9, games[1].Week)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryFailure tests error propagation from the pool
func TestQueryFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT report FROM simulation_reports").
		WithArgs("run-x").
		WillReturnError(assert.AnError)

	_, err := store.LoadReport(context.Background(), "run-x")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
