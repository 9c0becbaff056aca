package schedule

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"season-engine/models"
)

// MaxWeek bounds schedule input: regular season plus postseason weeks.
const MaxWeek = 22

// LoadError reports a problem loading schedule data, pointing at the
// offending source location.
type LoadError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schedule load error at %s: %s", e.Source, e.Message)
}

// Row is one raw schedule entry before validation.
type Row struct {
	Week int    `json:"week"`
	Home string `json:"home_team"`
	Away string `json:"away_team"`
}

// FromRows validates raw rows against the league and produces Games with
// canonical IDs. Rows are rejected, not skipped: a bad schedule should be
// fixed at the source rather than silently thinned.
func FromRows(league *models.League, rows []Row) ([]models.Game, error) {
	games := make([]models.Game, 0, len(rows))
	for i, row := range rows {
		source := fmt.Sprintf("row %d", i+1)

		if row.Week < 1 || row.Week > MaxWeek {
			return nil, &LoadError{Source: source, Message: fmt.Sprintf("week must be between 1-%d, got %d", MaxWeek, row.Week)}
		}

		home := strings.ToUpper(strings.TrimSpace(row.Home))
		away := strings.ToUpper(strings.TrimSpace(row.Away))
		if _, ok := league.Team(home); !ok {
			return nil, &LoadError{Source: source, Message: fmt.Sprintf("unknown home team %q", row.Home)}
		}
		if _, ok := league.Team(away); !ok {
			return nil, &LoadError{Source: source, Message: fmt.Sprintf("unknown away team %q", row.Away)}
		}
		if home == away {
			return nil, &LoadError{Source: source, Message: "home and away team cannot be the same"}
		}

		games = append(games, models.Game{
			ID:   models.GameID(away, home, row.Week),
			Week: row.Week,
			Home: home,
			Away: away,
		})
	}
	if len(games) == 0 {
		return nil, &LoadError{Source: "input", Message: "no games loaded"}
	}
	return games, nil
}

// LoadCSV reads a schedule from a CSV file with week, home_team and
// away_team columns.
func LoadCSV(league *models.League, path string) ([]models.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Source: path, Message: err.Error()}
	}
	if len(records) < 2 {
		return nil, &LoadError{Source: path, Message: "no data rows"}
	}

	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"week", "home_team", "away_team"} {
		if _, ok := cols[required]; !ok {
			return nil, &LoadError{Source: path, Message: fmt.Sprintf("missing required column %q", required)}
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		week, err := strconv.Atoi(strings.TrimSpace(record[cols["week"]]))
		if err != nil {
			return nil, &LoadError{Source: fmt.Sprintf("%s line %d", path, i+2), Message: fmt.Sprintf("invalid week number %q", record[cols["week"]])}
		}
		rows = append(rows, Row{
			Week: week,
			Home: record[cols["home_team"]],
			Away: record[cols["away_team"]],
		})
	}
	return FromRows(league, rows)
}

// scheduleFile is the JSON document shape: {"games": [...]}.
type scheduleFile struct {
	Games []Row `json:"games"`
}

// LoadJSON reads a schedule from a JSON file.
func LoadJSON(league *models.League, path string) ([]models.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: err.Error()}
	}

	var doc scheduleFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Source: path, Message: err.Error()}
	}
	if len(doc.Games) == 0 {
		return nil, &LoadError{Source: path, Message: `document must contain a non-empty "games" list`}
	}
	return FromRows(league, doc.Games)
}

// Load dispatches on file extension.
func Load(league *models.League, path string) ([]models.Game, error) {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return LoadCSV(league, path)
	case strings.HasSuffix(path, ".json"):
		return LoadJSON(league, path)
	default:
		return nil, &LoadError{Source: path, Message: "unsupported file format (want .csv or .json)"}
	}
}
