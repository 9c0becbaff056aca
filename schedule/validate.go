package schedule

import (
	"fmt"
	"sort"

	"season-engine/models"
)

// Report summarizes schedule validation. Issues are advisory; the engine's
// own pre-run checks decide what is fatal.
type Report struct {
	Valid      bool     `json:"valid"`
	Issues     []string `json:"issues"`
	TotalGames int      `json:"total_games"`
}

// Validate checks a loaded schedule for common structural problems:
// wrong per-team game counts, duplicate matchups within a week and teams
// that never appear. gamesPerTeam is the expected regular-season count for
// each team (17 for the full league); zero skips the count check.
func Validate(league *models.League, games []models.Game, gamesPerTeam int) Report {
	report := Report{TotalGames: len(games)}

	counts := make(map[string]int)
	signatures := make(map[string]bool)

	for _, game := range games {
		counts[game.Home]++
		counts[game.Away]++

		a, b := game.Home, game.Away
		if a > b {
			a, b = b, a
		}
		sig := fmt.Sprintf("W%d:%s-%s", game.Week, a, b)
		if signatures[sig] {
			report.Issues = append(report.Issues, fmt.Sprintf("duplicate game: %s vs %s in week %d", a, b, game.Week))
		}
		signatures[sig] = true
	}

	teams := league.Teams()
	if gamesPerTeam > 0 {
		expected := gamesPerTeam * len(teams) / 2
		if len(games) != expected {
			report.Issues = append(report.Issues, fmt.Sprintf("expected %d games, found %d", expected, len(games)))
		}
	}

	for _, team := range teams {
		count := counts[team]
		if count == 0 {
			report.Issues = append(report.Issues, fmt.Sprintf("team %s has no scheduled games", team))
			continue
		}
		if gamesPerTeam > 0 && count != gamesPerTeam {
			report.Issues = append(report.Issues, fmt.Sprintf("team %s has %d games, should have %d", team, count, gamesPerTeam))
		}
	}

	sort.Strings(report.Issues)
	report.Valid = len(report.Issues) == 0
	return report
}
