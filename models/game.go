package models

import "fmt"

// Game is one scheduled matchup. Immutable input to the engine.
type Game struct {
	ID   string `json:"id"`
	Week int    `json:"week"`
	Home string `json:"home"`
	Away string `json:"away"`
}

// GameID builds the canonical identifier used when none is supplied.
func GameID(away, home string, week int) string {
	return fmt.Sprintf("%s@%s_W%d", away, home, week)
}

// GameResult is the sampled outcome of one game within one trial.
// For a tie, Winner and Loser are empty and both scores are equal.
type GameResult struct {
	Game       Game   `json:"game"`
	Winner     string `json:"winner,omitempty"`
	Loser      string `json:"loser,omitempty"`
	Tie        bool   `json:"tie,omitempty"`
	HomePoints int    `json:"home_points"`
	AwayPoints int    `json:"away_points"`
}

// Margin returns home points minus away points.
func (r GameResult) Margin() int {
	return r.HomePoints - r.AwayPoints
}

// SeasonResult is the complete sampled outcome of one simulated season,
// in schedule order. Owned by a single trial.
type SeasonResult struct {
	Results []GameResult `json:"results"`
}

// Record is one team's derived regular-season line: overall, division and
// conference splits plus points for/against. Recomputed fresh each trial.
type Record struct {
	Team          string `json:"team"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Ties          int    `json:"ties"`
	DivWins       int    `json:"div_wins"`
	DivLosses     int    `json:"div_losses"`
	DivTies       int    `json:"div_ties"`
	ConfWins      int    `json:"conf_wins"`
	ConfLosses    int    `json:"conf_losses"`
	ConfTies      int    `json:"conf_ties"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
}

// WinPct is the overall winning percentage with ties counting half.
func (r *Record) WinPct() float64 {
	return winPct(r.Wins, r.Losses, r.Ties)
}

// DivisionPct is the winning percentage in games against division rivals.
func (r *Record) DivisionPct() float64 {
	return winPct(r.DivWins, r.DivLosses, r.DivTies)
}

// ConferencePct is the winning percentage in intra-conference games.
func (r *Record) ConferencePct() float64 {
	return winPct(r.ConfWins, r.ConfLosses, r.ConfTies)
}

// NetPoints is point differential across the season.
func (r *Record) NetPoints() int {
	return r.PointsFor - r.PointsAgainst
}

func (r *Record) String() string {
	return fmt.Sprintf("%s: %d-%d-%d (%.3f)", r.Team, r.Wins, r.Losses, r.Ties, r.WinPct())
}

func winPct(wins, losses, ties int) float64 {
	played := wins + losses + ties
	if played == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(played)
}
