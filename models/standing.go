package models

// RankedTeam is one row of a resolved standing. TiebreakRule names the rule
// that separated this team from the one below it ("record" when win
// percentage alone decided).
type RankedTeam struct {
	Team         string `json:"team"`
	Rank         int    `json:"rank"`
	TiebreakRule string `json:"tiebreak_rule"`
}

// Standing is a total order over the teams in one scope (a division, the
// division winners of a conference, or a wild-card pool).
type Standing struct {
	Scope string       `json:"scope"`
	Order []RankedTeam `json:"order"`
}

// SeededTeam is one playoff berth. WinPct is carried along so later rounds
// can settle home field without re-deriving records.
type SeededTeam struct {
	Team   string  `json:"team"`
	Seed   int     `json:"seed"`
	WinPct float64 `json:"win_pct"`
}

// PlayoffSeeding maps seeds to teams for one conference. Seed 1 is the top
// division winner under the conference-scope comparison chain.
type PlayoffSeeding struct {
	Conference string       `json:"conference"`
	Seeds      []SeededTeam `json:"seeds"`
}

// BracketGame is a single resolved playoff matchup. Home is always the
// better remaining seed.
type BracketGame struct {
	Round  int        `json:"round"`
	Home   SeededTeam `json:"home"`
	Away   SeededTeam `json:"away"`
	Winner string     `json:"winner"`
}

// BracketState records the rounds of one conference bracket (or the final)
// as they were simulated.
type BracketState struct {
	Conference string        `json:"conference"`
	Games      []BracketGame `json:"games"`
	Champion   string        `json:"champion"`
}

// LeagueStandings is the full resolved output of the standings resolver for
// one trial: division orders, conference seedings and per-team records.
type LeagueStandings struct {
	Divisions []Standing         `json:"divisions"`
	Seedings  []PlayoffSeeding   `json:"seedings"`
	Records   map[string]*Record `json:"records"`
	Winners   map[string]string  `json:"winners"` // division -> team
}
