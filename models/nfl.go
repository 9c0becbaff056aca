package models

import "fmt"

// Canonical team names keyed by abbreviation.
var NFLTeamNames = map[string]string{
	"ARI": "Arizona Cardinals",
	"ATL": "Atlanta Falcons",
	"BAL": "Baltimore Ravens",
	"BUF": "Buffalo Bills",
	"CAR": "Carolina Panthers",
	"CHI": "Chicago Bears",
	"CIN": "Cincinnati Bengals",
	"CLE": "Cleveland Browns",
	"DAL": "Dallas Cowboys",
	"DEN": "Denver Broncos",
	"DET": "Detroit Lions",
	"GB":  "Green Bay Packers",
	"HOU": "Houston Texans",
	"IND": "Indianapolis Colts",
	"JAX": "Jacksonville Jaguars",
	"KC":  "Kansas City Chiefs",
	"LV":  "Las Vegas Raiders",
	"LAC": "Los Angeles Chargers",
	"LAR": "Los Angeles Rams",
	"MIA": "Miami Dolphins",
	"MIN": "Minnesota Vikings",
	"NE":  "New England Patriots",
	"NO":  "New Orleans Saints",
	"NYG": "New York Giants",
	"NYJ": "New York Jets",
	"PHI": "Philadelphia Eagles",
	"PIT": "Pittsburgh Steelers",
	"SF":  "San Francisco 49ers",
	"SEA": "Seattle Seahawks",
	"TB":  "Tampa Bay Buccaneers",
	"TEN": "Tennessee Titans",
	"WAS": "Washington Commanders",
}

// League rules constants for the full 32-team league.
const (
	NFLRegularSeasonWeeks   = 18
	NFLGamesPerTeam         = 17
	NFLPlayoffTeamsPerConf  = 7
	NFLWildCardSlotsPerConf = 3
	NFLRegularSeasonGames   = NFLGamesPerTeam * 32 / 2
	NFLDefaultRating        = 1500.0
	NFLDefaultHomeAdvantage = 48.0 // Elo points
)

var nflDivisions = map[string]struct {
	conference string
	teams      []string
}{
	"AFC East":  {"AFC", []string{"BUF", "MIA", "NYJ", "NE"}},
	"AFC North": {"AFC", []string{"BAL", "PIT", "CLE", "CIN"}},
	"AFC South": {"AFC", []string{"HOU", "JAX", "IND", "TEN"}},
	"AFC West":  {"AFC", []string{"KC", "DEN", "LAC", "LV"}},
	"NFC East":  {"NFC", []string{"DAL", "NYG", "PHI", "WAS"}},
	"NFC North": {"NFC", []string{"MIN", "GB", "DET", "CHI"}},
	"NFC South": {"NFC", []string{"CAR", "TB", "ATL", "NO"}},
	"NFC West":  {"NFC", []string{"SEA", "SF", "LAR", "ARI"}},
}

// NFLTeams builds the canonical 32-team list. Ratings come from the supplied
// map; a team missing from the map is an error rather than a silent default,
// so miscalibrated inputs are caught up front.
func NFLTeams(ratings map[string]float64) ([]Team, error) {
	var teams []Team
	for division, info := range nflDivisions {
		for _, abbrev := range info.teams {
			fullName, ok := NFLTeamNames[abbrev]
			if !ok {
				return nil, &InputError{Field: abbrev, Message: "unknown team abbreviation in division table"}
			}
			rating, ok := ratings[abbrev]
			if !ok {
				return nil, &InputError{Field: abbrev, Message: "no rating supplied for team"}
			}
			city, name := splitTeamName(fullName)
			teams = append(teams, Team{
				Abbrev:     abbrev,
				Name:       name,
				City:       city,
				Division:   division,
				Conference: info.conference,
				Rating:     rating,
			})
		}
	}
	return teams, nil
}

// NFLLeague builds the full league structure from a ratings map.
func NFLLeague(ratings map[string]float64) (*League, error) {
	teams, err := NFLTeams(ratings)
	if err != nil {
		return nil, fmt.Errorf("building NFL team list: %w", err)
	}
	return NewLeague(teams)
}

// splitTeamName separates a full franchise name into city and nickname.
// The last word is always the nickname; multi-word cities keep the rest.
func splitTeamName(full string) (city, name string) {
	last := -1
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == ' ' {
			last = i
			break
		}
	}
	if last < 0 {
		return full, full
	}
	return full[:last], full[last+1:]
}
