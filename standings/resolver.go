package standings

import (
	"fmt"
	"sort"

	"season-engine/models"
)

// DefaultWildCardSlots is the number of wild-card berths per conference in
// the full league format.
const DefaultWildCardSlots = 3

// Resolver turns one sampled season into resolved standings and playoff
// seedings. It holds no per-season state, so resolving the same season twice
// yields identical output.
type Resolver struct {
	league        *models.League
	wildCardSlots int
}

// NewResolver builds a resolver for a league. wildCardSlots is clamped per
// conference to the teams left after division winners are seeded.
func NewResolver(league *models.League, wildCardSlots int) (*Resolver, error) {
	if league == nil {
		return nil, &models.InputError{Field: "league", Message: "nil league"}
	}
	if wildCardSlots < 0 {
		return nil, &models.ConfigurationError{Field: "wildCardSlots", Message: "must be non-negative"}
	}
	return &Resolver{league: league, wildCardSlots: wildCardSlots}, nil
}

// Resolve computes records, division orders and conference seedings for one
// season. Division ranks resolve first, then division winners are ordered
// for the top seeds, then the wild-card pool is ordered across the whole
// conference; each group re-evaluates the tiebreak chain independently.
func (rv *Resolver) Resolve(season *models.SeasonResult) (*models.LeagueStandings, error) {
	if season == nil {
		return nil, &models.InputError{Field: "season", Message: "nil season result"}
	}

	records, err := ComputeRecords(rv.league, season)
	if err != nil {
		return nil, err
	}
	if err := rv.checkDivisionalCoverage(season); err != nil {
		return nil, err
	}

	rc := newRuleContext(rv.league, records, season)

	out := &models.LeagueStandings{
		Records: records,
		Winners: make(map[string]string),
	}

	for _, conference := range rv.league.Conferences() {
		var divisionWinners []string

		for _, division := range rv.league.Divisions(conference) {
			standing := resolveScope(division, rv.league.DivisionTeams(division), divisionScope, rc)
			out.Divisions = append(out.Divisions, standing)
			winner := standing.Order[0].Team
			out.Winners[division] = winner
			divisionWinners = append(divisionWinners, winner)
		}

		seeding := models.PlayoffSeeding{Conference: conference}

		winnersOrder := resolveScope(conference+" division winners", divisionWinners, conferenceScope, rc)
		for _, ranked := range winnersOrder.Order {
			seeding.Seeds = append(seeding.Seeds, models.SeededTeam{
				Team:   ranked.Team,
				Seed:   len(seeding.Seeds) + 1,
				WinPct: records[ranked.Team].WinPct(),
			})
		}

		var pool []string
		winnerSet := make(map[string]bool, len(divisionWinners))
		for _, w := range divisionWinners {
			winnerSet[w] = true
		}
		for _, team := range rv.league.ConferenceTeams(conference) {
			if !winnerSet[team] {
				pool = append(pool, team)
			}
		}

		slots := rv.wildCardSlots
		if slots > len(pool) {
			slots = len(pool)
		}
		if slots > 0 {
			wildCardOrder := resolveScope(conference+" wild card", pool, conferenceScope, rc)
			for _, ranked := range wildCardOrder.Order[:slots] {
				seeding.Seeds = append(seeding.Seeds, models.SeededTeam{
					Team:   ranked.Team,
					Seed:   len(seeding.Seeds) + 1,
					WinPct: records[ranked.Team].WinPct(),
				})
			}
		}

		out.Seedings = append(out.Seedings, seeding)
	}

	return out, nil
}

// resolveScope orders one comparison group: teams are first split by win
// percentage, then each tied slice runs the tiebreak chain for the scope.
func resolveScope(name string, teams []string, s scope, rc *ruleContext) models.Standing {
	sorted := append([]string(nil), teams...)
	sort.Slice(sorted, func(i, j int) bool {
		pi, pj := rc.records[sorted[i]].WinPct(), rc.records[sorted[j]].WinPct()
		if pi != pj {
			return pi > pj
		}
		return sorted[i] < sorted[j]
	})

	standing := models.Standing{Scope: name}
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && rc.records[sorted[end]].WinPct() == rc.records[sorted[start]].WinPct() {
			end++
		}
		group := sorted[start:end]
		if len(group) == 1 {
			standing.Order = append(standing.Order, models.RankedTeam{Team: group[0], TiebreakRule: RuleRecord})
		} else {
			standing.Order = append(standing.Order, orderGroup(group, s, rc)...)
		}
		start = end
	}
	for i := range standing.Order {
		standing.Order[i].Rank = i + 1
	}
	return standing
}

// checkDivisionalCoverage verifies the sampled season covers every pair of
// division rivals.
func (rv *Resolver) checkDivisionalCoverage(season *models.SeasonResult) error {
	games := make([]models.Game, len(season.Results))
	for i, result := range season.Results {
		games[i] = result.Game
	}
	return CheckScheduleCoverage(rv.league, games)
}

// CheckScheduleCoverage verifies every pair of division rivals meets at
// least once, so head-to-head and division-record comparisons are always
// backed by games. A schedule that cannot support them is rejected rather
// than guessed around.
func CheckScheduleCoverage(league *models.League, games []models.Game) error {
	met := make(map[[2]string]bool)
	for _, game := range games {
		a, b := game.Home, game.Away
		if a > b {
			a, b = b, a
		}
		met[[2]string{a, b}] = true
	}

	for _, conference := range league.Conferences() {
		for _, division := range league.Divisions(conference) {
			teams := league.DivisionTeams(division)
			for i := 0; i < len(teams); i++ {
				for j := i + 1; j < len(teams); j++ {
					if !met[[2]string{teams[i], teams[j]}] {
						return &models.IncompleteScheduleError{
							Group:   division,
							Message: fmt.Sprintf("%s and %s never play", teams[i], teams[j]),
						}
					}
				}
			}
		}
	}
	return nil
}
