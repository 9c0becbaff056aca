package standings

import (
	"sort"

	"season-engine/models"
)

// Names of the comparison rules, reported in Standing annotations.
const (
	RuleRecord             = "record"
	RuleHeadToHead         = "head_to_head"
	RuleDivisionRecord     = "division_record"
	RuleConferenceRecord   = "conference_record"
	RuleStrengthOfVictory  = "strength_of_victory"
	RuleStrengthOfSchedule = "strength_of_schedule"
	RuleNetPoints          = "net_points"
	RuleFallback           = "alphabetical"
)

// scope selects which rule chain applies to a comparison group.
type scope int

const (
	divisionScope scope = iota
	conferenceScope
)

// headToHead is a slim win-loss-tie line against one specific opponent.
type headToHead struct {
	wins, losses, ties int
}

func (h headToHead) played() int    { return h.wins + h.losses + h.ties }
func (h headToHead) pct() float64   { return pct(h.wins, h.losses, h.ties) }
func (h headToHead) sweptAll() bool { return h.losses == 0 && h.ties == 0 && h.wins > 0 }
func (h headToHead) lostAll() bool  { return h.wins == 0 && h.ties == 0 && h.losses > 0 }

func pct(wins, losses, ties int) float64 {
	played := wins + losses + ties
	if played == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(ties)) / float64(played)
}

// ruleContext carries everything the comparison rules need, precomputed once
// per resolution so repeated group evaluations stay cheap and side-effect
// free.
type ruleContext struct {
	league    *models.League
	records   map[string]*models.Record
	h2h       map[string]map[string]*headToHead
	beaten    map[string][]string // opponent per victory, game-weighted
	opponents map[string][]string // opponent per game played
}

func newRuleContext(league *models.League, records map[string]*models.Record, season *models.SeasonResult) *ruleContext {
	rc := &ruleContext{
		league:    league,
		records:   records,
		h2h:       make(map[string]map[string]*headToHead),
		beaten:    make(map[string][]string),
		opponents: make(map[string][]string),
	}

	bump := func(team, opp string) *headToHead {
		m, ok := rc.h2h[team]
		if !ok {
			m = make(map[string]*headToHead)
			rc.h2h[team] = m
		}
		h, ok := m[opp]
		if !ok {
			h = &headToHead{}
			m[opp] = h
		}
		return h
	}

	for _, result := range season.Results {
		home, away := result.Game.Home, result.Game.Away
		rc.opponents[home] = append(rc.opponents[home], away)
		rc.opponents[away] = append(rc.opponents[away], home)

		switch {
		case result.Tie:
			bump(home, away).ties++
			bump(away, home).ties++
		case result.Winner == home:
			bump(home, away).wins++
			bump(away, home).losses++
			rc.beaten[home] = append(rc.beaten[home], away)
		default:
			bump(away, home).wins++
			bump(home, away).losses++
			rc.beaten[away] = append(rc.beaten[away], home)
		}
	}

	return rc
}

// versus returns the head-to-head line of team against opp.
func (rc *ruleContext) versus(team, opp string) headToHead {
	if m, ok := rc.h2h[team]; ok {
		if h, ok := m[opp]; ok {
			return *h
		}
	}
	return headToHead{}
}

// groupLine aggregates a team's head-to-head line against every other team
// in the group, plus whether it faced all of them.
func (rc *ruleContext) groupLine(team string, group []string) (line headToHead, facedAll bool) {
	facedAll = true
	for _, opp := range group {
		if opp == team {
			continue
		}
		h := rc.versus(team, opp)
		if h.played() == 0 {
			facedAll = false
		}
		line.wins += h.wins
		line.losses += h.losses
		line.ties += h.ties
	}
	return line, facedAll
}

// combinedPct aggregates the full records of a list of opponents into one
// winning percentage (game-weighted, so repeat opponents count per game).
func (rc *ruleContext) combinedPct(opponents []string) float64 {
	var wins, losses, ties int
	for _, opp := range opponents {
		if r, ok := rc.records[opp]; ok {
			wins += r.Wins
			losses += r.Losses
			ties += r.Ties
		}
	}
	return pct(wins, losses, ties)
}

// strengthOfVictory is the combined record of every opponent the team beat.
func (rc *ruleContext) strengthOfVictory(team string) float64 {
	return rc.combinedPct(rc.beaten[team])
}

// strengthOfSchedule is the combined record of every opponent faced.
func (rc *ruleContext) strengthOfSchedule(team string) float64 {
	return rc.combinedPct(rc.opponents[team])
}

// rule narrows a tied group to the teams still in contention for the top
// spot. Returning the group unchanged means the rule could not discriminate.
type rule struct {
	name  string
	apply func(group []string, rc *ruleContext) []string
}

// applyHeadToHead implements the pairwise and sweep variants. For two teams
// the better head-to-head percentage wins outright. For three or more, the
// rule only applies as a sweep: a team that beat every other tied team takes
// the spot, and a team that lost to every other is dropped from contention.
func applyHeadToHead(group []string, rc *ruleContext) []string {
	if len(group) == 2 {
		a, b := group[0], group[1]
		h := rc.versus(a, b)
		if h.played() == 0 {
			return group
		}
		switch {
		case h.pct() > 0.5:
			return []string{a}
		case h.pct() < 0.5:
			return []string{b}
		default:
			return group
		}
	}

	for _, team := range group {
		line, facedAll := rc.groupLine(team, group)
		if !facedAll {
			continue
		}
		if line.sweptAll() {
			return []string{team}
		}
	}
	for i, team := range group {
		line, facedAll := rc.groupLine(team, group)
		if !facedAll {
			continue
		}
		if line.lostAll() {
			out := make([]string, 0, len(group)-1)
			out = append(out, group[:i]...)
			out = append(out, group[i+1:]...)
			return out
		}
	}
	return group
}

// bestByValue keeps the teams sharing the maximum of a numeric criterion.
func bestByValue(group []string, value func(team string) float64) []string {
	best := value(group[0])
	for _, team := range group[1:] {
		if v := value(team); v > best {
			best = v
		}
	}
	var out []string
	for _, team := range group {
		if value(team) == best {
			out = append(out, team)
		}
	}
	return out
}

// chainFor returns the ordered rule chain for a comparison scope. Division
// record only discriminates inside a division; every chain ends in the
// declared alphabetical fallback so resolution always terminates with a
// single team.
func chainFor(s scope) []rule {
	chain := []rule{
		{RuleHeadToHead, applyHeadToHead},
	}
	if s == divisionScope {
		chain = append(chain, rule{RuleDivisionRecord, func(group []string, rc *ruleContext) []string {
			return bestByValue(group, func(t string) float64 { return rc.records[t].DivisionPct() })
		}})
	}
	chain = append(chain,
		rule{RuleConferenceRecord, func(group []string, rc *ruleContext) []string {
			return bestByValue(group, func(t string) float64 { return rc.records[t].ConferencePct() })
		}},
		rule{RuleStrengthOfVictory, func(group []string, rc *ruleContext) []string {
			return bestByValue(group, func(t string) float64 { return rc.strengthOfVictory(t) })
		}},
		rule{RuleStrengthOfSchedule, func(group []string, rc *ruleContext) []string {
			return bestByValue(group, func(t string) float64 { return rc.strengthOfSchedule(t) })
		}},
		rule{RuleNetPoints, func(group []string, rc *ruleContext) []string {
			return bestByValue(group, func(t string) float64 { return float64(rc.records[t].NetPoints()) })
		}},
		rule{RuleFallback, func(group []string, rc *ruleContext) []string {
			least := group[0]
			for _, team := range group[1:] {
				if team < least {
					least = team
				}
			}
			return []string{least}
		}},
	)
	return chain
}

// pickTop resolves a tied group down to its top team and reports the rule
// that decided it. Whenever a rule shrinks the group without settling it,
// the chain restarts from head-to-head for the survivors, matching the
// restart behavior of the league procedure. The fallback rule guarantees
// termination.
func pickTop(group []string, s scope, rc *ruleContext) (winner, ruleName string) {
	if len(group) == 1 {
		return group[0], RuleRecord
	}

	current := append([]string(nil), group...)
	sort.Strings(current)

	for {
		restarted := false
		for _, r := range chainFor(s) {
			next := r.apply(current, rc)
			if len(next) == 1 {
				return next[0], r.name
			}
			if len(next) < len(current) {
				current = next
				restarted = true
				break
			}
		}
		if !restarted {
			// Unreachable: the fallback always returns one team.
			return current[0], RuleFallback
		}
	}
}

// orderGroup produces a total order over a tied group by repeatedly picking
// the top team and re-running the chain for the remainder.
func orderGroup(group []string, s scope, rc *ruleContext) []models.RankedTeam {
	remaining := append([]string(nil), group...)
	var ordered []models.RankedTeam
	for len(remaining) > 0 {
		winner, ruleName := pickTop(remaining, s, rc)
		ordered = append(ordered, models.RankedTeam{Team: winner, TiebreakRule: ruleName})
		next := remaining[:0]
		for _, team := range remaining {
			if team != winner {
				next = append(next, team)
			}
		}
		remaining = next
	}
	return ordered
}
