package models

import "sort"

// TeamOutcome holds raw per-team counters for one Monte Carlo run.
type TeamOutcome struct {
	PlayoffBerths    int `json:"playoff_berths"`
	DivisionTitles   int `json:"division_titles"`
	ConferenceTitles int `json:"conference_titles"`
	Championships    int `json:"championships"`
}

// OutcomeAccumulator collects outcome counts across trials. Workers each own
// a private accumulator; partials are merged once at the end of the run.
type OutcomeAccumulator struct {
	Trials int                     `json:"trials"`
	Teams  map[string]*TeamOutcome `json:"teams"`
}

// NewOutcomeAccumulator creates zeroed counters for every team.
func NewOutcomeAccumulator(teams []string) *OutcomeAccumulator {
	acc := &OutcomeAccumulator{Teams: make(map[string]*TeamOutcome, len(teams))}
	for _, t := range teams {
		acc.Teams[t] = &TeamOutcome{}
	}
	return acc
}

func (a *OutcomeAccumulator) outcome(team string) *TeamOutcome {
	o, ok := a.Teams[team]
	if !ok {
		o = &TeamOutcome{}
		a.Teams[team] = o
	}
	return o
}

// RecordTrial adds one completed trial to the counters.
func (a *OutcomeAccumulator) RecordTrial(seedings []PlayoffSeeding, winners map[string]string, confChampions []string, champion string) {
	a.Trials++
	for _, seeding := range seedings {
		for _, seed := range seeding.Seeds {
			a.outcome(seed.Team).PlayoffBerths++
		}
	}
	for _, team := range winners {
		a.outcome(team).DivisionTitles++
	}
	for _, team := range confChampions {
		a.outcome(team).ConferenceTitles++
	}
	a.outcome(champion).Championships++
}

// Merge sums another accumulator into this one.
func (a *OutcomeAccumulator) Merge(other *OutcomeAccumulator) {
	a.Trials += other.Trials
	for team, o := range other.Teams {
		dst := a.outcome(team)
		dst.PlayoffBerths += o.PlayoffBerths
		dst.DivisionTitles += o.DivisionTitles
		dst.ConferenceTitles += o.ConferenceTitles
		dst.Championships += o.Championships
	}
}

// TeamProbabilities is the finalized per-team view of a run.
type TeamProbabilities struct {
	Team            string  `json:"team"`
	MadePlayoffs    float64 `json:"made_playoffs"`
	WonDivision     float64 `json:"won_division"`
	WonConference   float64 `json:"won_conference"`
	WonChampionship float64 `json:"won_championship"`
}

// ConvergencePoint is one sample of the running championship-probability
// delta, taken every window trials.
type ConvergencePoint struct {
	Trial    int     `json:"trial"`
	MaxDelta float64 `json:"max_delta"`
}

// OutcomeReport is the finalized output of a Monte Carlo run.
type OutcomeReport struct {
	Trials      int                 `json:"trials"`
	Seed        int64               `json:"seed"`
	Teams       []TeamProbabilities `json:"teams"`
	Convergence []ConvergencePoint  `json:"convergence"`
}

// Finalize converts counts into probabilities, ordered by championship
// probability descending (abbreviation as a stable split).
func (a *OutcomeAccumulator) Finalize(seed int64, convergence []ConvergencePoint) *OutcomeReport {
	report := &OutcomeReport{
		Trials:      a.Trials,
		Seed:        seed,
		Convergence: convergence,
	}
	if a.Trials == 0 {
		return report
	}
	n := float64(a.Trials)
	for team, o := range a.Teams {
		report.Teams = append(report.Teams, TeamProbabilities{
			Team:            team,
			MadePlayoffs:    float64(o.PlayoffBerths) / n,
			WonDivision:     float64(o.DivisionTitles) / n,
			WonConference:   float64(o.ConferenceTitles) / n,
			WonChampionship: float64(o.Championships) / n,
		})
	}
	sort.Slice(report.Teams, func(i, j int) bool {
		ti, tj := report.Teams[i], report.Teams[j]
		if ti.WonChampionship != tj.WonChampionship {
			return ti.WonChampionship > tj.WonChampionship
		}
		return ti.Team < tj.Team
	})
	return report
}
