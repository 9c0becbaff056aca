package standings

import (
	"fmt"

	"season-engine/models"
)

// ComputeRecords derives every team's regular-season record from one
// sampled season. Results referencing unknown teams are an error; the
// season is never mutated.
func ComputeRecords(league *models.League, season *models.SeasonResult) (map[string]*models.Record, error) {
	records := make(map[string]*models.Record)
	for _, abbrev := range league.Teams() {
		records[abbrev] = &models.Record{Team: abbrev}
	}

	for i, result := range season.Results {
		home, ok := records[result.Game.Home]
		if !ok {
			return nil, &models.InputError{
				Field:   fmt.Sprintf("results[%d]", i),
				Message: fmt.Sprintf("unknown home team %q", result.Game.Home),
			}
		}
		away, ok := records[result.Game.Away]
		if !ok {
			return nil, &models.InputError{
				Field:   fmt.Sprintf("results[%d]", i),
				Message: fmt.Sprintf("unknown away team %q", result.Game.Away),
			}
		}

		home.PointsFor += result.HomePoints
		home.PointsAgainst += result.AwayPoints
		away.PointsFor += result.AwayPoints
		away.PointsAgainst += result.HomePoints

		sameDiv := league.SameDivision(result.Game.Home, result.Game.Away)
		sameConf := league.SameConference(result.Game.Home, result.Game.Away)

		switch {
		case result.Tie:
			home.Ties++
			away.Ties++
			if sameDiv {
				home.DivTies++
				away.DivTies++
			}
			if sameConf {
				home.ConfTies++
				away.ConfTies++
			}
		case result.Winner == result.Game.Home:
			home.Wins++
			away.Losses++
			if sameDiv {
				home.DivWins++
				away.DivLosses++
			}
			if sameConf {
				home.ConfWins++
				away.ConfLosses++
			}
		case result.Winner == result.Game.Away:
			away.Wins++
			home.Losses++
			if sameDiv {
				away.DivWins++
				home.DivLosses++
			}
			if sameConf {
				away.ConfWins++
				home.ConfLosses++
			}
		default:
			return nil, &models.InputError{
				Field:   fmt.Sprintf("results[%d]", i),
				Message: fmt.Sprintf("winner %q is neither participant", result.Winner),
			}
		}
	}

	return records, nil
}
