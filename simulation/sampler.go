package simulation

import (
	"math/rand"

	"season-engine/models"
	"season-engine/prediction"
)

// SampleSeason draws one concrete realization of every scheduled game, in
// schedule order, using the supplied random source. The same source state
// always yields the same season; teams and games are never mutated.
func SampleSeason(league *models.League, schedule []models.Game, model *prediction.Model, rng *rand.Rand) (*models.SeasonResult, error) {
	season := &models.SeasonResult{Results: make([]models.GameResult, 0, len(schedule))}

	for _, game := range schedule {
		home, ok := league.Team(game.Home)
		if !ok {
			return nil, &models.InputError{Field: game.ID, Message: "unknown home team " + game.Home}
		}
		away, ok := league.Team(game.Away)
		if !ok {
			return nil, &models.InputError{Field: game.ID, Message: "unknown away team " + game.Away}
		}

		dist, err := model.Predict(home, away)
		if err != nil {
			return nil, err
		}

		outcome := dist.Draw(rng)
		homePts, awayPts := prediction.SampleScore(outcome, model.ExpectedMargin(home, away), rng)

		result := models.GameResult{Game: game, HomePoints: homePts, AwayPoints: awayPts}
		switch outcome {
		case prediction.HomeWin:
			result.Winner = game.Home
			result.Loser = game.Away
		case prediction.AwayWin:
			result.Winner = game.Away
			result.Loser = game.Home
		case prediction.TieGame:
			result.Tie = true
		}
		season.Results = append(season.Results, result)
	}

	return season, nil
}
