package prediction

import (
	"math"

	"season-engine/models"
)

// Distribution is the probability mass over the three whole-game outcomes.
type Distribution struct {
	HomeWin float64 `json:"home_win"`
	AwayWin float64 `json:"away_win"`
	Tie     float64 `json:"tie"`
}

// Validate checks the distribution is a proper probability mass. A mass that
// does not sum to 1 is fatal to the run rather than silently renormalized.
func (d Distribution) Validate() error {
	for _, p := range []float64{d.HomeWin, d.AwayWin, d.Tie} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return &models.InputError{Field: "distribution", Message: "probability outside [0,1]"}
		}
	}
	if diff := math.Abs(d.HomeWin + d.AwayWin + d.Tie - 1.0); diff > 1e-9 {
		return &models.InputError{Field: "distribution", Message: "probabilities do not sum to 1"}
	}
	return nil
}

// Model estimates game outcome probabilities from Elo-style ratings with a
// fixed home-field adjustment. It is a pure function of its two inputs; no
// per-trial state accumulates here.
type Model struct {
	// HomeAdvantage is added to the home team's rating, in Elo points.
	HomeAdvantage float64
	// TieProbability is the fixed mass carved out for a regulation tie.
	// Zero when ties are not modeled.
	TieProbability float64
}

// NewModel validates the model parameters.
func NewModel(homeAdvantage, tieProbability float64) (*Model, error) {
	if math.IsNaN(homeAdvantage) || math.IsInf(homeAdvantage, 0) {
		return nil, &models.ConfigurationError{Field: "homeFieldAdvantage", Message: "must be a finite number"}
	}
	if math.IsNaN(tieProbability) || tieProbability < 0 || tieProbability >= 1 {
		return nil, &models.ConfigurationError{Field: "tieProbability", Message: "must be in [0,1)"}
	}
	return &Model{HomeAdvantage: homeAdvantage, TieProbability: tieProbability}, nil
}

// Predict returns the outcome distribution for home hosting away.
// Degenerate inputs (nil teams, identical teams, non-positive ratings) fail
// with an InputError instead of defaulting to a coin flip.
func (m *Model) Predict(home, away *models.Team) (Distribution, error) {
	if home == nil || away == nil {
		return Distribution{}, &models.InputError{Field: "teams", Message: "nil team"}
	}
	if home.Abbrev == away.Abbrev {
		return Distribution{}, &models.InputError{Field: home.Abbrev, Message: "team cannot play itself"}
	}
	if home.Rating <= 0 || math.IsNaN(home.Rating) {
		return Distribution{}, &models.InputError{Field: home.Abbrev, Message: "missing or non-positive rating"}
	}
	if away.Rating <= 0 || math.IsNaN(away.Rating) {
		return Distribution{}, &models.InputError{Field: away.Abbrev, Message: "missing or non-positive rating"}
	}

	pHome := winProbability(home.Rating+m.HomeAdvantage, away.Rating)

	dist := Distribution{
		HomeWin: pHome * (1 - m.TieProbability),
		AwayWin: (1 - pHome) * (1 - m.TieProbability),
		Tie:     m.TieProbability,
	}
	if err := dist.Validate(); err != nil {
		return Distribution{}, err
	}
	return dist, nil
}

// ExpectedMargin is the mean home-minus-away point margin implied by the
// rating gap, used when sampling scores. Roughly 25 Elo points per point of
// spread.
func (m *Model) ExpectedMargin(home, away *models.Team) float64 {
	return (home.Rating + m.HomeAdvantage - away.Rating) / eloPointsPerPoint
}

const eloPointsPerPoint = 25.0

// winProbability is the standard Elo logistic curve.
func winProbability(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}
