package prediction

import (
	"math"
	"math/rand"
)

// Outcome is a drawn whole-game result category.
type Outcome int

const (
	HomeWin Outcome = iota
	AwayWin
	TieGame
)

// Draw samples a single outcome from the distribution using the supplied
// random source. The same source state always yields the same outcome.
func (d Distribution) Draw(rng *rand.Rand) Outcome {
	u := rng.Float64()
	switch {
	case u < d.HomeWin:
		return HomeWin
	case u < d.HomeWin+d.AwayWin:
		return AwayWin
	default:
		return TieGame
	}
}

const (
	marginStdDev  = 10.0
	baseLowScore  = 13
	baseScoreSpan = 11
)

// SampleScore produces a final score consistent with the drawn outcome. The
// margin is drawn from a normal centered on the rating-implied spread; the
// absolute scores only matter to the net-points tiebreaker downstream.
func SampleScore(outcome Outcome, expMargin float64, rng *rand.Rand) (homePts, awayPts int) {
	base := baseLowScore + rng.Intn(baseScoreSpan)
	if outcome == TieGame {
		return base, base
	}

	drawn := rng.NormFloat64()*marginStdDev + expMargin
	margin := int(math.Round(math.Abs(drawn)))
	if margin < 1 {
		margin = 1
	}

	if outcome == HomeWin {
		return base + margin, base
	}
	return base, base + margin
}
