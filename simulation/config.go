package simulation

import (
	"runtime"

	"season-engine/models"
	"season-engine/standings"
)

// Default knobs for a Monte Carlo run.
const (
	DefaultTrialCount        = 10000
	DefaultTieProbability    = 0.004
	DefaultConvergenceWindow = 1000
)

// Config is the recognized configuration surface of a Monte Carlo run.
type Config struct {
	// TrialCount is the number of simulated seasons. Must be positive.
	TrialCount int `json:"trial_count"`
	// Seed drives every random draw in the run; identical inputs plus an
	// identical seed reproduce the run bit for bit.
	Seed int64 `json:"seed"`
	// TieAllowed models regulation ties in the regular season.
	TieAllowed bool `json:"tie_allowed"`
	// TieProbability overrides the tie mass when ties are allowed.
	TieProbability float64 `json:"tie_probability,omitempty"`
	// HomeFieldAdvantage is the home rating bump in Elo points.
	HomeFieldAdvantage float64 `json:"home_field_advantage"`
	// RetainTrialDetail keeps every trial's season and bracket. Memory grows
	// with TrialCount times schedule size, so the default discards them.
	RetainTrialDetail bool `json:"retain_trial_detail"`
	// ConvergenceWindow is the trial interval between convergence samples.
	ConvergenceWindow int `json:"convergence_window"`
	// WildCardSlots is the number of wild-card berths per conference.
	WildCardSlots int `json:"wild_card_slots"`
	// Workers caps the worker pool; zero means one worker per CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the standard run configuration for the full league.
func DefaultConfig() Config {
	return Config{
		TrialCount:         DefaultTrialCount,
		TieAllowed:         true,
		HomeFieldAdvantage: models.NFLDefaultHomeAdvantage,
		ConvergenceWindow:  DefaultConvergenceWindow,
		WildCardSlots:      standings.DefaultWildCardSlots,
	}
}

// normalized fills derived defaults without touching the caller's copy.
func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Workers > c.TrialCount {
		c.Workers = c.TrialCount
	}
	if c.ConvergenceWindow <= 0 {
		c.ConvergenceWindow = DefaultConvergenceWindow
	}
	if c.TieAllowed && c.TieProbability == 0 {
		c.TieProbability = DefaultTieProbability
	}
	if !c.TieAllowed {
		c.TieProbability = 0
	}
	return c
}

// Validate rejects configurations the engine cannot honor. Everything is
// checked before the first trial so a run never dies half-accumulated.
func (c Config) Validate() error {
	if c.TrialCount <= 0 {
		return &models.ConfigurationError{Field: "trialCount", Message: "must be a positive integer"}
	}
	if c.TieProbability < 0 || c.TieProbability >= 1 {
		return &models.ConfigurationError{Field: "tieProbability", Message: "must be in [0,1)"}
	}
	if c.WildCardSlots < 0 {
		return &models.ConfigurationError{Field: "wildCardSlots", Message: "must be non-negative"}
	}
	return nil
}
