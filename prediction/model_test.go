package prediction

import (
	"math"
	"math/rand"
	"testing"

	"season-engine/models"
)

func team(abbrev string, rating float64) *models.Team {
	return &models.Team{Abbrev: abbrev, Division: "East", Conference: "Alpha", Rating: rating}
}

// TestNewModelValidation tests model parameter checks
func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name          string
		homeAdvantage float64
		tieProb       float64
		wantErr       bool
	}{
		{"valid", 48, 0.004, false},
		{"zero advantage", 0, 0, false},
		{"negative advantage allowed", -20, 0, false},
		{"NaN advantage", math.NaN(), 0, true},
		{"infinite advantage", math.Inf(1), 0, true},
		{"negative tie probability", 48, -0.1, true},
		{"tie probability of one", 48, 1.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.homeAdvantage, tt.tieProb)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

// TestPredictValidation tests degenerate matchup rejection
func TestPredictValidation(t *testing.T) {
	model, _ := NewModel(48, 0.004)

	tests := []struct {
		name string
		home *models.Team
		away *models.Team
	}{
		{"nil home", nil, team("BBB", 1500)},
		{"nil away", team("AAA", 1500), nil},
		{"team plays itself", team("AAA", 1500), team("AAA", 1500)},
		{"zero home rating", team("AAA", 0), team("BBB", 1500)},
		{"NaN away rating", team("AAA", 1500), team("BBB", math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := model.Predict(tt.home, tt.away); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestPredictDistribution tests that predictions form a proper probability mass
func TestPredictDistribution(t *testing.T) {
	model, _ := NewModel(48, 0.004)

	tests := []struct {
		name       string
		homeRating float64
		awayRating float64
	}{
		{"even matchup", 1500, 1500},
		{"strong home", 1700, 1400},
		{"strong away", 1400, 1700},
		{"extreme gap", 2400, 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, err := model.Predict(team("AAA", tt.homeRating), team("BBB", tt.awayRating))
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			sum := dist.HomeWin + dist.AwayWin + dist.Tie
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("Probabilities sum to %f", sum)
			}
			if dist.Tie != 0.004 {
				t.Errorf("Tie mass = %f, want 0.004", dist.Tie)
			}
			if tt.homeRating > tt.awayRating && dist.HomeWin <= dist.AwayWin {
				t.Error("Stronger home team should be favored")
			}
			if tt.homeRating < tt.awayRating-200 && dist.AwayWin <= dist.HomeWin {
				t.Error("Much stronger away team should be favored")
			}
		})
	}
}

// TestPredictHomeAdvantage tests that home field shifts an even matchup
func TestPredictHomeAdvantage(t *testing.T) {
	model, _ := NewModel(48, 0)
	dist, err := model.Predict(team("AAA", 1500), team("BBB", 1500))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist.HomeWin <= 0.5 {
		t.Errorf("Home win probability %f should exceed 0.5 with home field", dist.HomeWin)
	}

	neutral, _ := NewModel(0, 0)
	even, err := neutral.Predict(team("AAA", 1500), team("BBB", 1500))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if even.HomeWin != 0.5 {
		t.Errorf("Neutral even matchup = %f, want exactly 0.5", even.HomeWin)
	}
}

// TestPredictSaturation tests that an overwhelming favorite wins with certainty
func TestPredictSaturation(t *testing.T) {
	model, _ := NewModel(48, 0)

	dist, err := model.Predict(team("AAA", 1e9), team("BBB", 1500))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist.HomeWin != 1.0 || dist.AwayWin != 0.0 {
		t.Errorf("Saturated favorite = %+v, want certain home win", dist)
	}

	dist, err = model.Predict(team("BBB", 1500), team("AAA", 1e9))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist.AwayWin != 1.0 || dist.HomeWin != 0.0 {
		t.Errorf("Saturated away favorite = %+v, want certain away win", dist)
	}
}

// TestExpectedMargin tests the rating-to-points conversion
func TestExpectedMargin(t *testing.T) {
	model, _ := NewModel(0, 0)
	if got := model.ExpectedMargin(team("AAA", 1600), team("BBB", 1500)); got != 4.0 {
		t.Errorf("ExpectedMargin = %f, want 4.0", got)
	}

	withHome, _ := NewModel(50, 0)
	if got := withHome.ExpectedMargin(team("AAA", 1500), team("BBB", 1500)); got != 2.0 {
		t.Errorf("ExpectedMargin with home field = %f, want 2.0", got)
	}
}

// TestDraw tests outcome sampling against the distribution regions
func TestDraw(t *testing.T) {
	dist := Distribution{HomeWin: 0.6, AwayWin: 0.3, Tie: 0.1}

	counts := map[Outcome]int{}
	rng := rand.New(rand.NewSource(1))
	const n = 100000
	for i := 0; i < n; i++ {
		counts[dist.Draw(rng)]++
	}

	if p := float64(counts[HomeWin]) / n; math.Abs(p-0.6) > 0.01 {
		t.Errorf("HomeWin frequency %f, want about 0.6", p)
	}
	if p := float64(counts[AwayWin]) / n; math.Abs(p-0.3) > 0.01 {
		t.Errorf("AwayWin frequency %f, want about 0.3", p)
	}
	if p := float64(counts[TieGame]) / n; math.Abs(p-0.1) > 0.01 {
		t.Errorf("TieGame frequency %f, want about 0.1", p)
	}
}

// TestDrawDeterministic tests that identical source state yields identical draws
func TestDrawDeterministic(t *testing.T) {
	dist := Distribution{HomeWin: 0.55, AwayWin: 0.44, Tie: 0.01}
	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		if dist.Draw(a) != dist.Draw(b) {
			t.Fatalf("Draws diverged at %d", i)
		}
	}
}

// TestSampleScore tests score consistency with the drawn outcome
func TestSampleScore(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 1000; i++ {
		home, away := SampleScore(HomeWin, 3.0, rng)
		if home <= away {
			t.Fatalf("Home win sampled %d-%d", home, away)
		}

		home, away = SampleScore(AwayWin, 3.0, rng)
		if away <= home {
			t.Fatalf("Away win sampled %d-%d", home, away)
		}

		home, away = SampleScore(TieGame, 3.0, rng)
		if home != away {
			t.Fatalf("Tie sampled %d-%d", home, away)
		}
	}
}

// TestDistributionValidate tests probability mass checks
func TestDistributionValidate(t *testing.T) {
	tests := []struct {
		name    string
		dist    Distribution
		wantErr bool
	}{
		{"valid", Distribution{HomeWin: 0.5, AwayWin: 0.5}, false},
		{"valid with tie", Distribution{HomeWin: 0.5, AwayWin: 0.496, Tie: 0.004}, false},
		{"does not sum to one", Distribution{HomeWin: 0.5, AwayWin: 0.4}, true},
		{"negative mass", Distribution{HomeWin: 1.2, AwayWin: -0.2}, true},
		{"NaN mass", Distribution{HomeWin: math.NaN(), AwayWin: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.dist.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
