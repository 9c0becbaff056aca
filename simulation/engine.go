package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"season-engine/models"
	"season-engine/playoffs"
	"season-engine/prediction"
	"season-engine/standings"
)

// Engine runs Monte Carlo season simulations: sample a season, resolve
// standings, play the bracket, accumulate outcomes. Trials are independent;
// the engine's only cross-trial state is the merged accumulator.
type Engine struct {
	league   *models.League
	schedule []models.Game
	model    *prediction.Model
	resolver *standings.Resolver
	bracket  *playoffs.Simulator
	cfg      Config

	progress func(completed int)
}

// TrialDetail is one trial's full output, kept only when the run is
// configured to retain it.
type TrialDetail struct {
	Trial     int                     `json:"trial"`
	Season    *models.SeasonResult    `json:"season"`
	Standings *models.LeagueStandings `json:"standings"`
	Playoffs  *playoffs.Result        `json:"playoffs"`
}

// RunResult is the finalized output of one Monte Carlo run.
type RunResult struct {
	Report  *models.OutcomeReport `json:"report"`
	Details []TrialDetail         `json:"details,omitempty"`
}

// NewEngine validates the league, schedule and configuration up front.
// Every scheduled matchup is pushed through the outcome model once here, so
// malformed strength data surfaces before any trial starts.
func NewEngine(league *models.League, schedule []models.Game, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()

	if league == nil {
		return nil, &models.InputError{Field: "league", Message: "nil league"}
	}
	if len(schedule) == 0 {
		return nil, &models.InputError{Field: "schedule", Message: "empty schedule"}
	}

	model, err := prediction.NewModel(cfg.HomeFieldAdvantage, cfg.TieProbability)
	if err != nil {
		return nil, err
	}

	for _, game := range schedule {
		home, ok := league.Team(game.Home)
		if !ok {
			return nil, &models.InputError{Field: game.ID, Message: "unknown home team " + game.Home}
		}
		away, ok := league.Team(game.Away)
		if !ok {
			return nil, &models.InputError{Field: game.ID, Message: "unknown away team " + game.Away}
		}
		if _, err := model.Predict(home, away); err != nil {
			return nil, fmt.Errorf("game %s: %w", game.ID, err)
		}
	}

	if err := standings.CheckScheduleCoverage(league, schedule); err != nil {
		return nil, err
	}

	resolver, err := standings.NewResolver(league, cfg.WildCardSlots)
	if err != nil {
		return nil, err
	}
	bracket, err := playoffs.NewSimulator(league, model)
	if err != nil {
		return nil, err
	}

	return &Engine{
		league:   league,
		schedule: schedule,
		model:    model,
		resolver: resolver,
		bracket:  bracket,
		cfg:      cfg,
	}, nil
}

// Config returns the normalized configuration the engine runs with.
func (e *Engine) Config() Config { return e.cfg }

// OnProgress registers a callback invoked with the completed-trial count.
// Must be set before Run.
func (e *Engine) OnProgress(fn func(completed int)) { e.progress = fn }

// trialOutcome is the compact per-trial result fed into accumulators.
type trialOutcome struct {
	seedings      []models.PlayoffSeeding
	winners       map[string]string
	confChampions []string
	champion      string
}

// Run executes the full Monte Carlo loop. Workers pull trial indices from a
// shared channel into private partial accumulators which are merged at the
// end, so the output is identical for identical (league, schedule, config)
// regardless of worker count or scheduling order. Cancellation is honored
// between trials only; a started trial always completes. A trial error is
// fatal to the whole run: the erroring worker cancels the run context so the
// feeder stops handing out trials.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	trials := make(chan int)
	champions := make([]string, e.cfg.TrialCount)

	var details []TrialDetail
	if e.cfg.RetainTrialDetail {
		details = make([]TrialDetail, e.cfg.TrialCount)
	}

	partials := make([]*models.OutcomeAccumulator, e.cfg.Workers)
	errs := make([]error, e.cfg.Workers)
	var completed int
	var completedMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			partial := models.NewOutcomeAccumulator(e.league.Teams())
			partials[worker] = partial

			for trial := range trials {
				outcome, detail, err := e.runTrial(trial)
				if err != nil {
					errs[worker] = fmt.Errorf("trial %d: %w", trial, err)
					cancel()
					return
				}
				partial.RecordTrial(outcome.seedings, outcome.winners, outcome.confChampions, outcome.champion)
				champions[trial] = outcome.champion
				if e.cfg.RetainTrialDetail {
					details[trial] = detail
				}
				if e.progress != nil {
					completedMu.Lock()
					completed++
					n := completed
					completedMu.Unlock()
					e.progress(n)
				}
			}
		}(w)
	}

	func() {
		defer close(trials)
		for trial := 0; trial < e.cfg.TrialCount; trial++ {
			select {
			case <-runCtx.Done():
				return
			case trials <- trial:
			}
		}
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := models.NewOutcomeAccumulator(e.league.Teams())
	for _, partial := range partials {
		acc.Merge(partial)
	}

	report := acc.Finalize(e.cfg.Seed, e.convergence(champions))
	return &RunResult{Report: report, Details: details}, nil
}

// runTrial executes one independent trial with its own reproducible random
// stream derived from the run seed and trial index.
func (e *Engine) runTrial(trial int) (trialOutcome, TrialDetail, error) {
	rng := rand.New(rand.NewSource(subSeed(e.cfg.Seed, trial)))

	season, err := SampleSeason(e.league, e.schedule, e.model, rng)
	if err != nil {
		return trialOutcome{}, TrialDetail{}, err
	}

	resolved, err := e.resolver.Resolve(season)
	if err != nil {
		return trialOutcome{}, TrialDetail{}, err
	}

	post, err := e.bracket.Simulate(resolved.Seedings, rng)
	if err != nil {
		return trialOutcome{}, TrialDetail{}, err
	}

	outcome := trialOutcome{
		seedings:      resolved.Seedings,
		winners:       resolved.Winners,
		confChampions: post.ConferenceChampions,
		champion:      post.Champion,
	}

	var detail TrialDetail
	if e.cfg.RetainTrialDetail {
		detail = TrialDetail{Trial: trial, Season: season, Standings: resolved, Playoffs: post}
	}
	return outcome, detail, nil
}

// convergence walks the champion log in trial order and samples the largest
// per-team shift in championship probability at each window boundary. The
// log is indexed by trial, so the series is deterministic no matter which
// worker ran which trial.
func (e *Engine) convergence(champions []string) []models.ConvergencePoint {
	window := e.cfg.ConvergenceWindow
	if len(champions) <= window {
		return nil
	}

	counts := make(map[string]int)
	prev := make(map[string]float64)
	var points []models.ConvergencePoint

	for i, champ := range champions {
		counts[champ]++
		trial := i + 1
		if trial%window != 0 && trial != len(champions) {
			continue
		}

		maxDelta := 0.0
		current := make(map[string]float64, len(counts))
		for team, count := range counts {
			p := float64(count) / float64(trial)
			current[team] = p
			if d := math.Abs(p - prev[team]); d > maxDelta {
				maxDelta = d
			}
		}
		points = append(points, models.ConvergencePoint{Trial: trial, MaxDelta: maxDelta})
		prev = current
	}
	return points
}

// subSeed derives a well-mixed per-trial seed from the run seed and trial
// index (SplitMix64 finalizer), giving each trial a private random stream.
func subSeed(seed int64, trial int) int64 {
	z := uint64(seed) + uint64(trial+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
