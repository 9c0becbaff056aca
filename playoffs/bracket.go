package playoffs

import (
	"math/rand"
	"sort"

	"season-engine/models"
	"season-engine/prediction"
)

// Simulator plays out the postseason bracket for one trial using the same
// outcome model as the regular season.
type Simulator struct {
	league *models.League
	model  *prediction.Model
}

// NewSimulator wires a bracket simulator to a league and outcome model.
func NewSimulator(league *models.League, model *prediction.Model) (*Simulator, error) {
	if league == nil {
		return nil, &models.InputError{Field: "league", Message: "nil league"}
	}
	if model == nil {
		return nil, &models.InputError{Field: "model", Message: "nil outcome model"}
	}
	return &Simulator{league: league, model: model}, nil
}

// Result is the outcome of one simulated postseason.
type Result struct {
	Brackets            []models.BracketState
	ConferenceChampions []string
	Champion            string
}

// Simulate plays every conference bracket and the championship game.
// Matchups are recomputed from the surviving seeds each round, never from a
// fixed bracket, so the best remaining seed always hosts the worst.
func (s *Simulator) Simulate(seedings []models.PlayoffSeeding, rng *rand.Rand) (*Result, error) {
	if len(seedings) == 0 {
		return nil, &models.InputError{Field: "seedings", Message: "no playoff seedings"}
	}
	if len(seedings) > 2 {
		return nil, &models.InputError{Field: "seedings", Message: "more than two conferences cannot meet in a single championship game"}
	}

	result := &Result{}
	var finalists []models.SeededTeam

	for _, seeding := range seedings {
		if len(seeding.Seeds) == 0 {
			return nil, &models.InputError{Field: seeding.Conference, Message: "empty playoff field"}
		}
		bracket, champion, err := s.playConference(seeding, rng)
		if err != nil {
			return nil, err
		}
		result.Brackets = append(result.Brackets, bracket)
		result.ConferenceChampions = append(result.ConferenceChampions, champion.Team)
		finalists = append(finalists, champion)
	}

	if len(finalists) == 1 {
		result.Champion = finalists[0].Team
		return result, nil
	}

	// Championship game between the two conference champions. Home field
	// goes to the better regular-season win percentage, abbreviation as the
	// final deterministic split.
	sort.Slice(finalists, func(i, j int) bool {
		if finalists[i].WinPct != finalists[j].WinPct {
			return finalists[i].WinPct > finalists[j].WinPct
		}
		return finalists[i].Team < finalists[j].Team
	})

	lastRound := 0
	for _, bracket := range result.Brackets {
		for _, game := range bracket.Games {
			if game.Round > lastRound {
				lastRound = game.Round
			}
		}
	}

	final := models.BracketState{Conference: "championship"}
	winner, game, err := s.playGame(lastRound+1, finalists[0], finalists[1], rng)
	if err != nil {
		return nil, err
	}
	final.Games = append(final.Games, game)
	final.Champion = winner.Team
	result.Brackets = append(result.Brackets, final)
	result.Champion = winner.Team
	return result, nil
}

// playConference runs one conference bracket to a single survivor. When the
// field is not a power of two, the top seeds sit out the first round.
func (s *Simulator) playConference(seeding models.PlayoffSeeding, rng *rand.Rand) (models.BracketState, models.SeededTeam, error) {
	bracket := models.BracketState{Conference: seeding.Conference}

	alive := append([]models.SeededTeam(nil), seeding.Seeds...)
	round := 1

	for len(alive) > 1 {
		sort.Slice(alive, func(i, j int) bool { return alive[i].Seed < alive[j].Seed })

		byes := byeCount(len(alive))
		next := append([]models.SeededTeam(nil), alive[:byes]...)

		playing := alive[byes:]
		for i := 0; i < len(playing)/2; i++ {
			home := playing[i]
			away := playing[len(playing)-1-i]
			winner, game, err := s.playGame(round, home, away, rng)
			if err != nil {
				return bracket, models.SeededTeam{}, err
			}
			bracket.Games = append(bracket.Games, game)
			next = append(next, winner)
		}

		alive = next
		round++
	}

	bracket.Champion = alive[0].Team
	return bracket, alive[0], nil
}

// byeCount returns how many top seeds skip the round so the survivors plus
// byes form a power of two.
func byeCount(n int) int {
	pow := 1
	for pow < n {
		pow *= 2
	}
	return pow - n
}

// playGame resolves one elimination matchup. Any tie mass in the model's
// distribution is redistributed proportionally between the two win outcomes,
// standing in for sudden-death overtime.
func (s *Simulator) playGame(round int, home, away models.SeededTeam, rng *rand.Rand) (models.SeededTeam, models.BracketGame, error) {
	homeTeam, ok := s.league.Team(home.Team)
	if !ok {
		return models.SeededTeam{}, models.BracketGame{}, &models.InputError{Field: home.Team, Message: "unknown playoff team"}
	}
	awayTeam, ok := s.league.Team(away.Team)
	if !ok {
		return models.SeededTeam{}, models.BracketGame{}, &models.InputError{Field: away.Team, Message: "unknown playoff team"}
	}

	dist, err := s.model.Predict(homeTeam, awayTeam)
	if err != nil {
		return models.SeededTeam{}, models.BracketGame{}, err
	}

	pHome := dist.HomeWin
	if winMass := dist.HomeWin + dist.AwayWin; winMass > 0 {
		pHome = dist.HomeWin / winMass
	} else {
		// Both win masses zero means the model put everything on a tie;
		// sudden death is then an even coin.
		pHome = 0.5
	}

	winner := home
	if rng.Float64() >= pHome {
		winner = away
	}

	game := models.BracketGame{Round: round, Home: home, Away: away, Winner: winner.Team}
	return winner, game, nil
}
