package models

import (
	"fmt"
	"sort"
)

// Team represents one franchise. Rating is the Elo-style strength parameter
// consumed by the prediction model; it must be positive for a team to be
// usable in a simulation run.
type Team struct {
	Abbrev     string  `json:"abbrev"`
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Division   string  `json:"division"`
	Conference string  `json:"conference"`
	Rating     float64 `json:"rating"`
}

// League is the immutable structural view over a set of teams: who belongs
// to which division and conference. Built once per run, never mutated.
type League struct {
	teams       map[string]*Team
	divisions   map[string][]string // division -> abbrevs, sorted
	conferences map[string][]string // conference -> division names, sorted
	order       []string            // all abbrevs, sorted
}

// NewLeague validates the team list and builds the league structure.
// Every team needs a unique abbreviation, a division, a conference and a
// positive rating; a division must not span conferences.
func NewLeague(teams []Team) (*League, error) {
	if len(teams) == 0 {
		return nil, &InputError{Field: "teams", Message: "no teams provided"}
	}

	l := &League{
		teams:       make(map[string]*Team, len(teams)),
		divisions:   make(map[string][]string),
		conferences: make(map[string][]string),
	}

	divConference := make(map[string]string)

	for i := range teams {
		t := teams[i]
		if t.Abbrev == "" {
			return nil, &InputError{Field: fmt.Sprintf("teams[%d]", i), Message: "missing abbreviation"}
		}
		if _, dup := l.teams[t.Abbrev]; dup {
			return nil, &InputError{Field: t.Abbrev, Message: "duplicate team abbreviation"}
		}
		if t.Division == "" || t.Conference == "" {
			return nil, &InputError{Field: t.Abbrev, Message: "team must belong to a division and a conference"}
		}
		if t.Rating <= 0 {
			return nil, &InputError{Field: t.Abbrev, Message: fmt.Sprintf("rating must be positive, got %v", t.Rating)}
		}
		if conf, seen := divConference[t.Division]; seen && conf != t.Conference {
			return nil, &InputError{Field: t.Division, Message: "division assigned to multiple conferences"}
		}
		divConference[t.Division] = t.Conference

		l.teams[t.Abbrev] = &t
		l.divisions[t.Division] = append(l.divisions[t.Division], t.Abbrev)
		l.order = append(l.order, t.Abbrev)
	}

	for div, conf := range divConference {
		l.conferences[conf] = append(l.conferences[conf], div)
	}
	for _, abbrevs := range l.divisions {
		sort.Strings(abbrevs)
	}
	for _, divs := range l.conferences {
		sort.Strings(divs)
	}
	sort.Strings(l.order)

	return l, nil
}

// Team looks up a team by abbreviation.
func (l *League) Team(abbrev string) (*Team, bool) {
	t, ok := l.teams[abbrev]
	return t, ok
}

// Teams returns all team abbreviations in deterministic order.
func (l *League) Teams() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Divisions returns the division names in a conference, sorted.
func (l *League) Divisions(conference string) []string {
	divs := l.conferences[conference]
	out := make([]string, len(divs))
	copy(out, divs)
	return out
}

// DivisionTeams returns the abbreviations of teams in a division, sorted.
func (l *League) DivisionTeams(division string) []string {
	abbrevs := l.divisions[division]
	out := make([]string, len(abbrevs))
	copy(out, abbrevs)
	return out
}

// ConferenceTeams returns all team abbreviations in a conference, sorted.
func (l *League) ConferenceTeams(conference string) []string {
	var out []string
	for _, div := range l.conferences[conference] {
		out = append(out, l.divisions[div]...)
	}
	sort.Strings(out)
	return out
}

// Conferences returns the conference names, sorted.
func (l *League) Conferences() []string {
	names := make([]string, 0, len(l.conferences))
	for name := range l.conferences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SameDivision reports whether two teams share a division.
func (l *League) SameDivision(a, b string) bool {
	ta, ok1 := l.teams[a]
	tb, ok2 := l.teams[b]
	return ok1 && ok2 && ta.Division == tb.Division
}

// SameConference reports whether two teams share a conference.
func (l *League) SameConference(a, b string) bool {
	ta, ok1 := l.teams[a]
	tb, ok2 := l.teams[b]
	return ok1 && ok2 && ta.Conference == tb.Conference
}
