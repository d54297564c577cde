package bracket

import (
	"github.com/google/uuid"
)

type Group struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	PlayerIDs []uuid.UUID `json:"playerIds"`
	Matches   []*Match    `json:"matches"`
}

// Bracket is the full match graph of a tournament
type Bracket struct {
	Format  Format       `json:"format"`
	Policy  BestOfPolicy `json:"policy"`
	Groups  []*Group     `json:"groups,omitempty"`
	Winners [][]*Match   `json:"winners,omitempty"`
	Losers  [][]*Match   `json:"losers,omitempty"`
	Finals  *Match       `json:"finals,omitempty"`
	// Set when seeds changed after results were recorded
	Stale bool `json:"stale"`
}

// Lookup indexes matches by id
type Lookup map[string]*Match

// AllMatches lists group matches, then winners, losers and the finals node
func (b *Bracket) AllMatches() []*Match {
	var matches []*Match
	for _, g := range b.Groups {
		matches = append(matches, g.Matches...)
	}
	for _, round := range b.Winners {
		matches = append(matches, round...)
	}
	for _, round := range b.Losers {
		matches = append(matches, round...)
	}
	if b.Finals != nil {
		matches = append(matches, b.Finals)
	}
	return matches
}

func (b *Bracket) Lookup() Lookup {
	all := b.AllMatches()
	lookup := make(Lookup, len(all))
	for _, m := range all {
		lookup[m.ID] = m
	}
	return lookup
}

func (b *Bracket) Match(id string) (*Match, bool) {
	m, ok := b.Lookup()[id]
	return m, ok
}

func (b *Bracket) Group(id string) (*Group, bool) {
	for _, g := range b.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// HasRecordedResults reports whether any human result has been entered
func (b *Bracket) HasRecordedResults() bool {
	for _, m := range b.AllMatches() {
		if m.Record != RecordNone {
			return true
		}
	}
	return false
}

// Champion is the winner of the finals node once it completes
func (b *Bracket) Champion() *uuid.UUID {
	if b.Finals == nil || !b.Finals.IsComplete() {
		return nil
	}
	return b.Finals.WinnerID
}

// bestOfFor picks the series length tier from the match's distance to the final
func (b *Bracket) bestOfFor(m *Match) int {
	p := b.Policy.normalized()
	switch m.Section {
	case GroupSection:
		return p.Group
	case FinalsSection:
		return p.Final
	case LosersSection:
		switch len(b.Losers) - m.Round {
		case 0:
			return p.LosersFinal
		case 1:
			return p.LosersSemi
		default:
			return p.LosersEarlier
		}
	}

	distance := len(b.Winners) - m.Round
	if len(b.Losers) > 0 {
		// The grand final sits one step past the winners final
		distance++
	}
	switch distance {
	case 0:
		return p.Final
	case 1:
		return p.Semi
	case 2:
		return p.Quarter
	default:
		return p.Earlier
	}
}
