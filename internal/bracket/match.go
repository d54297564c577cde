package bracket

import (
	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchComplete MatchStatus = "complete"
)

type Section string

const (
	WinnersSection Section = "winners"
	LosersSection  Section = "losers"
	FinalsSection  Section = "finals"
	GroupSection   Section = "group"
)

// Side addresses one of the two slots of a match
type Side string

const (
	SideNone Side = ""
	SideA    Side = "a"
	SideB    Side = "b"
)

func sideOf(slot int) Side {
	if slot == 0 {
		return SideA
	}
	return SideB
}

func (s Side) Slot() int {
	if s == SideB {
		return 1
	}
	return 0
}

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// Record tracks how much of a result a human has entered
type Record string

const (
	RecordNone    Record = ""
	RecordPartial Record = "partial"
	RecordFinal   Record = "final"
)

// Source says where a match slot gets its participant from.
// It is either a PlayerSource or a MatchSource; a nil Source is an empty slot.
type Source interface {
	isSource()
}

type PlayerSource struct {
	PlayerID uuid.UUID
}

type MatchSource struct {
	MatchID string
	Outcome Outcome
}

func (PlayerSource) isSource() {}
func (MatchSource) isSource()  {}

func WinnerOf(matchID string) MatchSource {
	return MatchSource{MatchID: matchID, Outcome: OutcomeWinner}
}

func LoserOf(matchID string) MatchSource {
	return MatchSource{MatchID: matchID, Outcome: OutcomeLoser}
}

type Match struct {
	ID      string
	Section Section
	Round   int
	Index   int
	GroupID string

	Sources [2]Source
	BestOf  int
	Scores  [2]int
	Status  MatchStatus

	// Walkover names the side that lost without playing
	Walkover       Side
	ForfeitApplied bool

	WinnerID *uuid.UUID
	LoserID  *uuid.UUID

	Record Record
	// Participants the current record was entered against
	Entrants [2]*uuid.UUID
}

func (m *Match) IsComplete() bool {
	return m.Status == MatchComplete
}

// Needed is the number of series wins that decides the match
func (m *Match) Needed() int {
	return m.BestOf/2 + 1
}

func (m *Match) IsWinner(id uuid.UUID) bool {
	return m.IsComplete() && m.WinnerID != nil && *m.WinnerID == id
}

func (m *Match) setPending() {
	m.Status = MatchPending
	m.WinnerID = nil
	m.LoserID = nil
}

func (m *Match) complete(winner int, participants [2]*Player) {
	m.Status = MatchComplete
	m.WinnerID = idOf(participants[winner])
	m.LoserID = idOf(participants[1-winner])
}

func (m *Match) clearRecord() {
	m.Record = RecordNone
	m.Scores = [2]int{}
	m.Walkover = SideNone
}

func idOf(p *Player) *uuid.UUID {
	if p == nil {
		return nil
	}
	id := p.ID
	return &id
}
