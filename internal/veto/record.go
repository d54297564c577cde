package veto

import (
	"slices"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

type Stage string

const (
	StageVeto Stage = "veto"
	StagePick Stage = "pick"
	StageDone Stage = "done"
)

type Actor string

const (
	// LowerSeed is the weaker seed, the numerically larger one
	LowerSeed  Actor = "lower_seed"
	HigherSeed Actor = "higher_seed"
)

func (a Actor) other() Actor {
	if a == LowerSeed {
		return HigherSeed
	}
	return LowerSeed
}

type Kind string

const (
	KindVeto Kind = "veto"
	KindPick Kind = "pick"
)

type Action struct {
	Map    string `json:"map"`
	Picker Actor  `json:"picker"`
	Kind   Kind   `json:"action"`
}

// Record is the veto and pick history of one match
type Record struct {
	MatchID      string         `json:"matchId"`
	BestOf       int            `json:"bestOf"`
	Pool         []string       `json:"pool"`
	Remaining    []string       `json:"remaining"`
	Vetoed       []Action       `json:"vetoed"`
	Picks        []Action       `json:"picks"`
	MapResults   []bracket.Side `json:"mapResults"`
	Stage        Stage          `json:"stage"`
	Turn         Actor          `json:"turn"`
	LowerSeedID  uuid.UUID      `json:"lowerSeedId"`
	HigherSeedID uuid.UUID      `json:"higherSeedId"`
}

func NewRecord(matchID string, bestOf int, pool []string, lower, higher uuid.UUID) *Record {
	r := &Record{
		MatchID:      matchID,
		BestOf:       bestOf,
		Pool:         PoolOrDefault(pool),
		LowerSeedID:  lower,
		HigherSeedID: higher,
	}
	r.Reset()
	return r
}

// Reset clears the history and returns the record to its opening state
func (r *Record) Reset() {
	r.Remaining = slices.Clone(r.Pool)
	r.Vetoed = []Action{}
	r.Picks = []Action{}
	r.MapResults = make([]bracket.Side, r.BestOf)
	r.Turn = LowerSeed
	r.Stage = StageVeto
	if len(r.Pool) <= r.BestOf {
		r.Stage = StagePick
	}
}

// Apply vetoes or picks a map for actor. Nothing changes when it returns an error.
func (r *Record) Apply(actor Actor, mapName string) error {
	if r.Stage == StageDone {
		return ErrVetoComplete
	}
	if actor != r.Turn {
		return ErrNotYourTurn
	}
	name, ok := matchMapName(mapName, r.Remaining)
	if !ok {
		return ErrUnknownMap
	}

	r.Remaining = slices.DeleteFunc(r.Remaining, func(m string) bool { return m == name })
	r.Turn = actor.other()

	switch r.Stage {
	case StageVeto:
		r.Vetoed = append(r.Vetoed, Action{Map: name, Picker: actor, Kind: KindVeto})
		if len(r.Remaining) <= r.BestOf {
			r.Stage = StagePick
			r.Turn = LowerSeed
		}
	case StagePick:
		r.Picks = append(r.Picks, Action{Map: name, Picker: actor, Kind: KindPick})
		// A pool smaller than the series runs out before every game has a map
		if len(r.Picks) == r.BestOf || len(r.Remaining) == 0 {
			r.Stage = StageDone
		}
	}
	return nil
}

// SetMapResult records which side won the index-th picked map, SideNone clears it
func (r *Record) SetMapResult(index int, winner bracket.Side) error {
	if r.Stage != StageDone {
		return ErrInvalidAction
	}
	if index < 0 || index >= len(r.Picks) || index >= len(r.MapResults) {
		return ErrInvalidAction
	}
	if winner != bracket.SideNone && !winner.Valid() {
		return ErrInvalidAction
	}
	r.MapResults[index] = winner
	return nil
}

// Tally counts maps won by each side
func (r *Record) Tally() [2]int {
	var tally [2]int
	for _, side := range r.MapResults {
		if side.Valid() {
			tally[side.Slot()]++
		}
	}
	return tally
}

func (r *Record) clone() *Record {
	c := *r
	c.Pool = slices.Clone(r.Pool)
	c.Remaining = slices.Clone(r.Remaining)
	c.Vetoed = slices.Clone(r.Vetoed)
	c.Picks = slices.Clone(r.Picks)
	c.MapResults = slices.Clone(r.MapResults)
	return &c
}

func (r *Record) seedIDFor(actor Actor) uuid.UUID {
	if actor == LowerSeed {
		return r.LowerSeedID
	}
	return r.HigherSeedID
}
