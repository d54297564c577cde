package veto

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/google/uuid"
)

// Caller is whoever is attempting a veto or map result
type Caller struct {
	Identity string
	Admin    bool
}

// Ledger holds the veto records of a tournament, keyed by match id.
// Records outlive bracket recomputation and are only removed explicitly.
type Ledger struct {
	records map[string]*Record
}

func NewLedger(records ...*Record) *Ledger {
	l := &Ledger{records: make(map[string]*Record, len(records))}
	for _, r := range records {
		l.records[r.MatchID] = r
	}
	return l
}

func (l *Ledger) Get(matchID string) (*Record, bool) {
	r, ok := l.records[matchID]
	return r, ok
}

// Records lists every record ordered by match id
func (l *Ledger) Records() []*Record {
	records := make([]*Record, 0, len(l.records))
	for _, r := range l.records {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b *Record) int {
		return strings.Compare(a.MatchID, b.MatchID)
	})
	return records
}

// Open returns the match's record, creating it once both participants are known
func (l *Ledger) Open(b *bracket.Bracket, roster bracket.Roster, matchID string, pool []string) (*Record, error) {
	if r, ok := l.records[matchID]; ok {
		return r, nil
	}

	m, participants, err := playable(b, roster, matchID)
	if err != nil {
		return nil, err
	}

	lower, higher := participants[0], participants[1]
	if lower.Seed < higher.Seed {
		lower, higher = higher, lower
	}
	r := NewRecord(matchID, m.BestOf, pool, lower.ID, higher.ID)
	l.records[matchID] = r
	return r, nil
}

// Apply performs the next veto or pick on behalf of caller
func (l *Ledger) Apply(b *bracket.Bracket, roster bracket.Roster, matchID, mapName string, caller Caller) (*Record, error) {
	r, ok := l.records[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, matchID)
	}
	participants, err := l.currentParticipants(b, roster, r)
	if err != nil {
		return nil, err
	}
	if !caller.Admin {
		if err := authorizeTurn(r, participants, caller); err != nil {
			return nil, err
		}
	}

	if err := r.Apply(r.Turn, mapName); err != nil {
		return nil, fmt.Errorf("%w: %q", err, mapName)
	}
	return r, nil
}

func (l *Ledger) Reset(matchID string) (*Record, error) {
	r, ok := l.records[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, matchID)
	}
	r.Reset()
	return r, nil
}

// RecordMapResult stores a single map winner and pushes the running series
// score into the bracket as a partial result
func (l *Ledger) RecordMapResult(b *bracket.Bracket, roster bracket.Roster, matchID string, index int, winner bracket.Side, caller Caller) (*Record, []string, error) {
	r, ok := l.records[matchID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrRecordNotFound, matchID)
	}
	participants, err := l.currentParticipants(b, roster, r)
	if err != nil {
		return nil, nil, err
	}
	if !caller.Admin && !isParticipant(participants, caller) {
		return nil, nil, ErrNotParticipant
	}

	next := r.clone()
	if err := next.SetMapResult(index, winner); err != nil {
		return nil, nil, fmt.Errorf("%w: map %d", err, index)
	}
	tally := next.Tally()
	changed, err := b.UpdateMatchScore(roster, matchID, strconv.Itoa(tally[0]), strconv.Itoa(tally[1]), false)
	if err != nil {
		return nil, nil, err
	}

	*r = *next
	return r, changed, nil
}

func (l *Ledger) Delete(matchID string) {
	delete(l.records, matchID)
}

// Clear drops every record, used by a full tournament reset
func (l *Ledger) Clear() {
	clear(l.records)
}

// currentParticipants checks the record still belongs to the players now in the match
func (l *Ledger) currentParticipants(b *bracket.Bracket, roster bracket.Roster, r *Record) ([2]*bracket.Player, error) {
	_, participants, err := playable(b, roster, r.MatchID)
	if err != nil {
		return participants, err
	}
	ids := []uuid.UUID{participants[0].ID, participants[1].ID}
	if !slices.Contains(ids, r.LowerSeedID) || !slices.Contains(ids, r.HigherSeedID) {
		return participants, ErrParticipantsChanged
	}
	return participants, nil
}

func playable(b *bracket.Bracket, roster bracket.Roster, matchID string) (*bracket.Match, [2]*bracket.Player, error) {
	var participants [2]*bracket.Player
	m, ok := b.Match(matchID)
	if !ok {
		return nil, participants, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, matchID)
	}
	bye, err := b.IsBye(matchID)
	if err != nil {
		return nil, participants, err
	}
	if bye {
		return nil, participants, fmt.Errorf("%w: %s", bracket.ErrByeMatch, matchID)
	}
	participants = bracket.ResolveParticipants(m, b.Lookup(), roster)
	if participants[0] == nil || participants[1] == nil {
		return nil, participants, fmt.Errorf("%w: %s", bracket.ErrParticipantsUnresolved, matchID)
	}
	return m, participants, nil
}

func authorizeTurn(r *Record, participants [2]*bracket.Player, caller Caller) error {
	if !isParticipant(participants, caller) {
		return ErrNotParticipant
	}
	turnID := r.seedIDFor(r.Turn)
	for _, p := range participants {
		if p.ID == turnID && utils.OrZero(p.UID) == caller.Identity {
			return nil
		}
	}
	return ErrNotYourTurn
}

func isParticipant(participants [2]*bracket.Player, caller Caller) bool {
	if caller.Identity == "" {
		return false
	}
	for _, p := range participants {
		if utils.OrZero(p.UID) == caller.Identity {
			return true
		}
	}
	return false
}
