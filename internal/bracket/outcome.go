package bracket

import (
	"container/heap"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// UpdateMatchScore records a result and cascades it through every dependent match.
// rawA and rawB are series wins, empty for zero, or "W" to name the side that
// walked over. Without finalize the input is kept as a partial result.
// Returns the ids of every match whose state changed, in evaluation order.
func (b *Bracket) UpdateMatchScore(roster Roster, matchID, rawA, rawB string, finalize bool) ([]string, error) {
	g, err := newGraph(b)
	if err != nil {
		return nil, err
	}

	m, ok := g.lookup[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if g.isBye(m) {
		return nil, fmt.Errorf("%w: %s", ErrByeMatch, matchID)
	}
	participants := ResolveParticipants(m, g.lookup, roster)
	if participants[0] == nil || participants[1] == nil {
		return nil, fmt.Errorf("%w: %s", ErrParticipantsUnresolved, matchID)
	}

	scoreA, walkA, err := parseScore(rawA)
	if err != nil {
		return nil, err
	}
	scoreB, walkB, err := parseScore(rawB)
	if err != nil {
		return nil, err
	}
	needed := b.bestOfFor(m)/2 + 1
	if scoreA > needed || scoreB > needed || (scoreA == needed && scoreB == needed) {
		return nil, fmt.Errorf("%w: %d-%d in a series to %d", ErrInvalidScore, scoreA, scoreB, needed)
	}

	prior := stateOf(m)
	m.Entrants = [2]*uuid.UUID{idOf(participants[0]), idOf(participants[1])}
	m.Walkover = SideNone
	m.ForfeitApplied = false
	switch {
	case finalize && walkA != walkB:
		loser := 0
		if walkB {
			loser = 1
		}
		m.Record = RecordFinal
		m.Walkover = sideOf(loser)
		m.Scores = [2]int{}
		m.Scores[1-loser] = needed
	case finalize && decisive(scoreA, scoreB, needed):
		m.Record = RecordFinal
		m.Scores = [2]int{scoreA, scoreB}
	default:
		m.Record = RecordPartial
		m.Scores = [2]int{scoreA, scoreB}
	}

	return g.cascade(roster, m, prior), nil
}

// Recompute evaluates every match in dependency order and returns the ids that changed.
// Running it twice in a row reports nothing the second time.
func (b *Bracket) Recompute(roster Roster) ([]string, error) {
	g, err := newGraph(b)
	if err != nil {
		return nil, err
	}

	var changed []string
	for _, m := range g.order {
		before := stateOf(m)
		g.evaluate(m, roster)
		if stateOf(m) != before {
			changed = append(changed, m.ID)
		}
	}
	return changed, nil
}

// ApplyForfeitWalkovers re-applies the forfeit rules after players' forfeit flags changed
func (b *Bracket) ApplyForfeitWalkovers(roster Roster) ([]string, error) {
	return b.Recompute(roster)
}

// cascade re-evaluates start and then only those dependents whose inputs moved.
// Matches are visited in topological rank so each one is evaluated at most once.
func (g *graph) cascade(roster Roster, start *Match, prior matchState) []string {
	queue := &rankQueue{}
	queued := make(map[int]bool)
	push := func(id string) {
		r := g.rank[id]
		if !queued[r] {
			queued[r] = true
			heap.Push(queue, r)
		}
	}
	push(start.ID)

	var changed []string
	for queue.Len() > 0 {
		m := g.order[heap.Pop(queue).(int)]
		before := stateOf(m)
		if m == start {
			before = prior
		}

		g.evaluate(m, roster)

		after := stateOf(m)
		if after != before {
			changed = append(changed, m.ID)
		}
		if !after.sameOutcome(before) {
			for _, dep := range g.dependents[m.ID] {
				push(dep)
			}
		}
	}
	return changed
}

// evaluate derives a match's outcome from its resolved participants and stored record
func (g *graph) evaluate(m *Match, roster Roster) {
	m.BestOf = g.bracket.bestOfFor(m)
	needed := m.Needed()

	participants := ResolveParticipants(m, g.lookup, roster)
	entrants := [2]*uuid.UUID{idOf(participants[0]), idOf(participants[1])}
	if m.Record != RecordNone && !sameEntrants(m.Entrants, entrants) {
		m.clearRecord()
	}
	m.Entrants = entrants

	dead := g.dead[m.ID]
	if dead[0] || dead[1] {
		m.clearRecord()
		m.ForfeitApplied = false
		live := 0
		if dead[0] {
			live = 1
		}
		if (dead[0] && dead[1]) || participants[live] == nil {
			m.setPending()
			return
		}
		m.complete(live, participants)
		m.Walkover = sideOf(1 - live)
		return
	}

	if participants[0] == nil || participants[1] == nil {
		m.dropForfeit()
		m.setPending()
		return
	}

	pa, pb := participants[0], participants[1]
	if m.Record != RecordFinal && (pa.Forfeit || pb.Forfeit) {
		winner := 0
		switch {
		case pa.Forfeit && pb.Forfeit:
			if pb.Seed < pa.Seed {
				winner = 1
			}
		case pa.Forfeit:
			winner = 1
		}
		m.Record = RecordNone
		m.ForfeitApplied = true
		m.Scores = [2]int{}
		m.Scores[winner] = needed
		m.Walkover = sideOf(1 - winner)
		m.complete(winner, participants)
		return
	}
	m.dropForfeit()

	switch {
	case m.Record == RecordFinal && m.Walkover.Valid():
		loser := m.Walkover.Slot()
		m.Scores = [2]int{}
		m.Scores[1-loser] = needed
		m.complete(1-loser, participants)
	case m.Record == RecordFinal && decisive(m.Scores[0], m.Scores[1], needed):
		m.Walkover = SideNone
		winner := 0
		if m.Scores[1] > m.Scores[0] {
			winner = 1
		}
		m.complete(winner, participants)
	default:
		m.Walkover = SideNone
		m.setPending()
	}
}

// dropForfeit reverts an automatic forfeit result once no forfeit applies
func (m *Match) dropForfeit() {
	if !m.ForfeitApplied {
		return
	}
	m.ForfeitApplied = false
	m.clearRecord()
}

func decisive(a, b, needed int) bool {
	return a != b && max(a, b) >= needed
}

// parseScore reads a raw score cell: empty is 0, "W" marks a walkover
func parseScore(raw string) (int, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	if strings.EqualFold(s, "w") {
		return 0, true, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	return n, false, nil
}

func sameEntrants(a, b [2]*uuid.UUID) bool {
	for i := range a {
		if (a[i] == nil) != (b[i] == nil) {
			return false
		}
		if a[i] != nil && *a[i] != *b[i] {
			return false
		}
	}
	return true
}

type matchState struct {
	status   MatchStatus
	walkover Side
	forfeit  bool
	winner   uuid.UUID
	loser    uuid.UUID
	scores   [2]int
	record   Record
	entrants [2]uuid.UUID
	bestOf   int
}

func stateOf(m *Match) matchState {
	s := matchState{
		status:   m.Status,
		walkover: m.Walkover,
		forfeit:  m.ForfeitApplied,
		scores:   m.Scores,
		record:   m.Record,
		bestOf:   m.BestOf,
	}
	if m.WinnerID != nil {
		s.winner = *m.WinnerID
	}
	if m.LoserID != nil {
		s.loser = *m.LoserID
	}
	for i, id := range m.Entrants {
		if id != nil {
			s.entrants[i] = *id
		}
	}
	return s
}

// sameOutcome compares only what dependents can observe
func (s matchState) sameOutcome(o matchState) bool {
	return s.status == o.status && s.winner == o.winner && s.loser == o.loser && s.walkover == o.walkover
}

type rankQueue []int

func (q rankQueue) Len() int           { return len(q) }
func (q rankQueue) Less(i, j int) bool { return q[i] < q[j] }
func (q rankQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *rankQueue) Push(x any) {
	*q = append(*q, x.(int))
}

func (q *rankQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
