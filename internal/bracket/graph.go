package bracket

import (
	"fmt"
)

// ResolveParticipants derives the players currently occupying both slots of a match
func ResolveParticipants(m *Match, lookup Lookup, roster Roster) [2]*Player {
	return [2]*Player{
		resolveSource(m.Sources[0], lookup, roster),
		resolveSource(m.Sources[1], lookup, roster),
	}
}

func resolveSource(src Source, lookup Lookup, roster Roster) *Player {
	switch s := src.(type) {
	case PlayerSource:
		return roster[s.PlayerID]
	case MatchSource:
		ref, ok := lookup[s.MatchID]
		if !ok || !ref.IsComplete() {
			return nil
		}
		if s.Outcome == OutcomeLoser {
			return roster.Get(ref.LoserID)
		}
		return roster.Get(ref.WinnerID)
	}
	return nil
}

// graph is the evaluation view of a bracket: a topological order,
// reverse edges and which slots can never receive a player
type graph struct {
	bracket    *Bracket
	lookup     Lookup
	order      []*Match
	rank       map[string]int
	dependents map[string][]string
	dead       map[string][2]bool
}

func newGraph(b *Bracket) (*graph, error) {
	all := b.AllMatches()
	g := &graph{
		bracket:    b,
		lookup:     make(Lookup, len(all)),
		rank:       make(map[string]int, len(all)),
		dependents: make(map[string][]string, len(all)),
		dead:       make(map[string][2]bool, len(all)),
	}

	for _, m := range all {
		if _, dup := g.lookup[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate match id %s", ErrInvalidStructure, m.ID)
		}
		g.lookup[m.ID] = m
	}

	indegree := make(map[string]int, len(all))
	for _, m := range all {
		for _, src := range m.Sources {
			ms, ok := src.(MatchSource)
			if !ok {
				continue
			}
			if m.Section == GroupSection {
				return nil, fmt.Errorf("%w: group match %s depends on match %s", ErrInvalidStructure, m.ID, ms.MatchID)
			}
			if _, known := g.lookup[ms.MatchID]; !known {
				return nil, fmt.Errorf("%w: match %s references unknown match %s", ErrInvalidStructure, m.ID, ms.MatchID)
			}
			if ms.Outcome != OutcomeWinner && ms.Outcome != OutcomeLoser {
				return nil, fmt.Errorf("%w: match %s has source outcome %q", ErrInvalidStructure, m.ID, ms.Outcome)
			}
			g.dependents[ms.MatchID] = append(g.dependents[ms.MatchID], m.ID)
			indegree[m.ID]++
		}
	}

	// Kahn's algorithm, seeded in listing order so the result is deterministic
	queue := make([]*Match, 0, len(all))
	for _, m := range all {
		if indegree[m.ID] == 0 {
			queue = append(queue, m)
		}
	}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		g.rank[m.ID] = len(g.order)
		g.order = append(g.order, m)
		for _, dep := range g.dependents[m.ID] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, g.lookup[dep])
			}
		}
	}
	if len(g.order) != len(all) {
		return nil, fmt.Errorf("%w: match dependencies contain a cycle", ErrInvalidStructure)
	}

	for _, m := range g.order {
		var dead [2]bool
		for slot, src := range m.Sources {
			dead[slot] = g.sourceDead(src)
		}
		g.dead[m.ID] = dead
	}
	return g, nil
}

// sourceDead reports whether a source can never produce a player.
// A winner exists unless both sides are empty, a loser only when both sides are filled.
func (g *graph) sourceDead(src Source) bool {
	switch s := src.(type) {
	case PlayerSource:
		return false
	case MatchSource:
		d := g.dead[s.MatchID]
		if s.Outcome == OutcomeLoser {
			return d[0] || d[1]
		}
		return d[0] && d[1]
	}
	return true
}

// isBye reports whether the match is never played
func (g *graph) isBye(m *Match) bool {
	d := g.dead[m.ID]
	return d[0] || d[1]
}

// Validate checks that every source resolves to a known match and the graph is acyclic
func (b *Bracket) Validate() error {
	_, err := newGraph(b)
	return err
}

// IsBye reports whether the match is structurally decided without play
func (b *Bracket) IsBye(matchID string) (bool, error) {
	g, err := newGraph(b)
	if err != nil {
		return false, err
	}
	m, ok := g.lookup[matchID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	return g.isBye(m), nil
}
