package bracket

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"

	"github.com/google/uuid"
)

// Build lays out the match graph for the players' current seeds and resolves byes
func Build(players []Player, format Format, policy BestOfPolicy) (*Bracket, error) {
	b := &Bracket{Format: format.normalized(), Policy: policy.normalized()}

	seeded := slices.Clone(players)
	slices.SortStableFunc(seeded, func(a, c Player) int {
		return cmp.Compare(a.Seed, c.Seed)
	})

	switch b.Format.Kind {
	case SingleElimination, DoubleElimination:
		if len(seeded) < 1 {
			return nil, ErrNotEnoughPlayers
		}
		b.buildElimination(seeded, b.Format.Kind == DoubleElimination)
	case RoundRobin:
		if len(seeded) < 2 {
			return nil, ErrNotEnoughPlayers
		}
		b.buildGroups(seeded)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, b.Format.Kind)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if _, err := b.Recompute(NewRoster(players)); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bracket) newMatch(section Section, round, index int) *Match {
	var id string
	switch section {
	case WinnersSection:
		id = fmt.Sprintf("w%d-%d", round, index)
	case LosersSection:
		id = fmt.Sprintf("l%d-%d", round, index)
	case FinalsSection:
		id = "f"
	}
	return &Match{ID: id, Section: section, Round: round, Index: index, Status: MatchPending}
}

// buildElimination places the seeded players into the winners bracket and,
// when double, wires the losers bracket and the grand final.
// Builds are done going forward from round 1, the final is the last match created.
func (b *Bracket) buildElimination(seeded []Player, double bool) {
	size := BracketSize(len(seeded))
	positions := GenerateSeedPositions(size)
	rounds := bits.TrailingZeros(uint(size))

	first := make([]*Match, size/2)
	for i := range first {
		m := b.newMatch(WinnersSection, 1, i+1)
		for slot := range 2 {
			seed := positions[2*i+slot]
			if seed <= len(seeded) {
				m.Sources[slot] = PlayerSource{PlayerID: seeded[seed-1].ID}
			}
		}
		first[i] = m
	}
	b.Winners = [][]*Match{first}

	for r := 2; r <= rounds; r++ {
		prev := b.Winners[r-2]
		cur := make([]*Match, len(prev)/2)
		for i := range cur {
			m := b.newMatch(WinnersSection, r, i+1)
			m.Sources = [2]Source{WinnerOf(prev[2*i].ID), WinnerOf(prev[2*i+1].ID)}
			cur[i] = m
		}
		b.Winners = append(b.Winners, cur)
	}

	if double {
		b.buildLosers(rounds)
	}

	final := b.newMatch(FinalsSection, 1, 1)
	final.Sources[0] = WinnerOf(last(b.Winners).ID)
	if len(b.Losers) > 0 {
		final.Sources[1] = WinnerOf(last(b.Losers).ID)
	}
	b.Finals = final

	for _, m := range b.AllMatches() {
		m.BestOf = b.bestOfFor(m)
	}
}

// buildLosers creates 2*(rounds-1) losers rounds. Odd rounds pair up survivors,
// even rounds bring in the losers of the next winners round.
func (b *Bracket) buildLosers(rounds int) {
	wb1 := b.Winners[0]
	first := make([]*Match, len(wb1)/2)
	for i := range first {
		m := b.newMatch(LosersSection, 1, i+1)
		m.Sources = [2]Source{LoserOf(wb1[2*i].ID), LoserOf(wb1[2*i+1].ID)}
		first[i] = m
	}
	b.Losers = [][]*Match{first}

	for k := 2; k <= 2*(rounds-1); k++ {
		prev := b.Losers[k-2]
		var cur []*Match
		if k%2 == 0 {
			feed := b.Winners[k/2]
			cur = make([]*Match, len(prev))
			for i := range cur {
				m := b.newMatch(LosersSection, k, i+1)
				m.Sources = [2]Source{WinnerOf(prev[i].ID), LoserOf(feed[i].ID)}
				cur[i] = m
			}
		} else {
			cur = make([]*Match, len(prev)/2)
			for i := range cur {
				m := b.newMatch(LosersSection, k, i+1)
				m.Sources = [2]Source{WinnerOf(prev[2*i].ID), WinnerOf(prev[2*i+1].ID)}
				cur[i] = m
			}
		}
		b.Losers = append(b.Losers, cur)
	}
}

// buildGroups snakes the seeds across groups and schedules each group with the circle method
func (b *Bracket) buildGroups(seeded []Player) {
	count := min(b.Format.Groups, len(seeded)/2)
	count = max(count, 1)

	groups := make([]*Group, count)
	for g := range groups {
		groups[g] = &Group{ID: fmt.Sprintf("g%d", g+1), Name: groupName(g)}
	}
	for i, p := range seeded {
		row, col := i/count, i%count
		if row%2 == 1 {
			col = count - 1 - col
		}
		groups[col].PlayerIDs = append(groups[col].PlayerIDs, p.ID)
	}
	for _, g := range groups {
		g.Matches = b.scheduleGroup(g)
	}
	b.Groups = groups
}

func (b *Bracket) scheduleGroup(g *Group) []*Match {
	ids := slices.Clone(g.PlayerIDs)
	if len(ids)%2 == 1 {
		// uuid.Nil marks the player sitting out the round
		ids = append(ids, uuid.Nil)
	}
	n := len(ids)

	var matches []*Match
	for leg := range b.Format.Legs {
		rotation := slices.Clone(ids)
		for r := range n - 1 {
			round := leg*(n-1) + r + 1
			index := 0
			for i := range n / 2 {
				home, away := rotation[i], rotation[n-1-i]
				if home == uuid.Nil || away == uuid.Nil {
					continue
				}
				if leg == 1 {
					home, away = away, home
				}
				index++
				m := &Match{
					ID:      fmt.Sprintf("%s-r%d-m%d", g.ID, round, index),
					Section: GroupSection,
					Round:   round,
					Index:   index,
					GroupID: g.ID,
					Sources: [2]Source{PlayerSource{PlayerID: home}, PlayerSource{PlayerID: away}},
					Status:  MatchPending,
				}
				m.BestOf = b.bestOfFor(m)
				matches = append(matches, m)
			}

			// First player stays fixed, the rest rotate clockwise
			tail := rotation[n-1]
			copy(rotation[2:], rotation[1:n-1])
			rotation[1] = tail
		}
	}
	return matches
}

func groupName(i int) string {
	if i < 26 {
		return "Group " + string(rune('A'+i))
	}
	return fmt.Sprintf("Group %d", i+1)
}

func last(rounds [][]*Match) *Match {
	final := rounds[len(rounds)-1]
	return final[len(final)-1]
}
