package bracket

import (
	"cmp"
	"slices"
)

type qualifier struct {
	player Player
	place  int
	row    StandingRow
}

// BuildPlayoffs seeds the top finishers of every group into an elimination
// bracket appended to this one. Unless forced, all group matches must be complete.
func (b *Bracket) BuildPlayoffs(roster Roster, force bool) ([]string, error) {
	if len(b.Groups) == 0 {
		return nil, ErrNoGroups
	}
	if len(b.Winners) > 0 || b.Finals != nil {
		return nil, ErrPlayoffsBuilt
	}
	if !force && !b.GroupsComplete() {
		return nil, ErrGroupsIncomplete
	}

	var qualifiers []qualifier
	for _, g := range b.Groups {
		rows := ComputeStandings(g, roster)
		for place, row := range rows[:min(b.Format.AdvancePerGroup, len(rows))] {
			p, ok := roster[row.PlayerID]
			if !ok {
				continue
			}
			qualifiers = append(qualifiers, qualifier{player: *p, place: place, row: row})
		}
	}
	if len(qualifiers) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	// Group winners first, then runners-up, each tier ordered by record
	slices.SortStableFunc(qualifiers, func(a, c qualifier) int {
		if v := cmp.Compare(a.place, c.place); v != 0 {
			return v
		}
		if v := cmp.Compare(c.row.Wins, a.row.Wins); v != 0 {
			return v
		}
		if v := cmp.Compare(c.row.MapDiff, a.row.MapDiff); v != 0 {
			return v
		}
		return cmp.Compare(a.player.Seed, c.player.Seed)
	})

	seeded := make([]Player, len(qualifiers))
	for i, q := range qualifiers {
		seeded[i] = q.player
	}
	b.buildElimination(seeded, b.Format.Playoff == DoubleElimination)

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.Recompute(roster)
}
