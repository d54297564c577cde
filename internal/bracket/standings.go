package bracket

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

type StandingRow struct {
	PlayerID    uuid.UUID `json:"playerId"`
	Played      int       `json:"played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	MapsWon     int       `json:"mapsWon"`
	MapsLost    int       `json:"mapsLost"`
	MapDiff     int       `json:"mapDiff"`
	Remaining   int       `json:"remaining"`
	MaxPossible int       `json:"maxPossible"`
}

type Qualification struct {
	Guaranteed []uuid.UUID `json:"guaranteed"`
	Contesting []uuid.UUID `json:"contesting"`
}

// ComputeStandings ranks a group by completed matches only:
// wins, then map difference, then maps won, then seed
func ComputeStandings(g *Group, roster Roster) []StandingRow {
	rows := tally(g, roster, false)
	sortRows(rows, roster)
	return rows
}

// ComputeQualification reports who is certain to advance and who is still
// fighting over the last slot. Decided but unsaved results count here.
func ComputeQualification(g *Group, roster Roster, advance int) Qualification {
	rows := tally(g, roster, true)
	sortRows(rows, roster)

	q := Qualification{Guaranteed: []uuid.UUID{}, Contesting: []uuid.UUID{}}
	var open []StandingRow
	for _, p := range rows {
		rank := 1
		for _, other := range rows {
			if other.PlayerID != p.PlayerID && other.MaxPossible >= p.Wins {
				rank++
			}
		}
		if rank <= advance {
			q.Guaranteed = append(q.Guaranteed, p.PlayerID)
		} else {
			open = append(open, p)
		}
	}

	if advance-len(q.Guaranteed) != 1 || len(open) == 0 {
		return q
	}
	leader := open[0]
	for _, p := range open {
		if p.Wins == leader.Wins && p.MapDiff == leader.MapDiff {
			q.Contesting = append(q.Contesting, p.PlayerID)
		}
	}
	return q
}

func tally(g *Group, roster Roster, countDecided bool) []StandingRow {
	rows := make([]StandingRow, len(g.PlayerIDs))
	index := make(map[uuid.UUID]int, len(g.PlayerIDs))
	for i, id := range g.PlayerIDs {
		rows[i].PlayerID = id
		index[id] = i
	}

	for _, m := range g.Matches {
		a, okA := sourcePlayer(m.Sources[0])
		b, okB := sourcePlayer(m.Sources[1])
		ia, inA := index[a]
		ib, inB := index[b]
		if !okA || !okB || !inA || !inB {
			continue
		}

		winner := -1
		switch {
		case m.IsComplete() && m.WinnerID != nil:
			winner = 1
			if *m.WinnerID == a {
				winner = 0
			}
		case countDecided && decisive(m.Scores[0], m.Scores[1], m.Needed()):
			winner = 1
			if m.Scores[0] > m.Scores[1] {
				winner = 0
			}
		}

		if winner < 0 {
			rows[ia].Remaining++
			rows[ib].Remaining++
			continue
		}

		slots := [2]int{ia, ib}
		for slot, i := range slots {
			rows[i].Played++
			rows[i].MapsWon += m.Scores[slot]
			rows[i].MapsLost += m.Scores[1-slot]
			if slot == winner {
				rows[i].Wins++
			} else {
				rows[i].Losses++
			}
		}
	}

	for i := range rows {
		rows[i].MapDiff = rows[i].MapsWon - rows[i].MapsLost
		rows[i].MaxPossible = rows[i].Wins + rows[i].Remaining
	}
	return rows
}

func sortRows(rows []StandingRow, roster Roster) {
	slices.SortStableFunc(rows, func(a, b StandingRow) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MapDiff, a.MapDiff); c != 0 {
			return c
		}
		if c := cmp.Compare(b.MapsWon, a.MapsWon); c != 0 {
			return c
		}
		return cmp.Compare(roster.seedOf(a.PlayerID), roster.seedOf(b.PlayerID))
	})
}

func sourcePlayer(src Source) (uuid.UUID, bool) {
	ps, ok := src.(PlayerSource)
	return ps.PlayerID, ok
}

// GroupsComplete reports whether every group match has a result
func (b *Bracket) GroupsComplete() bool {
	for _, g := range b.Groups {
		for _, m := range g.Matches {
			if !m.IsComplete() {
				return false
			}
		}
	}
	return true
}
