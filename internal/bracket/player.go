package bracket

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Player struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
	Points       int       `db:"points" json:"points"`
	Rating       int       `db:"rating" json:"rating"`
	Forfeit      bool      `db:"forfeit" json:"forfeit"`
	// External identity that may act for this player during map veto and score entry
	UID *string `db:"uid" json:"uid,omitempty"`
}

// Roster indexes the tournament's players by id
type Roster map[uuid.UUID]*Player

func NewRoster(players []Player) Roster {
	roster := make(Roster, len(players))
	for i := range players {
		roster[players[i].ID] = &players[i]
	}
	return roster
}

func (r Roster) Get(id *uuid.UUID) *Player {
	if id == nil {
		return nil
	}
	return r[*id]
}

// BySeed returns the roster ordered by seed, ties broken by name
func (r Roster) BySeed() []Player {
	players := make([]Player, 0, len(r))
	for _, p := range r {
		players = append(players, *p)
	}
	slices.SortFunc(players, func(a, b Player) int {
		if c := cmp.Compare(a.Seed, b.Seed); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return players
}

// seedOf treats unknown players as the weakest possible seed
func (r Roster) seedOf(id uuid.UUID) int {
	if p, ok := r[id]; ok {
		return p.Seed
	}
	return int(^uint(0) >> 1)
}
