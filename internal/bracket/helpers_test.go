package bracket

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// makePlayers returns n players already seeded 1..n
func makePlayers(n int) []Player {
	players := make([]Player, n)
	for i := range players {
		uid := fmt.Sprintf("u%d", i+1)
		players[i] = Player{
			ID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte(uid)),
			Name:   fmt.Sprintf("Player %d", i+1),
			Seed:   i + 1,
			Points: 100 - i,
			UID:    &uid,
		}
	}
	return players
}

func buildBracket(t *testing.T, n int, format Format, policy BestOfPolicy) (*Bracket, []Player, Roster) {
	t.Helper()
	players := makePlayers(n)
	b, err := Build(players, format, policy)
	require.NoError(t, err)
	return b, players, NewRoster(players)
}

func mustMatch(t *testing.T, b *Bracket, id string) *Match {
	t.Helper()
	m, ok := b.Match(id)
	require.True(t, ok, "match %s not found", id)
	return m
}

// findGroupMatch returns the group match between two players and the slot of the first
func findGroupMatch(t *testing.T, g *Group, a, b uuid.UUID) (*Match, int) {
	t.Helper()
	for _, m := range g.Matches {
		pa, _ := sourcePlayer(m.Sources[0])
		pb, _ := sourcePlayer(m.Sources[1])
		if pa == a && pb == b {
			return m, 0
		}
		if pa == b && pb == a {
			return m, 1
		}
	}
	t.Fatalf("no match between %s and %s", a, b)
	return nil, 0
}
