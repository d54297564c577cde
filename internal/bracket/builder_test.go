package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstRoundPlayers(b *Bracket) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, m := range b.Winners[0] {
		for _, src := range m.Sources {
			if ps, ok := src.(PlayerSource); ok {
				counts[ps.PlayerID]++
			}
		}
	}
	return counts
}

func TestBuildSingleElimination(t *testing.T) {
	b, players, _ := buildBracket(t, 5, Format{Kind: SingleElimination}, UniformBestOf(3))

	require.Len(t, b.Winners, 3)
	assert.Len(t, b.Winners[0], 4)
	assert.Len(t, b.Winners[1], 2)
	assert.Len(t, b.Winners[2], 1)
	assert.Empty(t, b.Losers)
	require.NotNil(t, b.Finals)
	assert.Len(t, b.AllMatches(), 8)

	// 1v8(bye), 4v5, 2v7(bye), 3v6(bye)
	byeWinners := map[string]Player{"w1-1": players[0], "w1-3": players[1], "w1-4": players[2]}
	for matchID, winner := range byeWinners {
		m := mustMatch(t, b, matchID)
		assert.True(t, m.IsComplete(), matchID)
		assert.True(t, m.IsWinner(winner.ID), matchID)
		assert.Nil(t, m.LoserID, matchID)
		assert.Equal(t, SideB, m.Walkover, matchID)
		assert.Equal(t, [2]int{0, 0}, m.Scores, matchID)
	}

	played := mustMatch(t, b, "w1-2")
	assert.Equal(t, MatchPending, played.Status)
	assert.Equal(t, PlayerSource{PlayerID: players[3].ID}, played.Sources[0])
	assert.Equal(t, PlayerSource{PlayerID: players[4].ID}, played.Sources[1])

	semi := mustMatch(t, b, "w2-2")
	assert.Equal(t, [2]*uuid.UUID{&players[1].ID, &players[2].ID}, semi.Entrants)
	assert.Equal(t, MatchPending, semi.Status)

	assert.Equal(t, WinnerOf("w3-1"), b.Finals.Sources[0])
	assert.Nil(t, b.Finals.Sources[1])
	assert.Equal(t, MatchPending, b.Finals.Status)

	counts := firstRoundPlayers(b)
	assert.Len(t, counts, 5)
	for _, p := range players {
		assert.Equal(t, 1, counts[p.ID], p.Name)
	}
}

func TestBuildDoubleElimination(t *testing.T) {
	b, _, _ := buildBracket(t, 8, Format{Kind: DoubleElimination}, UniformBestOf(3))

	require.Len(t, b.Winners, 3)
	require.Len(t, b.Losers, 4)
	assert.Len(t, b.Losers[0], 2)
	assert.Len(t, b.Losers[1], 2)
	assert.Len(t, b.Losers[2], 1)
	assert.Len(t, b.Losers[3], 1)
	assert.Len(t, b.AllMatches(), 14)

	l1 := mustMatch(t, b, "l1-2")
	assert.Equal(t, [2]Source{LoserOf("w1-3"), LoserOf("w1-4")}, l1.Sources)

	l2 := mustMatch(t, b, "l2-1")
	assert.Equal(t, [2]Source{WinnerOf("l1-1"), LoserOf("w2-1")}, l2.Sources)

	l3 := mustMatch(t, b, "l3-1")
	assert.Equal(t, [2]Source{WinnerOf("l2-1"), WinnerOf("l2-2")}, l3.Sources)

	l4 := mustMatch(t, b, "l4-1")
	assert.Equal(t, [2]Source{WinnerOf("l3-1"), LoserOf("w3-1")}, l4.Sources)

	assert.Equal(t, [2]Source{WinnerOf("w3-1"), WinnerOf("l4-1")}, b.Finals.Sources)

	for _, m := range b.AllMatches() {
		assert.Equal(t, MatchPending, m.Status, m.ID)
	}
}

func TestBuildDoubleEliminationByes(t *testing.T) {
	b, _, roster := buildBracket(t, 5, Format{Kind: DoubleElimination}, UniformBestOf(3))

	for _, matchID := range []string{"l1-1", "l2-2"} {
		bye, err := b.IsBye(matchID)
		require.NoError(t, err)
		assert.True(t, bye, matchID)
	}
	for _, matchID := range []string{"l2-1", "l3-1", "l4-1", "f"} {
		bye, err := b.IsBye(matchID)
		require.NoError(t, err)
		assert.False(t, bye, matchID)
	}

	// Both feeders are byes, so nobody ever reaches this match
	void := mustMatch(t, b, "l1-2")
	assert.Equal(t, MatchPending, void.Status)

	// The losers bye resolves once its one live feeder finishes
	_, err := b.UpdateMatchScore(roster, "w1-2", "2", "1", true)
	require.NoError(t, err)
	l11 := mustMatch(t, b, "l1-1")
	require.True(t, l11.IsComplete())
	assert.Equal(t, mustMatch(t, b, "w1-2").LoserID, l11.WinnerID)
	assert.Equal(t, SideA, l11.Walkover)
}

func TestBuildMinimumSizes(t *testing.T) {
	b, players, _ := buildBracket(t, 2, Format{Kind: SingleElimination}, UniformBestOf(1))
	require.Len(t, b.Winners, 2)
	assert.Len(t, b.Winners[0], 2)

	// Two players with four slots meet in the winners final
	final := mustMatch(t, b, "w2-1")
	assert.Equal(t, [2]*uuid.UUID{&players[0].ID, &players[1].ID}, final.Entrants)

	_, err := Build(nil, Format{Kind: SingleElimination}, UniformBestOf(1))
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	_, err = Build(makePlayers(4), Format{Kind: "swiss"}, UniformBestOf(1))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestBuildBestOfTiers(t *testing.T) {
	policy := BestOfPolicy{Final: 5, Semi: 3, Quarter: 3, Earlier: 1, LosersFinal: 3, LosersSemi: 1, LosersEarlier: 1, Group: 1}

	single, _, _ := buildBracket(t, 16, Format{Kind: SingleElimination}, policy)
	assert.Equal(t, 1, mustMatch(t, single, "w1-1").BestOf)
	assert.Equal(t, 3, mustMatch(t, single, "w2-1").BestOf)
	assert.Equal(t, 3, mustMatch(t, single, "w3-1").BestOf)
	assert.Equal(t, 5, mustMatch(t, single, "w4-1").BestOf)

	double, _, _ := buildBracket(t, 8, Format{Kind: DoubleElimination}, policy)
	assert.Equal(t, 5, double.Finals.BestOf)
	assert.Equal(t, 3, mustMatch(t, double, "w3-1").BestOf)
	assert.Equal(t, 3, mustMatch(t, double, "w2-1").BestOf)
	assert.Equal(t, 1, mustMatch(t, double, "w1-1").BestOf)
	assert.Equal(t, 3, mustMatch(t, double, "l4-1").BestOf)
	assert.Equal(t, 1, mustMatch(t, double, "l3-1").BestOf)
	assert.Equal(t, 1, mustMatch(t, double, "l1-1").BestOf)
}

func TestBuildRoundRobin(t *testing.T) {
	b, players, _ := buildBracket(t, 8, Format{Kind: RoundRobin, Groups: 2, AdvancePerGroup: 2}, UniformBestOf(1))

	require.Len(t, b.Groups, 2)
	assert.Empty(t, b.Winners)
	assert.Nil(t, b.Finals)

	seedIDs := func(seeds ...int) []uuid.UUID {
		ids := make([]uuid.UUID, len(seeds))
		for i, s := range seeds {
			ids[i] = players[s-1].ID
		}
		return ids
	}
	assert.Equal(t, seedIDs(1, 4, 5, 8), b.Groups[0].PlayerIDs)
	assert.Equal(t, seedIDs(2, 3, 6, 7), b.Groups[1].PlayerIDs)
	assert.Equal(t, "Group A", b.Groups[0].Name)

	for _, g := range b.Groups {
		assert.Len(t, g.Matches, 6)
		pairs := make(map[[2]uuid.UUID]int)
		for _, m := range g.Matches {
			a, _ := sourcePlayer(m.Sources[0])
			c, _ := sourcePlayer(m.Sources[1])
			assert.NotEqual(t, a, c)
			if a.String() > c.String() {
				a, c = c, a
			}
			pairs[[2]uuid.UUID{a, c}]++
			assert.Equal(t, g.ID, m.GroupID)
		}
		assert.Len(t, pairs, 6)
		for pair, n := range pairs {
			assert.Equal(t, 1, n, "%v", pair)
		}
	}
}

func TestBuildRoundRobinTwoLegsOddGroup(t *testing.T) {
	b, _, _ := buildBracket(t, 5, Format{Kind: RoundRobin, Groups: 1, Legs: 2}, UniformBestOf(1))

	require.Len(t, b.Groups, 1)
	g := b.Groups[0]
	assert.Len(t, g.Matches, 20)

	home := make(map[[2]uuid.UUID]int)
	rounds := make(map[int]map[uuid.UUID]bool)
	for _, m := range g.Matches {
		a, _ := sourcePlayer(m.Sources[0])
		c, _ := sourcePlayer(m.Sources[1])
		home[[2]uuid.UUID{a, c}]++

		if rounds[m.Round] == nil {
			rounds[m.Round] = make(map[uuid.UUID]bool)
		}
		assert.False(t, rounds[m.Round][a], "player twice in round %d", m.Round)
		assert.False(t, rounds[m.Round][c], "player twice in round %d", m.Round)
		rounds[m.Round][a] = true
		rounds[m.Round][c] = true
	}
	assert.Len(t, rounds, 10)
	// Every ordered pairing appears once, so each leg swaps home and away
	assert.Len(t, home, 20)
}

func TestValidateRejectsBrokenStructure(t *testing.T) {
	b, _, _ := buildBracket(t, 4, Format{Kind: SingleElimination}, UniformBestOf(1))

	mustMatch(t, b, "w2-1").Sources[1] = WinnerOf("w9-9")
	assert.ErrorIs(t, b.Validate(), ErrInvalidStructure)

	// w1-1 now feeds on the match it feeds into
	b, _, _ = buildBracket(t, 4, Format{Kind: SingleElimination}, UniformBestOf(1))
	mustMatch(t, b, "w1-1").Sources[0] = WinnerOf("w2-1")
	assert.ErrorIs(t, b.Validate(), ErrInvalidStructure)
}
