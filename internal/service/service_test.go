package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/live"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return database
}

type recordingHub struct {
	mu       sync.Mutex
	messages []live.Message
}

func (h *recordingHub) BroadcastToRoom(room string, message any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, message.(live.Message))
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *recordingHub) last() live.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.messages[len(h.messages)-1]
}

type fixture struct {
	tournaments *TournamentService
	matches     *MatchService
	hub         *recordingHub

	owner  context.Context
	alpha  context.Context
	bravo  context.Context
	guest  context.Context
	userID map[string]uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := setupTestDB(t)
	hub := &recordingHub{}
	c := NewCoordinator(database, store.NewTournamentStore(database), hub)

	f := &fixture{
		tournaments: NewTournamentService(c, config.DefaultTournamentDefaults()),
		matches:     NewMatchService(c),
		hub:         hub,
		guest:       context.Background(),
		userID: map[string]uuid.UUID{
			"owner": uuid.New(),
			"alpha": uuid.New(),
			"bravo": uuid.New(),
		},
	}
	f.owner = middleware.WithUserID(context.Background(), f.userID["owner"])
	f.alpha = middleware.WithUserID(context.Background(), f.userID["alpha"])
	f.bravo = middleware.WithUserID(context.Background(), f.userID["bravo"])
	return f
}

// create makes a four player tournament seeded Alpha, Bravo, Charlie, Delta
func (f *fixture) create(t *testing.T, format bracket.Format, bestOf int, pool []string) *TournamentData {
	t.Helper()
	policy := bracket.UniformBestOf(bestOf)
	data, err := f.tournaments.CreateTournament(f.owner, CreateTournamentInput{
		Name:    "Spring Cup",
		Format:  &format,
		BestOf:  &policy,
		MapPool: pool,
		Players: []PlayerInput{
			{Name: "Charlie", Points: 20},
			{Name: "Alpha", Points: 40, UID: f.userID["alpha"].String()},
			{Name: "Delta", Points: 10},
			{Name: "Bravo", Points: 30, UID: f.userID["bravo"].String()},
		},
	})
	require.NoError(t, err)
	return data
}

func matchOf(t *testing.T, data *TournamentData, id string) *bracket.Match {
	t.Helper()
	m, ok := data.Bracket.Match(id)
	require.True(t, ok, "match %s", id)
	return m
}

func playerNamed(t *testing.T, data *TournamentData, name string) bracket.Player {
	t.Helper()
	for _, p := range data.Players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no player %s", name)
	return bracket.Player{}
}
