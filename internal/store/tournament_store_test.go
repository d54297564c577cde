package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/db"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwnerID = "00000000-0000-0000-0000-000000000001"

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	// Every pooled connection would otherwise get its own empty database
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return database
}

func withTx(t *testing.T, database *sqlx.DB, fn func(tx *sqlx.Tx) error) {
	t.Helper()
	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	if err := fn(tx); err != nil {
		tx.Rollback()
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

func seedTournament(t *testing.T, database *sqlx.DB, store *TournamentStore) (*bracket.Tournament, []bracket.Player) {
	t.Helper()
	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: uuid.MustParse(testOwnerID),
		Name:    "Test Tournament",
		Status:  bracket.TournamentStarted,
		Format:  bracket.Format{Kind: bracket.DoubleElimination},
		BestOf:  bracket.DefaultBestOfPolicy(),
		MapPool: bracket.MapPool{"Nuke", "Mirage", "Inferno"},
	}
	players := []bracket.Player{
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Player 1", Seed: 1, Points: 30, UID: utils.StringOrNil("u1")},
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Player 2", Seed: 2, Points: 20},
		{ID: uuid.New(), TournamentID: tournament.ID, Name: "Player 3", Seed: 3, Points: 10, Rating: 1500},
	}
	withTx(t, database, func(tx *sqlx.Tx) error {
		if err := store.CreateTournament(context.Background(), tx, tournament); err != nil {
			return err
		}
		return store.CreatePlayers(context.Background(), tx, players)
	})
	return tournament, players
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	tournament, _ := seedTournament(t, database, store)

	fetched, err := store.GetTournament(context.Background(), tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.OwnerID, fetched.OwnerID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.Equal(t, tournament.Format, fetched.Format)
	assert.Equal(t, tournament.BestOf, fetched.BestOf)
	assert.Equal(t, tournament.MapPool, fetched.MapPool)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)

	owned, err := store.GetTournamentsByOwner(context.Background(), tournament.OwnerID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	_, err = store.GetTournament(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPlayers(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	tournament, players := seedTournament(t, database, store)

	fetched, err := store.GetPlayers(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	assert.Equal(t, players[0].ID, fetched[0].ID)
	assert.Equal(t, "u1", *fetched[0].UID)
	assert.Nil(t, fetched[1].UID)
	assert.Equal(t, 1500, fetched[2].Rating)

	fetched[0].Forfeit = true
	fetched[1].Seed, fetched[2].Seed = 3, 2
	withTx(t, database, func(tx *sqlx.Tx) error {
		return store.UpdatePlayers(context.Background(), tx, fetched)
	})

	updated, err := store.GetPlayers(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.True(t, updated[0].Forfeit)
	assert.Equal(t, players[2].ID, updated[1].ID)

	stranger := bracket.Player{ID: uuid.New(), TournamentID: tournament.ID, Name: "Nobody"}
	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	assert.Error(t, store.UpdatePlayers(context.Background(), tx, []bracket.Player{stranger}))
	require.NoError(t, tx.Rollback())
}

func TestSnapshotVersioning(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	tournament, players := seedTournament(t, database, store)
	roster := bracket.NewRoster(players)

	b, err := bracket.Build(players, tournament.Format, tournament.BestOf)
	require.NoError(t, err)

	save := func() *SnapshotInfo {
		var info *SnapshotInfo
		withTx(t, database, func(tx *sqlx.Tx) error {
			var err error
			info, err = store.SaveSnapshot(context.Background(), tx, tournament.ID, b)
			return err
		})
		return info
	}

	first := save()
	assert.Equal(t, 1, first.Version)
	assert.Len(t, first.Digest, 64)

	// Saving identical content keeps the version
	assert.Equal(t, 1, save().Version)

	_, err = b.UpdateMatchScore(roster, "w1-2", "1", "", false)
	require.NoError(t, err)
	second := save()
	assert.Equal(t, 2, second.Version)
	assert.NotEqual(t, first.Digest, second.Digest)

	loaded, info, err := store.GetSnapshot(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, b, loaded)
	assert.Equal(t, second.Digest, info.Digest)
	assert.Equal(t, 2, info.Version)

	_, err = database.Exec("UPDATE bracket_snapshots SET digest = 'tampered' WHERE tournament_id = ?", tournament.ID)
	require.NoError(t, err)
	_, _, err = store.GetSnapshot(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, bracket.ErrInvalidStructure)
}

func TestVetoRecords(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	tournament, players := seedTournament(t, database, store)
	roster := bracket.NewRoster(players)

	b, err := bracket.Build(players, bracket.Format{Kind: bracket.SingleElimination}, bracket.UniformBestOf(3))
	require.NoError(t, err)

	ledger := veto.NewLedger()
	_, err = ledger.Open(b, roster, "w1-2", tournament.MapPool)
	require.NoError(t, err)
	_, err = ledger.Apply(b, roster, "w1-2", "nuke", veto.Caller{Admin: true})
	require.NoError(t, err)

	withTx(t, database, func(tx *sqlx.Tx) error {
		return store.ReplaceVetoRecords(context.Background(), tx, tournament.ID, ledger.Records())
	})

	records, err := store.GetVetoRecords(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	stored, _ := ledger.Get("w1-2")
	assert.Equal(t, stored, records[0])

	// Replacing with an empty set removes deleted records
	withTx(t, database, func(tx *sqlx.Tx) error {
		return store.ReplaceVetoRecords(context.Background(), tx, tournament.ID, nil)
	})
	records, err = store.GetVetoRecords(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}
