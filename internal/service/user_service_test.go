package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateUserByProvider(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserService(database, store.NewUserStore(database))
	ctx := context.Background()

	gothUser := goth.User{Provider: "discord", UserID: "42", Email: "a@example.com", NickName: "alpha"}
	created, err := users.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, "alpha", created.Username)
	assert.Nil(t, created.AvatarURL)

	gothUser.NickName = "alpha2"
	gothUser.AvatarURL = "https://cdn.example.com/a.png"
	again, err := users.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "alpha2", again.Username)
	require.NotNil(t, again.AvatarURL)
	assert.Equal(t, gothUser.AvatarURL, *again.AvatarURL)
}

func TestGuestsOnlyAdministerTheirOwnTournaments(t *testing.T) {
	database := setupTestDB(t)
	users := NewUserService(database, store.NewUserStore(database))
	c := NewCoordinator(database, store.NewTournamentStore(database), &recordingHub{})
	tournaments := NewTournamentService(c, config.DefaultTournamentDefaults())
	ctx := context.Background()

	first, err := users.CreateGuestUser(ctx)
	require.NoError(t, err)
	second, err := users.CreateGuestUser(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.IsGuest())

	firstCtx := middleware.WithUserID(ctx, first.ID)
	secondCtx := middleware.WithUserID(ctx, second.ID)

	data, err := tournaments.CreateTournament(firstCtx, CreateTournamentInput{
		Name:   "Guest Cup",
		Roster: "Alpha, 40\nBravo, 30\nCharlie, 20\nDelta, 10",
	})
	require.NoError(t, err)
	id := data.Tournament.ID
	delta := playerNamed(t, data, "Delta")

	_, err = tournaments.Reset(secondCtx, id)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = tournaments.SetForfeit(secondCtx, id, delta.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := tournaments.SetForfeit(firstCtx, id, delta.ID, true)
	require.NoError(t, err)
	assert.True(t, playerNamed(t, updated, "Delta").Forfeit)
	assert.Equal(t, bracket.TournamentStarted, updated.Tournament.Status)
}
