package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid score", err: fmt.Errorf("%w: 3-3", bracket.ErrInvalidScore), want: http.StatusBadRequest},
		{name: "veto finished", err: veto.ErrVetoComplete, want: http.StatusBadRequest},
		{name: "bad body", err: service.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "wrong turn", err: veto.ErrNotYourTurn, want: http.StatusForbidden},
		{name: "not a participant", err: veto.ErrNotParticipant, want: http.StatusForbidden},
		{name: "not the owner", err: service.ErrForbidden, want: http.StatusForbidden},
		{name: "unknown match", err: fmt.Errorf("%w: w9-1", bracket.ErrMatchNotFound), want: http.StatusNotFound},
		{name: "unknown tournament", err: service.ErrTournamentNotFound, want: http.StatusNotFound},
		{name: "missing row", err: fmt.Errorf("loading: %w", sql.ErrNoRows), want: http.StatusNotFound},
		{name: "anything else", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(tc.err))
		})
	}
}
