package main

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
)

var badRequestErrors = []error{
	bracket.ErrInvalidScore,
	bracket.ErrParticipantsUnresolved,
	bracket.ErrByeMatch,
	bracket.ErrNotEnoughPlayers,
	bracket.ErrUnsupportedFormat,
	bracket.ErrReseedAfterPlay,
	bracket.ErrNoGroups,
	bracket.ErrGroupsIncomplete,
	bracket.ErrPlayoffsBuilt,
	veto.ErrInvalidAction,
	veto.ErrUnknownMap,
	veto.ErrVetoComplete,
	veto.ErrParticipantsChanged,
	service.ErrInvalidInput,
}

var notFoundErrors = []error{
	bracket.ErrMatchNotFound,
	veto.ErrRecordNotFound,
	service.ErrTournamentNotFound,
	service.ErrGroupNotFound,
	sql.ErrNoRows,
}

// statusFor maps a domain error to the status it is reported with
func statusFor(err error) int {
	switch {
	case veto.IsAuthorization(err), errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case matchesAny(err, badRequestErrors):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. msg is only logged, and only for server errors.
func writeError(w http.ResponseWriter, msg string, err error) {
	switch statusFor(err) {
	case http.StatusForbidden:
		httputil.Forbidden(w, err.Error(), err)
	case http.StatusNotFound:
		httputil.NotFound(w, err.Error(), err)
	case http.StatusBadRequest:
		httputil.BadRequest(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
