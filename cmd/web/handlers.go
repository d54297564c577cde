package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/httputil"
	"github.com/AdamBeresnev/bracket-engine/internal/live"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "decoding request", fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func (a *app) respond(w http.ResponseWriter, msg string, data any, err error) {
	if err != nil {
		writeError(w, msg, err)
		return
	}
	httputil.JSON(w, http.StatusOK, data)
}

func (a *app) getMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if user == nil {
		httputil.Unauthorized(w, "sign in required")
		return
	}
	httputil.JSON(w, http.StatusOK, user)
}

func (a *app) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := a.tournaments.GetTournamentsForUser(r.Context())
	if tournaments == nil {
		tournaments = []bracket.Tournament{}
	}
	a.respond(w, "Failed to get tournaments", tournaments, err)
}

func (a *app) createTournament(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTournamentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	data, err := a.tournaments.CreateTournament(r.Context(), in)
	if err != nil {
		writeError(w, "Failed to create tournament", err)
		return
	}
	w.Header().Set("Location", "/tournaments/"+data.Tournament.ID.String())
	httputil.JSON(w, http.StatusCreated, data)
}

func (a *app) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := a.tournaments.GetTournamentData(r.Context(), id)
	a.respond(w, "Failed to get tournament", data, err)
}

func (a *app) getStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := a.tournaments.Standings(r.Context(), id, chi.URLParam(r, "groupID"))
	a.respond(w, "Failed to compute standings", data, err)
}

func (a *app) setForfeit(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	playerID, ok := uuidParam(w, r, "playerID")
	if !ok {
		return
	}
	body := struct {
		Forfeit bool `json:"forfeit"`
	}{Forfeit: true}
	if !decodeJSON(w, r, &body) {
		return
	}
	data, err := a.tournaments.SetForfeit(r.Context(), id, playerID, body.Forfeit)
	a.respond(w, "Failed to update forfeit", data, err)
}

type forceBody struct {
	Force bool `json:"force"`
}

func (a *app) reseed(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body forceBody
	if !decodeJSON(w, r, &body) {
		return
	}
	data, err := a.tournaments.Reseed(r.Context(), id, body.Force)
	a.respond(w, "Failed to reseed", data, err)
}

func (a *app) reset(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := a.tournaments.Reset(r.Context(), id)
	a.respond(w, "Failed to reset tournament", data, err)
}

func (a *app) buildPlayoffs(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body forceBody
	if !decodeJSON(w, r, &body) {
		return
	}
	data, err := a.tournaments.BuildPlayoffs(r.Context(), id, body.Force)
	a.respond(w, "Failed to build playoffs", data, err)
}

func (a *app) updateScore(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var in service.ScoreInput
	if !decodeJSON(w, r, &in) {
		return
	}
	data, err := a.matches.UpdateMatchScore(r.Context(), id, chi.URLParam(r, "matchID"), in)
	a.respond(w, "Failed to update score", data, err)
}

func (a *app) openVeto(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := a.matches.OpenVeto(r.Context(), id, chi.URLParam(r, "matchID"))
	a.respond(w, "Failed to open veto", data, err)
}

func (a *app) applyVeto(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Map string `json:"map"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	data, err := a.matches.ApplyVeto(r.Context(), id, chi.URLParam(r, "matchID"), body.Map)
	a.respond(w, "Failed to apply veto", data, err)
}

func (a *app) resetVeto(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	data, err := a.matches.ResetVeto(r.Context(), id, chi.URLParam(r, "matchID"))
	a.respond(w, "Failed to reset veto", data, err)
}

func (a *app) recordMapResult(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.BadRequest(w, "Invalid map index", err)
		return
	}
	var body struct {
		Winner bracket.Side `json:"winner"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	data, err := a.matches.RecordMapResult(r.Context(), id, chi.URLParam(r, "matchID"), index, body.Winner)
	a.respond(w, "Failed to record map result", data, err)
}

// serveLive streams bracket updates. The client joins the room before the
// current snapshot is loaded, so an update in between is never missed.
func (a *app) serveLive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := a.tournaments.GetTournamentData(r.Context(), id); err != nil {
		writeError(w, "Failed to load tournament", err)
		return
	}
	room := id.String()
	live.ServeWS(a.hub, w, r, room, func() (any, error) {
		data, err := a.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return live.Message{Type: service.MessageBracketUpdated, Room: room, Payload: data}, nil
	})
}
