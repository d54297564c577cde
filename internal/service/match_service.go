package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/google/uuid"
)

type MatchService struct {
	*Coordinator
}

func NewMatchService(c *Coordinator) *MatchService {
	return &MatchService{Coordinator: c}
}

// ScoreValue is a raw score cell. JSON numbers and strings such as "W" are both accepted.
type ScoreValue string

func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ScoreValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: score must be a number or string", ErrInvalidInput)
	}
	*v = ScoreValue(n.String())
	return nil
}

type ScoreInput struct {
	ScoreA   ScoreValue `json:"scoreA"`
	ScoreB   ScoreValue `json:"scoreB"`
	Finalize bool       `json:"finalize"`
}

// UpdateMatchScore records a result entered by the owner or one of the match's players
func (s *MatchService) UpdateMatchScore(ctx context.Context, id uuid.UUID, matchID string, in ScoreInput) (*TournamentData, error) {
	return s.mutate(ctx, id, "score", func(sess *session) ([]string, error) {
		if err := sess.authorizeMatch(matchID); err != nil {
			return nil, err
		}
		return sess.bracket.UpdateMatchScore(sess.roster, matchID, string(in.ScoreA), string(in.ScoreB), in.Finalize)
	})
}

// OpenVeto starts the map veto of a match using the tournament's pool
func (s *MatchService) OpenVeto(ctx context.Context, id uuid.UUID, matchID string) (*TournamentData, error) {
	return s.mutate(ctx, id, "veto.open", func(sess *session) ([]string, error) {
		if err := sess.authorizeMatch(matchID); err != nil {
			return nil, err
		}
		_, err := sess.ledger.Open(sess.bracket, sess.roster, matchID, sess.tournament.MapPool)
		return nil, err
	})
}

func (s *MatchService) ApplyVeto(ctx context.Context, id uuid.UUID, matchID, mapName string) (*TournamentData, error) {
	return s.mutate(ctx, id, "veto.action", func(sess *session) ([]string, error) {
		_, err := sess.ledger.Apply(sess.bracket, sess.roster, matchID, mapName, sess.caller)
		return nil, err
	})
}

func (s *MatchService) ResetVeto(ctx context.Context, id uuid.UUID, matchID string) (*TournamentData, error) {
	return s.mutate(ctx, id, "veto.reset", func(sess *session) ([]string, error) {
		if err := sess.requireAdmin(); err != nil {
			return nil, err
		}
		_, err := sess.ledger.Reset(matchID)
		return nil, err
	})
}

// RecordMapResult stores who won one map of the series and updates the match score to match
func (s *MatchService) RecordMapResult(ctx context.Context, id uuid.UUID, matchID string, index int, winner bracket.Side) (*TournamentData, error) {
	return s.mutate(ctx, id, "veto.map_result", func(sess *session) ([]string, error) {
		_, changed, err := sess.ledger.RecordMapResult(sess.bracket, sess.roster, matchID, index, winner, sess.caller)
		return changed, err
	})
}

// authorizeMatch admits the owner and the players currently in the match
func (sess *session) authorizeMatch(matchID string) error {
	if sess.caller.Admin {
		return nil
	}
	m, ok := sess.bracket.Match(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, matchID)
	}
	if sess.caller.Identity == "" {
		return ErrForbidden
	}
	for _, p := range bracket.ResolveParticipants(m, sess.bracket.Lookup(), sess.roster) {
		if p != nil && utils.OrZero(p.UID) == sess.caller.Identity {
			return nil
		}
	}
	return ErrForbidden
}
