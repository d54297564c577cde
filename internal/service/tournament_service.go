package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/config"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/utils"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/google/uuid"
)

type TournamentService struct {
	*Coordinator
	defaults config.TournamentDefaults
}

func NewTournamentService(c *Coordinator, defaults config.TournamentDefaults) *TournamentService {
	return &TournamentService{Coordinator: c, defaults: defaults}
}

type CreateTournamentInput struct {
	Name    string                `json:"name"`
	Format  *bracket.Format       `json:"format"`
	BestOf  *bracket.BestOfPolicy `json:"bestOf"`
	MapPool []string              `json:"mapPool"`
	Players []PlayerInput         `json:"players"`
	// Alternative to Players, parsed with ParseRoster
	Roster string `json:"roster"`
}

type StandingsData struct {
	Group         *bracket.Group        `json:"group"`
	Rows          []bracket.StandingRow `json:"rows"`
	Qualification bracket.Qualification `json:"qualification"`
}

// CreateTournament seeds the roster, builds the bracket and stores both. The caller owns the result.
func (s *TournamentService) CreateTournament(ctx context.Context, in CreateTournamentInput) (*TournamentData, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}

	inputs := slices.Clone(in.Players)
	if in.Roster != "" {
		parsed, err := ParseRoster(in.Roster)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, parsed...)
	}
	if err := validateRoster(inputs); err != nil {
		return nil, err
	}

	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    name,
		Status:  bracket.TournamentStarted,
		Format:  s.defaults.Format,
		BestOf:  s.defaults.BestOf,
		MapPool: veto.PoolOrDefault(s.defaults.MapPool),
	}
	if in.Format != nil {
		tournament.Format = *in.Format
	}
	if in.BestOf != nil {
		tournament.BestOf = *in.BestOf
	}
	if len(in.MapPool) > 0 {
		tournament.MapPool = veto.PoolOrDefault(in.MapPool)
	}

	players := make([]bracket.Player, len(inputs))
	for i, input := range inputs {
		players[i] = bracket.Player{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			Name:         strings.TrimSpace(input.Name),
			Points:       input.Points,
			Rating:       input.Rating,
			UID:          utils.StringOrNil(input.UID),
		}
	}
	bracket.ApplySeeding(players)

	b, err := bracket.Build(players, tournament.Format, tournament.BestOf)
	if err != nil {
		return nil, err
	}
	tournament.Format = b.Format
	tournament.BestOf = b.Policy

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, err
	}
	if err := s.store.CreatePlayers(ctx, tx, players); err != nil {
		return nil, err
	}
	info, err := s.store.SaveSnapshot(ctx, tx, tournament.ID, b)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &TournamentData{
		Tournament: tournament,
		Players:    players,
		Bracket:    b,
		Vetoes:     []*veto.Record{},
		Snapshot:   info,
	}, nil
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	sess, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.data(nil), nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context) ([]bracket.Tournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetTournamentsByOwner(ctx, userID)
}

// SetForfeit flags or clears a player's withdrawal and reapplies walkovers everywhere
func (s *TournamentService) SetForfeit(ctx context.Context, id, playerID uuid.UUID, forfeit bool) (*TournamentData, error) {
	return s.mutate(ctx, id, "forfeit", func(sess *session) ([]string, error) {
		if err := sess.requireAdmin(); err != nil {
			return nil, err
		}
		p, ok := sess.roster[playerID]
		if !ok {
			return nil, fmt.Errorf("%w: player %s is not in this tournament", ErrInvalidInput, playerID)
		}
		p.Forfeit = forfeit
		return sess.bracket.ApplyForfeitWalkovers(sess.roster)
	})
}

// Reseed recomputes seeds from points and rating. An unplayed bracket is rebuilt
// for the new seeds; a played one needs force and is only marked stale.
func (s *TournamentService) Reseed(ctx context.Context, id uuid.UUID, force bool) (*TournamentData, error) {
	return s.mutate(ctx, id, "reseed", func(sess *session) ([]string, error) {
		if err := sess.requireAdmin(); err != nil {
			return nil, err
		}
		played := sess.bracket.HasRecordedResults()
		if err := bracket.Reseed(sess.players, sess.bracket, force); err != nil {
			return nil, err
		}
		sess.roster = bracket.NewRoster(sess.players)
		if played {
			return nil, nil
		}
		return sess.rebuild()
	})
}

// Reset discards every result and veto and rebuilds the bracket from the current seeds
func (s *TournamentService) Reset(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	return s.mutate(ctx, id, "reset", func(sess *session) ([]string, error) {
		if err := sess.requireAdmin(); err != nil {
			return nil, err
		}
		return sess.rebuild()
	})
}

func (s *TournamentService) BuildPlayoffs(ctx context.Context, id uuid.UUID, force bool) (*TournamentData, error) {
	return s.mutate(ctx, id, "playoffs", func(sess *session) ([]string, error) {
		if err := sess.requireAdmin(); err != nil {
			return nil, err
		}
		return sess.bracket.BuildPlayoffs(sess.roster, force)
	})
}

func (s *TournamentService) Standings(ctx context.Context, id uuid.UUID, groupID string) (*StandingsData, error) {
	sess, err := s.view(ctx, id)
	if err != nil {
		return nil, err
	}
	g, ok := sess.bracket.Group(groupID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGroupNotFound, groupID)
	}
	return &StandingsData{
		Group:         g,
		Rows:          bracket.ComputeStandings(g, sess.roster),
		Qualification: bracket.ComputeQualification(g, sess.roster, sess.bracket.Format.AdvancePerGroup),
	}, nil
}

// rebuild replaces the bracket with a fresh one and drops all veto records
func (sess *session) rebuild() ([]string, error) {
	b, err := bracket.Build(sess.players, sess.tournament.Format, sess.tournament.BestOf)
	if err != nil {
		return nil, err
	}
	sess.bracket = b
	sess.ledger.Clear()

	var changed []string
	for _, m := range b.AllMatches() {
		changed = append(changed, m.ID)
	}
	return changed, nil
}
