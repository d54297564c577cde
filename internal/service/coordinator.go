package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/live"
	"github.com/AdamBeresnev/bracket-engine/internal/middleware"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Broadcaster delivers updates to clients watching a tournament
type Broadcaster interface {
	BroadcastToRoom(room string, message any)
}

const MessageBracketUpdated = "bracket.updated"

// TournamentData is everything a client needs to render a tournament
type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Players    []bracket.Player    `json:"players"`
	Bracket    *bracket.Bracket    `json:"bracket"`
	Vetoes     []*veto.Record      `json:"vetoes"`
	Snapshot   *store.SnapshotInfo `json:"snapshot"`
	Changed    []string            `json:"changed,omitempty"`
}

// session is one tournament loaded for a single operation
type session struct {
	tournament *bracket.Tournament
	players    []bracket.Player
	roster     bracket.Roster
	bracket    *bracket.Bracket
	ledger     *veto.Ledger
	snapshot   *store.SnapshotInfo
	caller     veto.Caller
}

func (s *session) data(changed []string) *TournamentData {
	return &TournamentData{
		Tournament: s.tournament,
		Players:    s.players,
		Bracket:    s.bracket,
		Vetoes:     s.ledger.Records(),
		Snapshot:   s.snapshot,
		Changed:    changed,
	}
}

func (s *session) requireAdmin() error {
	if !s.caller.Admin {
		return ErrForbidden
	}
	return nil
}

// Coordinator serialises every mutation of a tournament. Each one loads the
// snapshot, runs the engine, persists once and then broadcasts.
type Coordinator struct {
	db    *sqlx.DB
	store *store.TournamentStore
	hub   Broadcaster

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewCoordinator(db *sqlx.DB, store *store.TournamentStore, hub Broadcaster) *Coordinator {
	return &Coordinator{db: db, store: store, hub: hub, locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (c *Coordinator) lock(id uuid.UUID) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (c *Coordinator) load(ctx context.Context, id uuid.UUID) (*session, error) {
	s := &session{}
	var records []*veto.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := c.store.GetTournament(gctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
		}
		s.tournament = t
		return err
	})
	g.Go(func() error {
		players, err := c.store.GetPlayers(gctx, id)
		s.players = players
		return err
	})
	g.Go(func() error {
		b, info, err := c.store.GetSnapshot(gctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s has no bracket", ErrTournamentNotFound, id)
		}
		s.bracket, s.snapshot = b, info
		return err
	})
	g.Go(func() error {
		var err error
		records, err = c.store.GetVetoRecords(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.roster = bracket.NewRoster(s.players)
	s.ledger = veto.NewLedger(records...)
	s.caller = callerFor(ctx, s.tournament)
	return s, nil
}

// view loads a tournament for reading. Derived state is recomputed but not stored.
func (c *Coordinator) view(ctx context.Context, id uuid.UUID) (*session, error) {
	s, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.bracket.Recompute(s.roster); err != nil {
		return nil, err
	}
	return s, nil
}

// mutate runs fn against a freshly loaded tournament while holding its lock.
// Nothing is stored when fn fails.
func (c *Coordinator) mutate(ctx context.Context, id uuid.UUID, op string, fn func(s *session) ([]string, error)) (*TournamentData, error) {
	unlock := c.lock(id)
	defer unlock()

	s, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Stored snapshots can predate forfeit or roster changes
	drift, err := s.bracket.Recompute(s.roster)
	if err != nil {
		return nil, err
	}

	changed, err := fn(s)
	if err != nil {
		return nil, err
	}

	if err := c.persist(ctx, s); err != nil {
		return nil, fmt.Errorf("saving tournament %s: %w", id, err)
	}

	slog.Info("tournament updated",
		"tournament_id", id,
		"operation", op,
		"changed", len(changed),
		"drift", len(drift),
		"version", s.snapshot.Version,
	)

	data := s.data(changed)
	c.broadcast(data)
	return data, nil
}

func (c *Coordinator) persist(ctx context.Context, s *session) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := s.tournament.ID
	if err := c.store.UpdatePlayers(ctx, tx, s.players); err != nil {
		return err
	}
	info, err := c.store.SaveSnapshot(ctx, tx, id, s.bracket)
	if err != nil {
		return err
	}
	if err := c.store.ReplaceVetoRecords(ctx, tx, id, s.ledger.Records()); err != nil {
		return err
	}

	status := bracket.TournamentStarted
	if s.bracket.Champion() != nil {
		status = bracket.TournamentCompleted
	}
	if status != s.tournament.Status {
		if err := c.store.UpdateTournamentStatus(ctx, tx, id, status); err != nil {
			return err
		}
		s.tournament.Status = status
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.snapshot = info
	return nil
}

func (c *Coordinator) broadcast(data *TournamentData) {
	if c.hub == nil {
		return
	}
	room := data.Tournament.ID.String()
	c.hub.BroadcastToRoom(room, live.Message{Type: MessageBracketUpdated, Room: room, Payload: data})
}

// callerFor derives who is acting from the request context. The owner administers the tournament.
func callerFor(ctx context.Context, t *bracket.Tournament) veto.Caller {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return veto.Caller{}
	}
	return veto.Caller{Identity: userID.String(), Admin: t != nil && userID == t.OwnerID}
}
