package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/codec"
	"github.com/AdamBeresnev/bracket-engine/internal/veto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// SnapshotInfo describes the stored bracket without its payload
type SnapshotInfo struct {
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`
	Digest       string    `db:"digest" json:"digest"`
	Version      int       `db:"version" json:"version"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type snapshotRow struct {
	SnapshotInfo
	Data []byte `db:"data"`
}

type vetoRow struct {
	MatchID string `db:"match_id"`
	Data    []byte `db:"data"`
}

const (
	upsertSnapshotQuery = `
		INSERT INTO bracket_snapshots (tournament_id, data, digest) VALUES (?, ?, ?)
		ON CONFLICT (tournament_id) DO UPDATE SET
			data = excluded.data,
			version = CASE WHEN bracket_snapshots.digest = excluded.digest
				THEN bracket_snapshots.version ELSE bracket_snapshots.version + 1 END,
			digest = excluded.digest,
			updated_at = CURRENT_TIMESTAMP
		RETURNING version
	`
	updatePlayerQuery = `
		UPDATE players SET
		name = :name,
		seed = :seed,
		points = :points,
		rating = :rating,
		forfeit = :forfeit,
		uid = :uid
		WHERE id = :id AND tournament_id = :tournament_id
	`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, owner_id, name, status, format, best_of, map_pool)
        VALUES (:id, :owner_id, :name, :status, :format, :best_of, :map_pool)`, tournament)
	return err
}

func (s *TournamentStore) CreatePlayers(ctx context.Context, tx *sqlx.Tx, players []bracket.Player) error {
	if len(players) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (id, tournament_id, name, seed, points, rating, forfeit, uid)
            VALUES (:id, :tournament_id, :name, :seed, :points, :rating, :forfeit, :uid)`, players)
	return err
}

func (s *TournamentStore) UpdatePlayers(ctx context.Context, tx *sqlx.Tx, players []bracket.Player) error {
	for _, p := range players {
		res, err := tx.NamedExecContext(ctx, updatePlayerQuery, p)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("player %s not found in tournament %s", p.ID, p.TournamentID)
		}
	}
	return nil
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return tournaments, err
}

func (s *TournamentStore) GetPlayers(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Player, error) {
	var players []bracket.Player
	err := s.db.SelectContext(ctx, &players, "SELECT * FROM players WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return players, err
}

// SaveSnapshot stores the encoded bracket. The version only moves when the content changes.
func (s *TournamentStore) SaveSnapshot(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, b *bracket.Bracket) (*SnapshotInfo, error) {
	data, digest, err := codec.MarshalDigest(b)
	if err != nil {
		return nil, fmt.Errorf("encoding bracket: %w", err)
	}

	info := &SnapshotInfo{TournamentID: tournamentID, Digest: digest, UpdatedAt: time.Now().UTC()}
	if err := tx.GetContext(ctx, &info.Version, upsertSnapshotQuery, tournamentID, data, digest); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *TournamentStore) GetSnapshot(ctx context.Context, tournamentID uuid.UUID) (*bracket.Bracket, *SnapshotInfo, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM bracket_snapshots WHERE tournament_id = ?", tournamentID)
	if err != nil {
		return nil, nil, err
	}

	if digest := codec.Digest(row.Data); digest != row.Digest {
		return nil, nil, fmt.Errorf("%w: snapshot digest mismatch for tournament %s", bracket.ErrInvalidStructure, tournamentID)
	}
	var b bracket.Bracket
	if err := codec.Unmarshal(row.Data, &b); err != nil {
		return nil, nil, fmt.Errorf("decoding bracket: %w", err)
	}
	return &b, &row.SnapshotInfo, nil
}

// ReplaceVetoRecords makes the stored records exactly match records
func (s *TournamentStore) ReplaceVetoRecords(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, records []*veto.Record) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM veto_records WHERE tournament_id = ?", tournamentID); err != nil {
		return err
	}
	for _, r := range records {
		data, err := codec.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding veto record %s: %w", r.MatchID, err)
		}
		_, err = tx.ExecContext(ctx, "INSERT INTO veto_records (tournament_id, match_id, data) VALUES (?, ?, ?)", tournamentID, r.MatchID, data)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) GetVetoRecords(ctx context.Context, tournamentID uuid.UUID) ([]*veto.Record, error) {
	var rows []vetoRow
	err := s.db.SelectContext(ctx, &rows, "SELECT match_id, data FROM veto_records WHERE tournament_id = ? ORDER BY match_id", tournamentID)
	if err != nil {
		return nil, err
	}

	records := make([]*veto.Record, 0, len(rows))
	for _, row := range rows {
		var r veto.Record
		if err := codec.Unmarshal(row.Data, &r); err != nil {
			return nil, fmt.Errorf("decoding veto record %s: %w", row.MatchID, err)
		}
		records = append(records, &r)
	}
	return records, nil
}
