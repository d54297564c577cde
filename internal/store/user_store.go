package store

import (
	"context"
	"database/sql"
	"fmt"

	users "github.com/AdamBeresnev/bracket-engine/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStore persists accounts. Tournaments reference them as owners and
// players link to them through their uid.
type UserStore struct {
	db *sqlx.DB
}

const userColumns = "id, email, username, provider, provider_id, avatar_url, created_at"

const (
	getUserQuery           = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getUserByProviderQuery = "SELECT " + userColumns + " FROM users WHERE provider = ? AND provider_id = ?"
	createUserQuery        = `
		INSERT INTO users (id, email, username, provider, provider_id, avatar_url)
		VALUES (:id, :email, :username, :provider, :provider_id, :avatar_url)
	`
	updateProfileQuery = `
		UPDATE users
		SET username = :username, avatar_url = :avatar_url
		WHERE id = :id
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetUserByProvider finds the account linked to an OAuth identity. Returns sql.ErrNoRows when none is linked.
func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserByProviderQuery, provider, providerID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserQuery, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	if _, err := s.db.NamedExecContext(ctx, createUserQuery, user); err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

// UpdateProfile stores the display name and avatar. Returns sql.ErrNoRows for an unknown user.
func (s *UserStore) UpdateProfile(ctx context.Context, user *users.User) error {
	res, err := s.db.NamedExecContext(ctx, updateProfileQuery, user)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update user %s: %w", user.ID, sql.ErrNoRows)
	}
	return nil
}
