package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mumbaitrails/trails_core/internal/models"
)

// GuestEmail is the well-known address the shared guest account lives
// under. Anonymous itinerary builds all attach to this single row.
const GuestEmail = "guest@mumbai-trails.local"

// UserStore is the PostgreSQL-backed user repository
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a user store on a connection pool
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// FindByID returns a user by id
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, role, created_at
		FROM app_user
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// FindByEmail returns a user by email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, role, created_at
		FROM app_user
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// UpsertGuest returns the shared guest account, creating it on first
// use. The no-op DO UPDATE makes RETURNING yield the existing row when
// the guest already exists.
func (s *UserStore) UpsertGuest(ctx context.Context) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO app_user (id, email, password_hash, name, role)
		VALUES ($1, $2, 'guest', 'Guest', 'USER')
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, name, role, created_at
	`, uuid.NewString(), GuestEmail).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert guest user: %w", err)
	}
	return &u, nil
}
