package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soochol/medsum/internal/db"
	"github.com/soochol/medsum/internal/medsum"
)

var (
	_ UserDB   = (*db.DB)(nil)
	_ ReportDB = (*db.DB)(nil)
)

// UserDB defines the DB-layer methods needed by the persistent user repo.
// *db.DB satisfies this interface.
type UserDB interface {
	CreateUser(ctx context.Context, u *medsum.User) error
	GetUser(ctx context.Context, column, value string) (*medsum.User, error)
}

// PersistentUserRepository reads and writes accounts straight through to
// PostgreSQL. Accounts are not cached so that a key revoked in the database
// stops authenticating immediately.
type PersistentUserRepository struct {
	db UserDB
}

func NewPersistentUserRepository(db UserDB) *PersistentUserRepository {
	return &PersistentUserRepository{db: db}
}

func (r *PersistentUserRepository) Create(ctx context.Context, u *medsum.User) error {
	err := r.db.CreateUser(ctx, u)
	if errors.Is(err, db.ErrUniqueViolation) {
		return fmt.Errorf("%w: user %s", ErrDuplicate, u.Email)
	}
	if err != nil {
		return fmt.Errorf("db create user: %w", err)
	}
	return nil
}

func (r *PersistentUserRepository) GetByID(ctx context.Context, id string) (*medsum.User, error) {
	return r.get(ctx, db.UserColumnID, id)
}

func (r *PersistentUserRepository) GetByEmail(ctx context.Context, email string) (*medsum.User, error) {
	return r.get(ctx, db.UserColumnEmail, email)
}

func (r *PersistentUserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*medsum.User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	return r.get(ctx, db.UserColumnAPIKey, apiKey)
}

func (r *PersistentUserRepository) get(ctx context.Context, column, value string) (*medsum.User, error) {
	u, err := r.db.GetUser(ctx, column, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db get user: %w", err)
	}
	return u, nil
}
