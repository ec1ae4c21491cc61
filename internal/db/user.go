package db

import (
	"context"
	"fmt"

	"github.com/soochol/medsum/internal/medsum"
)

// Columns that GetUser may look up by.
const (
	UserColumnID     = "id"
	UserColumnEmail  = "email"
	UserColumnAPIKey = "api_key"
)

var userLookupQueries = map[string]string{
	UserColumnID:     `SELECT id, name, email, password_hash, api_key, created_at FROM users WHERE id = $1`,
	UserColumnEmail:  `SELECT id, name, email, password_hash, api_key, created_at FROM users WHERE email = $1`,
	UserColumnAPIKey: `SELECT id, name, email, password_hash, api_key, created_at FROM users WHERE api_key = $1`,
}

func (d *DB) CreateUser(ctx context.Context, u *medsum.User) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, api_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.APIKey, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", translate(err))
	}
	return nil
}

// GetUser looks a user up by one of the UserColumn* columns.
// A missing row wraps sql.ErrNoRows.
func (d *DB) GetUser(ctx context.Context, column, value string) (*medsum.User, error) {
	query, ok := userLookupQueries[column]
	if !ok {
		return nil, fmt.Errorf("get user: unsupported column %q", column)
	}
	u := &medsum.User{}
	err := d.Pool.QueryRowContext(ctx, query, value).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.APIKey, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return u, nil
}
