package repository

import (
	"context"

	"github.com/soochol/medsum/internal/medsum"
)

// UserRepository stores accounts. Email and API key are unique.
type UserRepository interface {
	Create(ctx context.Context, u *medsum.User) error
	GetByID(ctx context.Context, id string) (*medsum.User, error)
	GetByEmail(ctx context.Context, email string) (*medsum.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*medsum.User, error)
}
