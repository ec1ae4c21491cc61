package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/soochol/medsum/internal/medsum"
	memstore "github.com/soochol/medsum/internal/repository/memory"
)

// MemoryUserRepository is a thread-safe in-memory account store.
type MemoryUserRepository struct {
	store *memstore.Store[*medsum.User]
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		store: memstore.New(func(u *medsum.User) string { return u.ID }),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, u *medsum.User) error {
	cp := *u
	err := r.store.Insert(ctx, &cp, func(existing *medsum.User) bool {
		return existing.Email == u.Email || existing.APIKey == u.APIKey
	})
	if errors.Is(err, memstore.ErrExists) {
		return fmt.Errorf("%w: user %s", ErrDuplicate, u.Email)
	}
	return err
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*medsum.User, error) {
	return r.lookup(r.store.Get(ctx, id))
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*medsum.User, error) {
	return r.lookup(r.store.Find(ctx, func(u *medsum.User) bool { return u.Email == email }))
}

func (r *MemoryUserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*medsum.User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}
	return r.lookup(r.store.Find(ctx, func(u *medsum.User) bool { return u.APIKey == apiKey }))
}

func (r *MemoryUserRepository) lookup(u *medsum.User, err error) (*medsum.User, error) {
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cp := *u
	return &cp, nil
}
