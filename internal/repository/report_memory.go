package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/soochol/medsum/internal/medsum"
	memstore "github.com/soochol/medsum/internal/repository/memory"
)

// MemoryReportRepository is a thread-safe in-memory report store.
type MemoryReportRepository struct {
	store *memstore.Store[*medsum.Report]
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{
		store: memstore.New(func(r *medsum.Report) string { return r.ID }),
	}
}

func (r *MemoryReportRepository) Create(ctx context.Context, report *medsum.Report) error {
	cp := *report
	err := r.store.Insert(ctx, &cp, nil)
	if errors.Is(err, memstore.ErrExists) {
		return fmt.Errorf("%w: report %s", ErrDuplicate, report.ID)
	}
	return err
}

// Get returns a copy so callers cannot alter the stored record.
func (r *MemoryReportRepository) Get(ctx context.Context, id string) (*medsum.Report, error) {
	report, err := r.store.Get(ctx, id)
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	cp := *report
	return &cp, nil
}
