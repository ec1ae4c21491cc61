package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/soochol/medsum/internal/medsum"
)

// ReportDB defines the DB-layer methods needed by the persistent report repo.
// *db.DB satisfies this interface.
type ReportDB interface {
	CreateReport(ctx context.Context, r *medsum.Report) error
	GetReport(ctx context.Context, id string) (*medsum.Report, error)
}

// PersistentReportRepository wraps MemoryReportRepository with a PostgreSQL
// backend. The database is authoritative: a failed insert fails the upload.
// Reads try memory first; on miss, fall back to DB and cache.
type PersistentReportRepository struct {
	mem *MemoryReportRepository
	db  ReportDB
}

func NewPersistentReportRepository(mem *MemoryReportRepository, db ReportDB) *PersistentReportRepository {
	return &PersistentReportRepository{mem: mem, db: db}
}

func (r *PersistentReportRepository) Create(ctx context.Context, report *medsum.Report) error {
	if err := r.db.CreateReport(ctx, report); err != nil {
		return fmt.Errorf("db create report: %w", err)
	}
	_ = r.mem.Create(ctx, report)
	return nil
}

func (r *PersistentReportRepository) Get(ctx context.Context, id string) (*medsum.Report, error) {
	if report, err := r.mem.Get(ctx, id); err == nil {
		return report, nil
	}
	report, err := r.db.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("db get report: %w", err)
	}
	_ = r.mem.Create(ctx, report)
	return report, nil
}
