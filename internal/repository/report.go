package repository

import (
	"context"

	"github.com/soochol/medsum/internal/medsum"
)

// ReportRepository stores encrypted reports. Reports are created once and
// never updated.
type ReportRepository interface {
	Create(ctx context.Context, r *medsum.Report) error
	Get(ctx context.Context, id string) (*medsum.Report, error)
}
