package db

import (
	"context"
	"fmt"

	"github.com/soochol/medsum/internal/medsum"
)

// CreateReport stores a new report. Summary must already be ciphertext.
func (d *DB) CreateReport(ctx context.Context, r *medsum.Report) error {
	_, err := d.Pool.ExecContext(ctx,
		`INSERT INTO reports (id, summary, user_id, user_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Summary, r.OwnerID, r.OwnerEmail, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", translate(err))
	}
	return nil
}

// GetReport retrieves a report by ID. A missing row wraps sql.ErrNoRows.
func (d *DB) GetReport(ctx context.Context, id string) (*medsum.Report, error) {
	r := &medsum.Report{}
	err := d.Pool.QueryRowContext(ctx,
		`SELECT id, summary, user_id, user_email, created_at, updated_at FROM reports WHERE id = $1`, id,
	).Scan(&r.ID, &r.Summary, &r.OwnerID, &r.OwnerEmail, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return r, nil
}
