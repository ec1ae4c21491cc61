package medsum

import "time"

// Report is a persisted medical summary. Summary holds ciphertext whenever
// the report is at rest; only the read path produces a plaintext copy.
type Report struct {
	ID         string    `json:"_id"`
	Summary    string    `json:"summary"`
	OwnerID    string    `json:"userId"`
	OwnerEmail string    `json:"userEmail"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WithSummary returns a copy of r carrying the given summary.
func (r *Report) WithSummary(summary string) *Report {
	cp := *r
	cp.Summary = summary
	return &cp
}

// UploadedDocument is a request-scoped file handed to the pipeline.
// The owner of FilePath removes it once the pipeline returns.
type UploadedDocument struct {
	FilePath string
	MIMEType string
}

// UploadResult is returned to the uploader. Summary is the plaintext as
// generated, not the stored ciphertext.
type UploadResult struct {
	ReportID string `json:"reportId"`
	Summary  string `json:"summary"`
}
