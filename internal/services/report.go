package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soochol/medsum/internal/medsum"
	"github.com/soochol/medsum/internal/metrics"
	"github.com/soochol/medsum/internal/repository"
	"github.com/soochol/medsum/internal/summarize"
)

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path, mimeType string) (string, error)
}

// SummaryCodec seals summaries before they reach storage.
// *crypto.Encryptor satisfies this interface.
type SummaryCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ReportService runs the upload pipeline and the read path for reports.
type ReportService struct {
	extractor  TextExtractor
	summarizer summarize.Summarizer
	codec      SummaryCodec
	repo       repository.ReportRepository
	limiter    *UploadLimiter
	logger     *slog.Logger
	now        func() time.Time
}

func NewReportService(
	extractor TextExtractor,
	summarizer summarize.Summarizer,
	codec SummaryCodec,
	repo repository.ReportRepository,
	logger *slog.Logger,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		extractor:  extractor,
		summarizer: summarizer,
		codec:      codec,
		repo:       repo,
		logger:     logger,
		now:        time.Now,
	}
}

// SetLimiter bounds concurrent uploads. Without one, uploads are unbounded.
func (s *ReportService) SetLimiter(l *UploadLimiter) {
	s.limiter = l
}

// Upload extracts, summarizes, encrypts and stores a single document on
// behalf of owner. The returned summary is the plaintext.
func (s *ReportService) Upload(ctx context.Context, owner medsum.Principal, docs []medsum.UploadedDocument) (*medsum.UploadResult, error) {
	if len(docs) != 1 {
		s.logger.Warn("report.upload.rejected", "files", len(docs))
		return nil, medsum.NewInvalidUpload()
	}
	doc := docs[0]

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx, owner.ID); err != nil {
			return nil, fmt.Errorf("wait for upload slot: %w", err)
		}
		defer s.limiter.Release(owner.ID)
	}

	text, err := s.extractor.Extract(ctx, doc.FilePath, doc.MIMEType)
	metrics.ObserveStage("extract", err)
	if err != nil {
		s.logUntyped("report.upload.extract_failed", err, "mime", doc.MIMEType)
		return nil, err
	}
	s.logger.Info("report.upload.extracted", "mime", doc.MIMEType, "chars", len(text))

	summary, err := s.summarizer.Summarize(ctx, text, "")
	metrics.ObserveStage("summarize", err)
	if err != nil {
		s.logUntyped("report.upload.summarize_failed", err)
		return nil, err
	}

	sealed, err := s.codec.Encrypt(summary)
	metrics.ObserveStage("encrypt", err)
	if err != nil {
		return nil, fmt.Errorf("encrypt summary: %w", err)
	}

	now := s.now().UTC()
	report := &medsum.Report{
		ID:         medsum.GenerateID(),
		Summary:    sealed,
		OwnerID:    owner.ID,
		OwnerEmail: strings.ToLower(strings.TrimSpace(owner.Email)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.repo.Create(ctx, report)
	metrics.ObserveStage("persist", err)
	if err != nil {
		s.logger.Error("report.upload.persist_failed", "report_id", report.ID, "err", err)
		return nil, fmt.Errorf("store report: %w", err)
	}

	s.logger.Info("report.upload.stored", "report_id", report.ID, "owner", owner.ID)
	return &medsum.UploadResult{ReportID: report.ID, Summary: summary}, nil
}

// Retrieve returns a copy of the report with its summary decrypted.
func (s *ReportService) Retrieve(ctx context.Context, id string) (*medsum.Report, error) {
	report, err := s.repo.Get(ctx, id)
	metrics.ObserveStage("fetch", err)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, medsum.NewNotFound("Report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	plain, err := s.codec.Decrypt(report.Summary)
	metrics.ObserveStage("decrypt", err)
	if err != nil {
		s.logger.Error("report.retrieve.decrypt_failed", "report_id", id, "err", err)
		return nil, medsum.NewDecryption(err)
	}
	return report.WithSummary(plain), nil
}

// logUntyped logs err unless it is a *medsum.Error, which the stage that
// produced it has already logged.
func (s *ReportService) logUntyped(event string, err error, args ...any) {
	if medsum.KindOf(err) != "" {
		return
	}
	s.logger.Error(event, append(args, "err", err)...)
}
