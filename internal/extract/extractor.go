// Package extract turns uploaded documents into plain text.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/soochol/medsum/internal/medsum"
)

const (
	mimePDF     = "application/pdf"
	imagePrefix = "image/"
)

// Config controls the OCR backend.
type Config struct {
	Tesseract string // binary name or absolute path; default "tesseract"
	Language  string // tesseract language model; default "eng"
}

// Extractor dispatches on the declared media type. It only reads the input
// file; removing it is the caller's job.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner replaces the command runner used for OCR.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the text content of the file at path.
// PDF text is trimmed; OCR output is returned as recognized.
func (e *Extractor) Extract(ctx context.Context, path, mimeType string) (string, error) {
	switch {
	case mimeType == mimePDF:
		return e.extractPDF(path)
	case strings.HasPrefix(mimeType, imagePrefix):
		return e.extractImage(ctx, path)
	default:
		e.logger.Warn("extract.unsupported_media_type", "mime", mimeType)
		return "", medsum.NewUnsupportedMediaType(mimeType)
	}
}
