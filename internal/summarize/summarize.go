// Package summarize produces patient-friendly HTML summaries of medical text.
package summarize

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/soochol/medsum/internal/medsum"
	"github.com/soochol/medsum/internal/metrics"
	"github.com/soochol/medsum/internal/provider"
)

const (
	DefaultModel     = "google/gemma-3-12b-it:free"
	DefaultMaxTokens = 1000
)

// Summarizer is what the report pipeline needs from this package.
type Summarizer interface {
	Summarize(ctx context.Context, text, apiKey string) (string, error)
}

// Generator calls a chat completion provider once per summary.
type Generator struct {
	provider  provider.Provider
	model     string
	maxTokens int
	logger    *slog.Logger
}

func NewGenerator(p provider.Provider, model string, maxTokens int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Generator{provider: p, model: model, maxTokens: maxTokens, logger: logger}
}

// Summarize returns the trimmed HTML summary of text.
//
// The credential argument is not used: the provider authenticates with the
// key it was configured with at startup.
func (g *Generator) Summarize(ctx context.Context, text, _ string) (string, error) {
	start := time.Now()

	resp, err := g.provider.ChatCompletion(ctx, &provider.ChatRequest{
		Model:     g.model,
		Messages:  []provider.Message{{Role: provider.RoleUser, Content: BuildPrompt(text)}},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		mapped := mapError(err)
		metrics.ObserveProvider(g.provider.Name(), g.model, string(mapped.Kind), time.Since(start))
		// The provider has already logged undecodable bodies.
		if mapped.Kind != medsum.KindResponseParse {
			g.logger.Warn("summarize.failed", "model", g.model, "kind", mapped.Kind, "status", mapped.Status)
		}
		return "", mapped
	}

	summary := strings.TrimSpace(resp.Content)
	metrics.ObserveProvider(g.provider.Name(), g.model, "ok", time.Since(start))
	g.logger.Info("summarize.done",
		"model", g.model,
		"finish_reason", resp.FinishReason,
		"chars", len(summary),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func mapError(err error) *medsum.Error {
	var apiErr *provider.APIError
	switch {
	case errors.As(err, &apiErr):
		return medsum.NewUpstream(apiErr.StatusCode, apiErr.Message, err)
	case errors.Is(err, provider.ErrMalformedResponse):
		return medsum.NewResponseParse(err)
	case errors.Is(err, provider.ErrEmptyContent):
		return medsum.NewEmptySummary()
	default:
		return medsum.NewUpstream(0, err.Error(), err)
	}
}
