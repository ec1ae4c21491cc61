package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OpenAIProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIProvider creates a client for {baseURL}/chat/completions. Every
// request is bounded by timeout; zero means no client-side limit.
func NewOpenAIProvider(name, baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *OpenAIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

// ChatCompletion sends a single request. It does not retry.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	reqID := uuid.New().String()
	start := time.Now()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	p.logger.Info("llm.http.request",
		"req_id", reqID,
		"provider", p.name,
		"model", req.Model,
		"content_length", len(jsonData),
	)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		p.logger.Error("llm.http.send_error", "req_id", reqID, "err", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	p.logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var apiResp openAIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		p.logger.Error("llm.response.decode_error", "req_id", reqID, "err", err, "raw_bytes", len(raw))
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyContent
	}

	choice := apiResp.Choices[0]
	return &ChatResponse{Content: choice.Message.Content, FinishReason: choice.FinishReason}, nil
}

// errorMessage picks error.message, then message, then the raw body.
func errorMessage(raw []byte) string {
	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != nil && body.Error.Message != "" {
			return body.Error.Message
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return string(raw)
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}
type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
