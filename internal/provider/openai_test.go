package provider

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// recordingHandler collects log records so tests can count them.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Message == msg {
			n++
		}
	}
	return n
}

func newTestProvider(url string, logger *slog.Logger) *OpenAIProvider {
	return NewOpenAIProvider("openrouter", url+"/v1", "test-key", 5*time.Second, logger)
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth: %s", r.Header.Get("Authorization"))
		}
		var reqBody map[string]any
		json.NewDecoder(r.Body).Decode(&reqBody)
		if reqBody["model"] != "google/gemma-3-12b-it:free" {
			t.Errorf("unexpected model: %v", reqBody["model"])
		}
		if reqBody["max_tokens"] != float64(1000) {
			t.Errorf("unexpected max_tokens: %v", reqBody["max_tokens"])
		}
		msgs, _ := reqBody["messages"].([]any)
		if len(msgs) != 1 {
			t.Errorf("messages: got %d, want 1", len(msgs))
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  <p>ok</p>\n"}, "finish_reason": "stop"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := newTestProvider(server.URL, nil)
	resp, err := p.ChatCompletion(context.Background(), &ChatRequest{
		Model:     "google/gemma-3-12b-it:free",
		Messages:  []Message{{Role: RoleUser, Content: "Hello"}},
		MaxTokens: 1000,
	})
	if err != nil {
		t.Fatalf("ChatCompletion: %v", err)
	}
	if resp.Content != "  <p>ok</p>\n" {
		t.Errorf("content: got %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("finish_reason: got %q", resp.FinishReason)
	}
}

func TestOpenAIProvider_APIErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"structured error", http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`, "rate limited"},
		{"message field", http.StatusUnauthorized, `{"message":"No auth credentials found"}`, "No auth credentials found"},
		{"raw text", http.StatusBadGateway, `upstream exploded`, "upstream exploded"},
		{"error not an object", http.StatusBadRequest, `{"error":"bad"}`, `{"error":"bad"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestProvider(server.URL, nil).ChatCompletion(context.Background(), &ChatRequest{Model: "m"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status: got %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message: got %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestOpenAIProvider_MalformedBodyLoggedOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	h := &recordingHandler{}
	_, err := newTestProvider(server.URL, slog.New(h)).ChatCompletion(context.Background(), &ChatRequest{Model: "m"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
	if n := h.count("llm.response.decode_error"); n != 1 {
		t.Errorf("decode error logged %d times, want 1", n)
	}
}

func TestOpenAIProvider_EmptyContent(t *testing.T) {
	for name, body := range map[string]string{
		"no choices":    `{"choices":[]}`,
		"no message":    `{"choices":[{"finish_reason":"stop"}]}`,
		"empty content": `{"choices":[{"message":{"content":""}}]}`,
		"null body":     `null`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := newTestProvider(server.URL, nil).ChatCompletion(context.Background(), &ChatRequest{Model: "m"})
			if !errors.Is(err, ErrEmptyContent) {
				t.Fatalf("expected ErrEmptyContent, got %v", err)
			}
		})
	}
}

func TestOpenAIProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestProvider(url, nil).ChatCompletion(context.Background(), &ChatRequest{Model: "m"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatal("transport failure should not be an APIError")
	}
}

func TestOpenAIProvider_NoKeyNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization header %q", h)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider("local", server.URL+"/", "", 0, nil)
	if _, err := p.ChatCompletion(context.Background(), &ChatRequest{Model: "m"}); err != nil {
		t.Fatal(err)
	}
}

func TestOpenAIProvider_Name(t *testing.T) {
	p := NewOpenAIProvider("openrouter", "http://localhost:11434/v1", "", 0, nil)
	if p.Name() != "openrouter" {
		t.Errorf("name: got %q, want openrouter", p.Name())
	}
}
