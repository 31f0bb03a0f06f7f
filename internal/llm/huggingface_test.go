package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHuggingFaceProvider_Summarize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/"+DefaultHuggingFaceModel {
			t.Errorf("Expected default model path, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf_test" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}

		var req hfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if !strings.HasPrefix(req.Inputs, "Oreo is an American brand") {
			t.Errorf("Expected raw text as inputs, got %q", req.Inputs)
		}
		if req.Parameters.MaxLength != 142 || req.Parameters.DoSample {
			t.Errorf("Unexpected parameters: %+v", req.Parameters)
		}

		_, _ = w.Write([]byte(`[{"summary_text":" Oreo is a sandwich cookie brand owned by Mondelez. "},{"summary_text":"ignored"}]`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf_test", BaseURL: server.URL + "/", MaxTokens: 142})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if resp.Summary != "Oreo is a sandwich cookie brand owned by Mondelez." {
		t.Errorf("Expected first summary, got %q", resp.Summary)
	}
	if resp.Model != DefaultHuggingFaceModel {
		t.Errorf("Expected model %s, got %s", DefaultHuggingFaceModel, resp.Model)
	}
}

func TestHuggingFaceProvider_Summarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "model loading",
			status:  http.StatusServiceUnavailable,
			body:    `{"error":"Model sshleifer/distilbart-cnn-12-6 is currently loading","estimated_time":20.0}`,
			wantErr: ErrModelUnavailable,
		},
		{
			name:    "input too long",
			status:  http.StatusBadRequest,
			body:    `{"error":"index out of range in self"}`,
			wantErr: ErrInputTooLong,
		},
		{
			name:    "unknown model",
			status:  http.StatusNotFound,
			body:    `{"error":"Model not found"}`,
			wantErr: ErrModelUnavailable,
		},
		{
			name:    "bad token",
			status:  http.StatusUnauthorized,
			body:    `{"error":"Invalid credentials in Authorization header"}`,
			wantErr: ErrModelUnavailable,
		},
		{
			name:    "empty result",
			status:  http.StatusOK,
			body:    `[]`,
			wantErr: ErrNoSummary,
		},
		{
			name:    "blank summary",
			status:  http.StatusOK,
			body:    `[{"summary_text":"  "}]`,
			wantErr: ErrNoSummary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider, _ := NewHuggingFaceProvider(Config{BaseURL: server.URL})
			_, err := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHuggingFaceProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	provider, _ := NewHuggingFaceProvider(Config{BaseURL: url, Timeout: 2})
	_, err := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable")
	}
}

func TestHuggingFaceProvider_CustomModel(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"summary_text":"ok"}]`))
	}))
	defer server.Close()

	provider, _ := NewHuggingFaceProvider(Config{BaseURL: server.URL, Model: "facebook/bart-large-cnn"})
	if _, err := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract}); err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if gotPath != "/facebook/bart-large-cnn" {
		t.Errorf("Expected custom model path, got %s", gotPath)
	}
}
