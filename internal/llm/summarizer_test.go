package llm

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	calls     atomic.Int32
	checks    atomic.Int32
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.calls.Add(1)
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	m.checks.Add(1)
	return m.available
}

const oreoExtract = "Oreo is an American brand of sandwich cookie consisting of two wafers with a sweet creme filling. " +
	"It was introduced on March 6, 1912, and through a series of corporate acquisitions, mergers, and splits, " +
	"both Nabisco and the Oreo brand have been owned by Mondelez International since 2012. " +
	"Oreo is the best-selling cookie brand in the United States. " +
	"Oreos are available in over a hundred countries, and many limited edition flavors have been released."

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	_, err = summarizer.Summarize(context.Background(), oreoExtract)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "gpt-local"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNewSummarizer_CanonicalName(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: "HF"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summarizer.ProviderName() != "huggingface" {
		t.Errorf("Expected huggingface, got %s", summarizer.ProviderName())
	}
}

func TestSummarizer_LoadsProviderOnce(t *testing.T) {
	// Missing API key makes construction fail; the failure is remembered
	summarizer, err := NewSummarizer(Config{Provider: "openai"})
	if err != nil {
		t.Fatalf("NewSummarizer failed: %v", err)
	}

	_, err1 := summarizer.Load()
	_, err2 := summarizer.Load()
	if !errors.Is(err1, ErrModelUnavailable) || !errors.Is(err2, ErrModelUnavailable) {
		t.Fatalf("Expected ErrModelUnavailable twice, got %v / %v", err1, err2)
	}

	extractive, err := NewSummarizer(Config{Provider: "extractive"})
	if err != nil {
		t.Fatalf("NewSummarizer failed: %v", err)
	}
	p1, err := extractive.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p2, _ := extractive.Load()
	if p1 != p2 {
		t.Error("Expected the same provider instance on every Load")
	}
}

func TestSummarizer_Summarize_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response:  &SummarizeResponse{Summary: "  Oreo is a sandwich cookie.  ", Model: "test-model"},
	}
	summarizer := NewSummarizerWithProvider(mock, Config{Model: "test-model", MaxTokens: 60})

	summary, err := summarizer.Summarize(context.Background(), oreoExtract)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary != "Oreo is a sandwich cookie." {
		t.Errorf("Unexpected summary: %q", summary)
	}
	if mock.lastReq.Model != "test-model" || mock.lastReq.MaxTokens != 60 {
		t.Errorf("Expected config forwarded to provider, got %+v", mock.lastReq)
	}
	if summarizer.ProviderName() != "test-provider" {
		t.Errorf("Expected provider name test-provider, got %s", summarizer.ProviderName())
	}
}

func TestSummarizer_Summarize_EmptyInput(t *testing.T) {
	mock := &MockProvider{name: "test", response: &SummarizeResponse{Summary: "x"}}
	summarizer := NewSummarizerWithProvider(mock, Config{})

	_, err := summarizer.Summarize(context.Background(), "   \n ")
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if mock.calls.Load() != 0 {
		t.Error("Expected provider not to be called for empty input")
	}
}

func TestSummarizer_Summarize_InputTooLong(t *testing.T) {
	mock := &MockProvider{name: "test", response: &SummarizeResponse{Summary: "x"}}
	summarizer := NewSummarizerWithProvider(mock, Config{MaxInputTokens: 10})

	_, err := summarizer.Summarize(context.Background(), oreoExtract)
	if !errors.Is(err, ErrInputTooLong) {
		t.Errorf("Expected ErrInputTooLong, got %v", err)
	}
	if mock.calls.Load() != 0 {
		t.Error("Expected provider not to be called when input is too long")
	}
}

func TestSummarizer_Summarize_EmptySummary(t *testing.T) {
	mock := &MockProvider{name: "test", response: &SummarizeResponse{Summary: " "}}
	summarizer := NewSummarizerWithProvider(mock, Config{})

	_, err := summarizer.Summarize(context.Background(), oreoExtract)
	if !errors.Is(err, ErrNoSummary) {
		t.Errorf("Expected ErrNoSummary, got %v", err)
	}
}

func TestSummarizer_Summarize_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"too long passes through", ErrInputTooLong, ErrInputTooLong},
		{"unavailable passes through", ErrModelUnavailable, ErrModelUnavailable},
		{"unclassified becomes unavailable", errors.New("API rate limit exceeded"), ErrModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockProvider{name: "test", err: tt.err}
			summarizer := NewSummarizerWithProvider(mock, Config{})

			_, err := summarizer.Summarize(context.Background(), oreoExtract)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSummarizer_Ready(t *testing.T) {
	upProvider := &MockProvider{name: "up", available: true}
	up := NewSummarizerWithProvider(upProvider, Config{})
	for range 3 {
		if err := up.Ready(context.Background()); err != nil {
			t.Errorf("Expected ready, got %v", err)
		}
	}
	if got := upProvider.checks.Load(); got != 1 {
		t.Errorf("Expected one availability check once ready, got %d", got)
	}

	downProvider := &MockProvider{name: "down", available: false}
	down := NewSummarizerWithProvider(downProvider, Config{})
	for range 2 {
		if err := down.Ready(context.Background()); !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("Expected ErrModelUnavailable, got %v", err)
		}
	}
	if got := downProvider.checks.Load(); got != 2 {
		t.Errorf("Expected failed checks to be retried, got %d checks", got)
	}
}

func TestSummarizer_DeterministicAndShorter(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: "extractive", MaxTokens: 142})
	if err != nil {
		t.Fatalf("NewSummarizer failed: %v", err)
	}

	first, err := summarizer.Summarize(context.Background(), oreoExtract)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	second, err := summarizer.Summarize(context.Background(), oreoExtract)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical summaries, got %q and %q", first, second)
	}
	if len(first) >= len(oreoExtract)/2 {
		t.Errorf("Expected summary materially shorter than input (%d chars), got %d", len(oreoExtract), len(first))
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  " + oreoExtract + "\n")

	if !strings.Contains(prompt, "Summarize the following text") {
		t.Error("Expected instruction in prompt")
	}
	if !strings.HasSuffix(prompt, oreoExtract) {
		t.Error("Expected trimmed text at the end of the prompt")
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"ёжик", 1},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestLooksTooLong(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"index out of range in self", true},
		{"This model's maximum context length is 8192 tokens", true},
		{"prompt is too long: 210000 tokens > 200000 maximum", true},
		{"Model is currently loading", false},
		{"invalid api key", false},
	}
	for _, tt := range tests {
		if got := looksTooLong(tt.msg); got != tt.want {
			t.Errorf("looksTooLong(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "huggingface" {
		t.Errorf("Expected huggingface provider, got '%s'", config.Provider)
	}
	if config.Timeout <= 0 {
		t.Error("Expected positive timeout")
	}
	if config.MaxTokens <= 0 {
		t.Error("Expected positive max tokens")
	}
	if config.MaxInputTokens <= 0 {
		t.Error("Expected input token limit to be enabled")
	}
}
