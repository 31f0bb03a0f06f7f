package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Provider defines the interface for summarization model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize condenses req.Text and returns the highest-ranked summary
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for summarization
type SummarizeRequest struct {
	// Text is the raw article or tweet text
	Text string

	// Prompt is an optional custom prompt for chat models (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the summary length
	MaxTokens int
}

// SummarizeResponse contains the model output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (estimated when the backend does not report it)
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "huggingface", "openai", "anthropic", "ollama", "extractive", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for the generated summary
	MaxTokens int

	// MaxInputTokens rejects longer inputs with ErrInputTooLong; 0 disables the check
	MaxInputTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:       "huggingface",
		Timeout:        60,
		MaxTokens:      142,
		MaxInputTokens: 1024,
	}
}

const systemPrompt = "You are a summarization model. You write short, neutral, abstractive summaries of the text you are given."

// BuildPrompt constructs the default prompt for chat-style models
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Summarize the following text in two or three sentences. ")
	b.WriteString("Do not add facts that are not in the text. Answer with the summary only.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(strings.TrimSpace(text))
	return b.String()
}

// EstimateTokens approximates the token count of text (1 token ≈ 4 characters)
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

func resolveMaxTokens(req SummarizeRequest, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 142
}

func resolveModel(req SummarizeRequest, config Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return fallback
}

func promptFor(req SummarizeRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Text)
}

// looksTooLong recognizes upstream messages about exceeding the context window
func looksTooLong(msg string) bool {
	msg = strings.ToLower(msg)
	for _, marker := range []string{
		"too long",
		"context_length_exceeded",
		"context length",
		"maximum sequence length",
		"index out of range in self",
		"too many tokens",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func apiError(provider string, status int, detail string) error {
	return fmt.Errorf("%s API error (%d): %s", provider, status, detail)
}
