package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Summarizer owns the process-wide model handle.
// The provider is created on first use and reused read-only afterwards.
type Summarizer struct {
	config   Config
	provider func() (Provider, error)
	ready    atomic.Bool // set after the first successful availability check
}

// NewSummarizer creates a summarizer; the provider is not contacted until the first call
func NewSummarizer(config Config) (*Summarizer, error) {
	canonical, err := CanonicalProvider(config.Provider)
	if err != nil {
		return nil, err
	}
	config.Provider = canonical

	return &Summarizer{
		config: config,
		provider: sync.OnceValues(func() (Provider, error) {
			return NewProvider(config)
		}),
	}, nil
}

// NewSummarizerWithProvider wraps an already constructed provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	if provider != nil {
		config.Provider = provider.Name()
	}
	return &Summarizer{
		config: config,
		provider: func() (Provider, error) {
			return provider, nil
		},
	}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.config.Provider != ""
}

// ProviderName returns the configured provider name
func (s *Summarizer) ProviderName() string {
	if s == nil {
		return ""
	}
	return s.config.Provider
}

// Load returns the shared provider, creating it on the first call
func (s *Summarizer) Load() (Provider, error) {
	if !s.IsEnabled() {
		return nil, fmt.Errorf("%w: no provider configured", ErrModelUnavailable)
	}

	provider, err := s.provider()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrModelUnavailable)
	}
	return provider, nil
}

// Ready loads the provider and checks that it can serve requests
// A successful check is remembered so readiness probes do not spend model calls.
func (s *Summarizer) Ready(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	provider, err := s.Load()
	if err != nil {
		return err
	}
	if !provider.IsAvailable(ctx) {
		return fmt.Errorf("%w: provider %s is not available", ErrModelUnavailable, provider.Name())
	}
	s.ready.Store(true)
	return nil
}

// Summarize returns the highest-ranked summary of text
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	if limit := s.config.MaxInputTokens; limit > 0 {
		if estimated := EstimateTokens(text); estimated > limit {
			return "", fmt.Errorf("%w: about %d tokens, limit is %d", ErrInputTooLong, estimated, limit)
		}
	}

	provider, err := s.Load()
	if err != nil {
		return "", err
	}

	resp, err := provider.Summarize(ctx, SummarizeRequest{
		Text:      text,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return "", classifyProviderError(ctx, err)
	}

	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		return "", ErrNoSummary
	}
	return summary, nil
}

// classifyProviderError makes every provider failure one of the summarizer error kinds
func classifyProviderError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrInputTooLong),
		errors.Is(err, ErrModelUnavailable),
		errors.Is(err, ErrNoSummary):
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("summarize: %w", ctx.Err())
	default:
		return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
}
