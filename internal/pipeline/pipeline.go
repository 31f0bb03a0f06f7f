package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/urlsum/internal/model"
)

// TextFetcher returns the raw text of a source
type TextFetcher interface {
	Fetch(ctx context.Context, src model.Source) (string, error)
}

// TextSummarizer condenses raw text into a summary
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	ProviderName() string
}

// Pipeline runs fetch-then-summarize for a single source
type Pipeline struct {
	fetcher    TextFetcher
	summarizer TextSummarizer
	log        *slog.Logger
}

// Result is the outcome of one pipeline run
type Result struct {
	Source            model.Source  `json:"source"`
	Text              string        `json:"text"`
	Summary           string        `json:"summary"`
	Provider          string        `json:"provider"`
	FetchDuration     time.Duration `json:"fetch_duration_ns"`
	SummarizeDuration time.Duration `json:"summarize_duration_ns"`
}

// New creates a pipeline from a fetcher and a summarizer
func New(fetcher TextFetcher, summarizer TextSummarizer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		summarizer: summarizer,
		log:        log,
	}
}

// Run fetches the source text and summarizes it. No step is retried.
func (p *Pipeline) Run(ctx context.Context, src model.Source) (*Result, error) {
	result := &Result{
		Source:   src,
		Provider: p.summarizer.ProviderName(),
	}

	// 1. Fetch raw text
	start := time.Now()
	text, err := p.fetcher.Fetch(ctx, src)
	result.FetchDuration = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Kind, err)
	}
	result.Text = text

	// 2. Summarize
	start = time.Now()
	summary, err := p.summarizer.Summarize(ctx, text)
	result.SummarizeDuration = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	result.Summary = summary

	p.log.InfoContext(ctx, "Summarized source",
		"source", src.String(),
		"provider", result.Provider,
		"text_chars", len(text),
		"summary_chars", len(summary),
		"fetch", result.FetchDuration,
		"summarize", result.SummarizeDuration,
	)

	return result, nil
}
