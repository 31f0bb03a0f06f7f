package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ExtractiveProvider is an offline, deterministic lead-sentence summarizer.
// It needs no network or credentials and always produces the same output for the same input.
type ExtractiveProvider struct {
	config       Config
	maxSentences int
}

var sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]*\s+`)

// NewExtractiveProvider creates an extractive provider
func NewExtractiveProvider(config Config) *ExtractiveProvider {
	return &ExtractiveProvider{
		config:       config,
		maxSentences: 3,
	}
}

// Name returns the provider name
func (p *ExtractiveProvider) Name() string {
	return "extractive"
}

// IsAvailable is always true, there is nothing to load
func (p *ExtractiveProvider) IsAvailable(ctx context.Context) bool {
	return true
}

// Summarize keeps leading sentences until roughly a third of the input is covered
func (p *ExtractiveProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.Join(strings.Fields(req.Text), " ")
	if text == "" {
		return nil, ErrNoSummary
	}

	inputLen := utf8.RuneCountInString(text)
	target := inputLen / 3
	if limit := resolveMaxTokens(req, p.config) * 4; target > limit {
		target = limit
	}

	var picked []string
	length := 0
	for _, sentence := range splitSentences(text) {
		if len(picked) == p.maxSentences {
			break
		}
		n := utf8.RuneCountInString(sentence)
		if len(picked) > 0 && length+n > target {
			break
		}
		picked = append(picked, sentence)
		length += n + 1
	}

	summary := strings.Join(picked, " ")
	if utf8.RuneCountInString(summary) >= inputLen {
		// Single long sentence: shorten it on a word boundary
		summary = truncateWords(text, max(target, inputLen/2))
	}

	return &SummarizeResponse{
		Summary:    summary,
		Model:      "lead-" + strconv.Itoa(p.maxSentences),
		TokensUsed: EstimateTokens(req.Text),
	}, nil
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func truncateWords(text string, limit int) string {
	if limit <= 0 {
		limit = 1
	}
	var b strings.Builder
	for _, word := range strings.Fields(text) {
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+1+utf8.RuneCountInString(word) > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	return b.String() + "…"
}
