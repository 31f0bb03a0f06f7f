package llm

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractiveProvider_LeadSentences(t *testing.T) {
	provider := NewExtractiveProvider(Config{})

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if !strings.HasPrefix(resp.Summary, "Oreo is an American brand of sandwich cookie") {
		t.Errorf("Expected the lead sentence, got %q", resp.Summary)
	}
	if len(resp.Summary) >= len(oreoExtract) {
		t.Error("Expected summary shorter than input")
	}
	if resp.Model != "lead-3" {
		t.Errorf("Expected model lead-3, got %s", resp.Model)
	}
}

func TestExtractiveProvider_SingleSentence(t *testing.T) {
	provider := NewExtractiveProvider(Config{})
	text := "just setting up my twttr"

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Text: text})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if utf8.RuneCountInString(resp.Summary) > utf8.RuneCountInString(text) {
		t.Errorf("Expected summary no longer than input, got %q", resp.Summary)
	}
	if !strings.HasPrefix(resp.Summary, "just") {
		t.Errorf("Expected summary to start with the text, got %q", resp.Summary)
	}
}

func TestExtractiveProvider_Deterministic(t *testing.T) {
	provider := NewExtractiveProvider(Config{})

	first, _ := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
	for i := 0; i < 5; i++ {
		next, _ := provider.Summarize(context.Background(), SummarizeRequest{Text: oreoExtract})
		if next.Summary != first.Summary {
			t.Fatalf("Run %d differs: %q vs %q", i, next.Summary, first.Summary)
		}
	}
}

func TestExtractiveProvider_CancelledContext(t *testing.T) {
	provider := NewExtractiveProvider(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Summarize(ctx, SummarizeRequest{Text: oreoExtract}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"One. Two! Three?", 3},
		{"No terminator", 1},
		{`He said "stop." Then left.`, 2},
		{"", 0},
	}
	for _, tt := range tests {
		if got := len(splitSentences(tt.text)); got != tt.want {
			t.Errorf("splitSentences(%q) = %d sentences, want %d", tt.text, got, tt.want)
		}
	}
}
