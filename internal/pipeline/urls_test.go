package pipeline

import (
	"errors"
	"testing"
)

func TestWikiTitle(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantTitle string
		wantLang  string
		wantErr   bool
	}{
		{"english article", "https://en.wikipedia.org/wiki/Oreo", "Oreo", "en", false},
		{"underscores", "https://en.wikipedia.org/wiki/Albert_Einstein", "Albert Einstein", "en", false},
		{"percent encoded", "https://en.wikipedia.org/wiki/Cr%C3%A8me_br%C3%BBl%C3%A9e", "Crème brûlée", "en", false},
		{"raw unicode", "https://uk.wikipedia.org/wiki/Борщ", "Борщ", "uk", false},
		{"mobile host", "https://de.m.wikipedia.org/wiki/Keks", "Keks", "de", false},
		{"query and fragment dropped", "https://en.wikipedia.org/wiki/Oreo?oldid=1#History", "Oreo", "en", false},
		{"non wikipedia host", "https://example.com/wiki/Oreo", "Oreo", "en", false},
		{"no title", "https://en.wikipedia.org/wiki/", "", "", true},
		{"too short", "https://en.wikipedia.org/wiki", "", "", true},
		{"root", "https://en.wikipedia.org", "", "", true},
		{"not a url", "Oreo", "", "", true},
		{"bad scheme", "ftp://en.wikipedia.org/wiki/Oreo", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, lang, err := WikiTitle(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedURL) {
					t.Fatalf("Expected ErrMalformedURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if lang != tt.wantLang {
				t.Errorf("lang = %q, want %q", lang, tt.wantLang)
			}
		})
	}
}

func TestTweetID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"twitter.com", "https://twitter.com/jack/status/20", "20", false},
		{"x.com", "https://x.com/jack/status/20", "20", false},
		{"share suffix", "https://twitter.com/jack/status/1445078208190291968?s=20&t=abc", "1445078208190291968", false},
		{"trailing path", "https://x.com/jack/status/20/photo/1", "20", false},
		{"no id", "https://twitter.com/jack/status/", "", true},
		{"profile only", "https://twitter.com/jack", "", true},
		{"non numeric", "https://twitter.com/jack/status/abc", "", true},
		{"garbage", "not a url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := TweetID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedURL) {
					t.Fatalf("Expected ErrMalformedURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if id != tt.want {
				t.Errorf("id = %q, want %q", id, tt.want)
			}
		})
	}
}

func TestIsTwitterHost(t *testing.T) {
	tests := map[string]bool{
		"twitter.com":        true,
		"mobile.twitter.com": true,
		"x.com":              true,
		"X.com":              true,
		"example.com":        false,
		"twitter.example":    false,
		"":                   false,
	}
	for host, want := range tests {
		if got := IsTwitterHost(host); got != want {
			t.Errorf("IsTwitterHost(%q) = %v, want %v", host, got, want)
		}
	}
}
