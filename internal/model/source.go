package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a source kind is neither wiki nor twitter
var ErrUnknownKind = errors.New("unknown source kind")

// Kind identifies which upstream API serves a source
type Kind string

const (
	KindWiki    Kind = "wiki"    // Wikipedia article
	KindTwitter Kind = "twitter" // Twitter/X status
)

// Kinds lists the supported source kinds
var Kinds = []Kind{KindWiki, KindTwitter}

// ParseKind converts user input into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindWiki:
		return KindWiki, nil
	case KindTwitter:
		return KindTwitter, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: wiki, twitter)", ErrUnknownKind, s)
	}
}

// Source is a reference to the content to summarize
type Source struct {
	Kind Kind   `json:"kind"` // wiki or twitter
	URL  string `json:"url"`  // Article or status URL
}

// String renders the source for logs
func (s Source) String() string {
	return string(s.Kind) + ":" + s.URL
}
