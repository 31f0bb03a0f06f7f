package pipeline

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const (
	wikiTitleSegment = 4 // https: / "" / host / wiki / <title>
	tweetIDSegment   = 5 // https: / "" / host / <user> / status / <id>
)

// pathSegment splits rawURL on "/" and returns segment idx along with the URL host.
// Query and fragment are dropped first so "?s=20" never ends up in an id.
func pathSegment(rawURL string, idx int) (segment, host string, err error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", fmt.Errorf("%w: %q is not an http(s) URL", ErrMalformedURL, rawURL)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: %q has no host", ErrMalformedURL, rawURL)
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	segments := strings.Split(u.String(), "/")
	if idx >= len(segments) || segments[idx] == "" {
		return "", "", fmt.Errorf("%w: %q has no path segment %d", ErrMalformedURL, rawURL, idx)
	}
	return segments[idx], u.Hostname(), nil
}

// WikiTitle extracts the article title and language from a Wikipedia article URL
func WikiTitle(rawURL string) (title, lang string, err error) {
	segment, host, err := pathSegment(rawURL, wikiTitleSegment)
	if err != nil {
		return "", "", err
	}

	title, err = url.PathUnescape(segment)
	if err != nil {
		return "", "", fmt.Errorf("%w: title %q: %w", ErrMalformedURL, segment, err)
	}
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	if title == "" {
		return "", "", fmt.Errorf("%w: empty title in %q", ErrMalformedURL, rawURL)
	}

	return title, wikiLang(host), nil
}

// wikiLang returns the language subdomain of a wikipedia.org host, "en" otherwise.
// Mobile hosts such as de.m.wikipedia.org map to their language.
func wikiLang(host string) string {
	host = strings.ToLower(host)
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil || domain != "wikipedia.org" || host == domain {
		return "en"
	}

	labels := strings.Split(strings.TrimSuffix(host, "."+domain), ".")
	lang := labels[0]
	if lang == "www" || lang == "m" || lang == "" {
		return "en"
	}
	return lang
}

// TweetID extracts the numeric status id from a Twitter or X status URL
func TweetID(rawURL string) (string, error) {
	id, _, err := tweetRef(rawURL)
	return id, err
}

// tweetRef returns the status id and the host it was posted under
func tweetRef(rawURL string) (id, host string, err error) {
	id, host, err = pathSegment(rawURL, tweetIDSegment)
	if err != nil {
		return "", "", err
	}

	for _, r := range id {
		if r < '0' || r > '9' {
			return "", "", fmt.Errorf("%w: status id %q is not numeric", ErrMalformedURL, id)
		}
	}
	return id, host, nil
}

// IsTwitterHost reports whether host belongs to twitter.com or x.com
func IsTwitterHost(host string) bool {
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		return false
	}
	return domain == "twitter.com" || domain == "x.com"
}
