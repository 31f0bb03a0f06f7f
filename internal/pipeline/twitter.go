package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// tweetEndpoint builds the API v2 lookup URL for a status id
func tweetEndpoint(apiURL, id string) string {
	params := url.Values{}
	params.Set("tweet.fields", "note_tweet")
	return strings.TrimSuffix(apiURL, "/") + "/" + id + "?" + params.Encode()
}

// fetchTweet returns the text of the status at rawURL
func (f *Fetcher) fetchTweet(ctx context.Context, rawURL string) (string, error) {
	id, host, err := tweetRef(rawURL)
	if err != nil {
		return "", err
	}
	if f.bearerToken == "" {
		return "", fmt.Errorf("%w: BEARER_TOKEN is not set", ErrUnauthorized)
	}
	if !IsTwitterHost(host) {
		f.log.WarnContext(ctx, "Status URL is not on twitter.com or x.com", "url", rawURL)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+f.bearerToken)

	status, body, err := f.get(ctx, tweetEndpoint(f.twitterAPI, id), header)
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "", fmt.Errorf("%w: Twitter API returned status %d", ErrUnauthorized, status)
	case status == http.StatusNotFound:
		return "", fmt.Errorf("%w: status %s", ErrNotFound, id)
	case status != http.StatusOK:
		return "", fmt.Errorf("%w: Twitter API returned status %d", ErrNetwork, status)
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: Twitter API returned invalid JSON", ErrNetwork)
	}
	doc := gjson.ParseBytes(body)

	data := doc.Get("data")
	if !data.Exists() {
		// Deleted or protected posts come back as 200 with an errors array
		if detail := doc.Get("errors.0"); detail.Exists() {
			if strings.Contains(detail.Get("title").String(), "Not Found") {
				return "", fmt.Errorf("%w: status %s: %s", ErrNotFound, id, detail.Get("detail").String())
			}
			if strings.Contains(detail.Get("title").String(), "Authorization") {
				return "", fmt.Errorf("%w: status %s: %s", ErrUnauthorized, id, detail.Get("detail").String())
			}
			return "", fmt.Errorf("%w: Twitter API error: %s", ErrNetwork, detail.Get("detail").String())
		}
		return "", fmt.Errorf("%w: Twitter API response has no data", ErrNetwork)
	}

	text := data.Get("note_tweet.text").String()
	if text == "" {
		text = data.Get("text").String()
	}
	text = strings.TrimSpace(html.UnescapeString(text))
	if text == "" {
		return "", fmt.Errorf("%w: status %s has no text", ErrNotFound, id)
	}
	return text, nil
}
