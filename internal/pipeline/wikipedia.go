package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// wikiQueryResponse is the action=query reply with formatversion=2
type wikiQueryResponse struct {
	Query struct {
		Pages []wikiPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type wikiPage struct {
	PageID        int               `json:"pageid"`
	Title         string            `json:"title"`
	Extract       string            `json:"extract"`
	Missing       bool              `json:"missing"`
	Invalid       bool              `json:"invalid"`
	InvalidReason string            `json:"invalidreason"`
	PageProps     map[string]string `json:"pageprops"`
}

// wikiEndpoint builds the query URL for title, substituting {lang} in the configured API URL
func wikiEndpoint(apiURL, title, lang string) string {
	endpoint := strings.ReplaceAll(apiURL, "{lang}", lang)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("titles", title)
	params.Set("prop", "extracts|pageprops")
	params.Set("ppprop", "disambiguation")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")

	return endpoint + "?" + params.Encode()
}

// fetchWikipedia returns the plain-text intro of the article at rawURL
func (f *Fetcher) fetchWikipedia(ctx context.Context, rawURL string) (string, error) {
	title, lang, err := WikiTitle(rawURL)
	if err != nil {
		return "", err
	}

	endpoint := wikiEndpoint(f.wikiAPI, title, lang)
	f.log.DebugContext(ctx, "Querying Wikipedia", "title", title, "lang", lang)

	status, body, err := f.get(ctx, endpoint, nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: Wikipedia API returned status %d", ErrNetwork, status)
	}

	var resp wikiQueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decode Wikipedia API response: %w", ErrNetwork, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: Wikipedia API error %s: %s", ErrNetwork, resp.Error.Code, resp.Error.Info)
	}
	if len(resp.Query.Pages) == 0 {
		return "", fmt.Errorf("%w: no page for title %q", ErrNotFound, title)
	}

	page := resp.Query.Pages[0]
	switch {
	case page.Invalid:
		return "", fmt.Errorf("%w: invalid title %q: %s", ErrMalformedURL, title, page.InvalidReason)
	case page.Missing:
		return "", fmt.Errorf("%w: no article titled %q", ErrNotFound, title)
	}
	if _, ok := page.PageProps["disambiguation"]; ok {
		return "", fmt.Errorf("%w: %q is a disambiguation page", ErrNotFound, page.Title)
	}

	extract := strings.TrimSpace(page.Extract)
	if extract == "" {
		return "", fmt.Errorf("%w: article %q has no intro text", ErrNotFound, page.Title)
	}
	return extract, nil
}
