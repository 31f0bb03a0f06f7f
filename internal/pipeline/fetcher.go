package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ppiankov/urlsum/internal/cache"
	"github.com/ppiankov/urlsum/internal/model"
	"github.com/ppiankov/urlsum/internal/util"
	"github.com/ppiankov/urlsum/internal/worker"
)

// Fetcher retrieves source text from the Wikipedia and Twitter APIs
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	wikiAPI     string
	twitterAPI  string
	bearerToken string
	limiter     *worker.Limiter
	cache       cache.Cache // nil unless cache.enabled
	cacheTTL    time.Duration
	log         *slog.Logger
}

// NewFetcher creates a Fetcher from the http, wikipedia, twitter, cache and rate_limit sections of cfg
func NewFetcher(cfg *model.Config, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}

	f := &Fetcher{
		httpClient:  util.NewHTTPClient(cfg.HTTP.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		userAgent:   cfg.HTTP.UserAgent,
		maxBytes:    cfg.HTTP.MaxBodyBytes,
		wikiAPI:     cfg.Wikipedia.APIURL,
		twitterAPI:  cfg.Twitter.APIURL,
		bearerToken: cfg.Twitter.BearerToken,
		limiter:     worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		cacheTTL:    cfg.Cache.TTL,
		log:         log,
	}
	if f.maxBytes <= 0 {
		f.maxBytes = model.DefaultConfig().HTTP.MaxBodyBytes
	}
	if cfg.Cache.Enabled {
		f.cache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	return f
}

// Fetch returns the raw text behind src.
// Exactly one upstream request is made per call unless the text is cached.
func (f *Fetcher) Fetch(ctx context.Context, src model.Source) (string, error) {
	var key string
	if f.cache != nil {
		key = cache.Key(src)
		if text, ok := f.cache.Get(key); ok {
			f.log.DebugContext(ctx, "Source text served from cache", "source", src.String())
			return text, nil
		}
	}

	var (
		text string
		err  error
	)
	start := time.Now()
	switch src.Kind {
	case model.KindWiki:
		text, err = f.fetchWikipedia(ctx, src.URL)
	case model.KindTwitter:
		text, err = f.fetchTweet(ctx, src.URL)
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownKind, src.Kind)
	}
	if err != nil {
		f.log.DebugContext(ctx, "Fetch failed", "source", src.String(), "error", err)
		return "", err
	}

	f.log.DebugContext(ctx, "Fetched source text",
		"source", src.String(),
		"chars", len(text),
		"duration", time.Since(start),
	)

	if f.cache != nil {
		f.cache.Set(key, text, f.cacheTTL)
	}
	return text, nil
}

// CacheStats reports cache counters; ok is false when caching is disabled
func (f *Fetcher) CacheStats() (stats cache.Stats, ok bool) {
	mc, ok := f.cache.(*cache.MemoryCache)
	if !ok {
		return cache.Stats{}, false
	}
	return mc.Stats(), true
}

// get performs one rate-limited GET and returns the status and a size-limited body
func (f *Fetcher) get(ctx context.Context, endpoint string, header http.Header) (int, []byte, error) {
	if err := f.limiter.Wait(ctx, endpoint); err != nil {
		return 0, nil, fmt.Errorf("%w: rate limit: %w", ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: create request: %w", ErrNetwork, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, nil, fmt.Errorf("fetch: %w", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return 0, nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	return resp.StatusCode, body, nil
}
