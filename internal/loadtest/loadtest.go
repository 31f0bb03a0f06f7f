package loadtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/urlsum/internal/model"
	"github.com/ppiankov/urlsum/internal/util"
	"github.com/ppiankov/urlsum/internal/worker"
)

// Config describes a load test against a running summarize service
type Config struct {
	TargetURL string        // Base URL of the service, e.g. http://localhost:8000
	Path      string        // Summarize route, e.g. /summarize/
	Kind      model.Kind    // Source kind sent as ?type=
	SourceURL string        // Source sent as ?url=
	Users     int           // Simulated concurrent users
	Duration  time.Duration // 0 runs until every user hits Requests or ctx ends
	MinWait   time.Duration // Think time between a user's requests
	MaxWait   time.Duration
	MaxRPS    float64 // Cap on total request rate, 0 = unlimited
	Requests  int     // Per-user request cap, 0 = unlimited
	Timeout   time.Duration
}

// DefaultConfig mirrors a single wiki task with 0.5-1s think time
func DefaultConfig() Config {
	return Config{
		TargetURL: "http://localhost:8000",
		Path:      "/summarize/",
		Kind:      model.KindWiki,
		SourceURL: "https://en.wikipedia.org/wiki/Oreo",
		Users:     10,
		Duration:  30 * time.Second,
		MinWait:   500 * time.Millisecond,
		MaxWait:   time.Second,
		Timeout:   60 * time.Second,
	}
}

// Validate checks that the configuration can run
func (c Config) Validate() error {
	if c.Users <= 0 {
		return fmt.Errorf("users must be positive, got %d", c.Users)
	}
	if c.MinWait < 0 || c.MaxWait < c.MinWait {
		return fmt.Errorf("invalid wait range [%s, %s]", c.MinWait, c.MaxWait)
	}
	if c.Duration <= 0 && c.Requests <= 0 {
		return errors.New("either duration or requests per user must be set")
	}
	if _, err := c.endpoint(); err != nil {
		return err
	}
	return nil
}

// endpoint builds the request URL hit by every simulated user
func (c Config) endpoint() (string, error) {
	base, err := url.Parse(strings.TrimSuffix(c.TargetURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid target URL %q", c.TargetURL)
	}

	path := c.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	q := url.Values{}
	q.Set("type", string(c.Kind))
	q.Set("url", c.SourceURL)
	return base.String() + path + "?" + q.Encode(), nil
}

// Runner drives simulated users against the service
type Runner struct {
	cfg      Config
	endpoint string
	client   *http.Client
	limiter  *worker.Limiter
	log      *slog.Logger

	// sleep waits between requests; tests replace it to run instantly
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Runner from a validated configuration
func New(cfg Config, log *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	endpoint, _ := cfg.endpoint()

	client := util.NewHTTPClient(cfg.Timeout, "", "", "")
	if transport, ok := client.Transport.(*http.Transport); ok {
		transport.MaxIdleConnsPerHost = cfg.Users
	}

	return &Runner{
		cfg:      cfg,
		endpoint: endpoint,
		client:   client,
		limiter:  worker.NewLimiter(cfg.MaxRPS, 1),
		log:      log,
		sleep:    sleepContext,
	}, nil
}

// Run starts every user, waits for them to finish and aggregates their samples
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runCtx := ctx
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	r.log.InfoContext(ctx, "Load test started",
		"endpoint", r.endpoint,
		"users", r.cfg.Users,
		"duration", r.cfg.Duration,
		"max_rps", r.cfg.MaxRPS,
	)

	// The pool outlives runCtx so finished users can always hand back their samples
	pool := worker.NewPool[[]Sample](context.Background(), r.cfg.Users)
	pool.Start()

	start := time.Now()
	for i := range r.cfg.Users {
		pool.Submit(func(context.Context) []Sample {
			return r.user(runCtx, i)
		})
	}
	perUser := pool.Wait()
	elapsed := time.Since(start)

	var samples []Sample
	for _, s := range perUser {
		samples = append(samples, s...)
	}

	report := NewReport(r.cfg.Users, elapsed, samples)
	r.log.InfoContext(ctx, "Load test finished",
		"requests", report.Requests,
		"failures", report.Failures,
		"p95", report.P95,
		"rps", report.RPS,
	)

	if len(samples) == 0 && ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

// waitTime picks a uniformly random think time in [MinWait, MaxWait]
func (r *Runner) waitTime() time.Duration {
	span := r.cfg.MaxWait - r.cfg.MinWait
	if span <= 0 {
		return r.cfg.MinWait
	}
	return r.cfg.MinWait + rand.N(span+1)
}

// do issues one request and records its outcome
func (r *Runner) do(ctx context.Context) (Sample, error) {
	if err := r.limiter.Wait(ctx, r.endpoint); err != nil {
		return Sample{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return Sample{}, err
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return Sample{}, ctx.Err()
		}
		return Sample{Latency: latency, Err: err.Error()}, nil
	}
	_ = resp.Body.Close()

	return Sample{Latency: latency, Status: resp.StatusCode}, nil
}

// user is one simulated user: request, think, request, until its budget or runCtx ends
func (r *Runner) user(runCtx context.Context, id int) []Sample {
	var samples []Sample

	for n := 0; r.cfg.Requests <= 0 || n < r.cfg.Requests; n++ {
		if runCtx.Err() != nil {
			break
		}

		sample, err := r.do(runCtx)
		if err != nil {
			// Cut off by the end of the run, not a service failure
			break
		}
		samples = append(samples, sample)

		if r.cfg.Requests > 0 && n+1 == r.cfg.Requests {
			break
		}
		if err := r.sleep(runCtx, r.waitTime()); err != nil {
			break
		}
	}

	r.log.Debug("User finished", "user", id, "requests", len(samples))
	return samples
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
