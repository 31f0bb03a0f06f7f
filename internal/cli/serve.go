package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/urlsum/internal/model"
	"github.com/ppiankov/urlsum/internal/server"
)

var servePreload bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the summarize route over HTTP",
	Long: `Serve exposes the fetch-then-summarize pipeline as

  GET <route-prefix>/?type=<wiki|twitter>&url=<url>[&format=json]

The response is the summary as text/plain, or the full result as JSON.
At most --replicas requests are summarized concurrently; the rest wait.
GET /healthz reports liveness and GET /readyz loads and checks the model.

Example:
  urlsum serve --addr :8000 --replicas 16
  curl 'localhost:8000/summarize/?type=wiki&url=https://en.wikipedia.org/wiki/Oreo'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaults := model.DefaultConfig().Serve

	serveCmd.Flags().String("addr", defaults.Addr, "listen address")
	serveCmd.Flags().String("route-prefix", defaults.RoutePrefix, "mount point of the summarize route")
	serveCmd.Flags().Int("replicas", defaults.Replicas, "max concurrent summarize requests (0 = unlimited)")
	serveCmd.Flags().Duration("shutdown-timeout", defaults.ShutdownTimeout, "grace period for in-flight requests on shutdown")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "load the model before accepting requests")

	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.route_prefix", serveCmd.Flags().Lookup("route-prefix"))
	_ = viper.BindPFlag("serve.replicas", serveCmd.Flags().Lookup("replicas"))
	_ = viper.BindPFlag("serve.shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg.Log, cmd.ErrOrStderr())
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	summarizer := a.summarizer

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if servePreload {
		if err := summarizer.Ready(ctx); err != nil {
			log.WarnContext(ctx, "Model not ready, requests will fail until it loads", "provider", summarizer.ProviderName(), "error", err)
		} else {
			log.InfoContext(ctx, "Model loaded", "provider", summarizer.ProviderName())
		}
	}

	if cfg.Cache.Enabled {
		log.InfoContext(ctx, "Fetch cache enabled", "ttl", cfg.Cache.TTL)
	}

	err = server.New(cfg.Serve, a.pipeline, summarizer, log).ListenAndServe(ctx)

	if stats, ok := a.fetcher.CacheStats(); ok {
		log.Info("Fetch cache stats", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
	}
	return err
}
