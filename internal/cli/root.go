package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/urlsum/internal/llm"
	"github.com/ppiankov/urlsum/internal/model"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/urlsum/internal/cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "urlsum",
	Short: "urlsum - summarize Wikipedia articles and tweets",
	Long: `urlsum fetches the text behind a Wikipedia article or Twitter status URL
through the public APIs and summarizes it with a pretrained model.

It runs once from the command line, serves the same pipeline over HTTP,
and can drive load against a running service.

Example:
  urlsum run wiki https://en.wikipedia.org/wiki/Oreo
  urlsum serve --replicas 16
  urlsum loadtest --users 50 --duration 1m`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "urlsum v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.urlsum/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("provider", defaults.LLM.Provider, "summarization provider (huggingface, openai, anthropic, ollama, extractive)")
	flags.String("model", "", "provider-specific model name")
	flags.Duration("http-timeout", defaults.HTTP.Timeout, "timeout for upstream API requests")
	flags.Bool("cache", defaults.Cache.Enabled, "cache fetched text in memory")
	flags.Float64("rate-limit", defaults.RateLimit.RequestsPerSecond, "max upstream requests per second per host (0 = unlimited)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"llm.provider":                   "provider",
		"llm.model":                      "model",
		"http.timeout":                   "http-timeout",
		"cache.enabled":                  "cache",
		"rate_limit.requests_per_second": "rate-limit",
		"log.level":                      "log-level",
		"log.format":                     "log-format",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".urlsum"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// URLSUM_SERVE_REPLICAS overrides serve.replicas
	viper.SetEnvPrefix("URLSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Well-known variables without the prefix
	_ = viper.BindEnv("twitter.bearer_token", "URLSUM_TWITTER_BEARER_TOKEN", "BEARER_TOKEN")
	_ = viper.BindEnv("llm.base_url", "URLSUM_LLM_BASE_URL", "OLLAMA_BASE_URL")

	if err := viper.ReadInConfig(); err == nil && verbose {
		_, _ = fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}

// loadConfig returns the effective configuration: defaults overlaid with file, env and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		if env := llm.APIKeyEnv(cfg.LLM.Provider); env != "" {
			cfg.LLM.APIKey = os.Getenv(env)
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}

// newLogger builds the process logger from the log section
func newLogger(cfg model.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
