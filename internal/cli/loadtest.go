package cli

import (
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/urlsum/internal/loadtest"
	"github.com/ppiankov/urlsum/internal/model"
)

var (
	ltTarget   string
	ltPath     string
	ltKind     string
	ltSource   string
	ltUsers    int
	ltDuration time.Duration
	ltMinWait  time.Duration
	ltMaxWait  time.Duration
	ltMaxRPS   float64
	ltRequests int
	ltTimeout  time.Duration
)

// loadtestCmd represents the loadtest command
var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive simulated users against a running service",
	Long: `Loadtest starts --users simulated users. Each one repeatedly requests
the summarize route and then waits a random time between --min-wait and
--max-wait. The run ends after --duration or once every user has sent
--requests requests, and prints request counts and latency percentiles.

Example:
  urlsum loadtest --target http://localhost:8000 --users 50 --duration 1m
  urlsum loadtest --requests 10 --max-rps 5`,
	Args: cobra.NoArgs,
	RunE: runLoadtest,
}

func init() {
	defaults := loadtest.DefaultConfig()

	flags := loadtestCmd.Flags()
	flags.StringVar(&ltTarget, "target", defaults.TargetURL, "base URL of the service")
	flags.StringVar(&ltPath, "path", defaults.Path, "summarize route path")
	flags.StringVar(&ltKind, "type", string(defaults.Kind), "source type sent with each request")
	flags.StringVar(&ltSource, "source", defaults.SourceURL, "source URL sent with each request")
	flags.IntVarP(&ltUsers, "users", "u", defaults.Users, "number of simulated users")
	flags.DurationVarP(&ltDuration, "duration", "d", defaults.Duration, "test duration (0 = until --requests is reached)")
	flags.DurationVar(&ltMinWait, "min-wait", defaults.MinWait, "minimum wait between a user's requests")
	flags.DurationVar(&ltMaxWait, "max-wait", defaults.MaxWait, "maximum wait between a user's requests")
	flags.Float64Var(&ltMaxRPS, "max-rps", 0, "cap on total requests per second (0 = unlimited)")
	flags.IntVar(&ltRequests, "requests", 0, "requests per user (0 = unlimited)")
	flags.DurationVar(&ltTimeout, "timeout", defaults.Timeout, "per-request timeout")

	rootCmd.AddCommand(loadtestCmd)
}

func runLoadtest(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(ltKind)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log, cmd.ErrOrStderr())

	runner, err := loadtest.New(loadtest.Config{
		TargetURL: ltTarget,
		Path:      ltPath,
		Kind:      kind,
		SourceURL: ltSource,
		Users:     ltUsers,
		Duration:  ltDuration,
		MinWait:   ltMinWait,
		MaxWait:   ltMaxWait,
		MaxRPS:    ltMaxRPS,
		Requests:  ltRequests,
		Timeout:   ltTimeout,
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt)
	defer stop()

	report, err := runner.Run(ctx)
	if report != nil {
		report.Print(cmd.OutOrStdout())
	}
	return err
}
