package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ppiankov/urlsum/internal/llm"
	"github.com/ppiankov/urlsum/internal/model"
	"github.com/ppiankov/urlsum/internal/pipeline"
)

var runJSON bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <wiki|twitter> <url>",
	Short: "Fetch and summarize a single source",
	Long: `Run fetches the text behind a Wikipedia article or a Twitter status and
prints it together with its summary.

The Wikipedia title is the path segment after /wiki/, the Twitter status id
the segment after /status/. Twitter requires BEARER_TOKEN.

Example:
  urlsum run wiki https://en.wikipedia.org/wiki/Oreo
  urlsum run twitter https://twitter.com/jack/status/20
  urlsum run wiki https://de.wikipedia.org/wiki/Keks --provider extractive --json`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(runCmd)
}

// app holds the wired components shared by run and serve
type app struct {
	pipeline   *pipeline.Pipeline
	fetcher    *pipeline.Fetcher
	summarizer *llm.Summarizer
}

// newApp wires fetcher and summarizer for cfg
func newApp(cfg *model.Config, log *slog.Logger) (*app, error) {
	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, err
	}

	fetcher := pipeline.NewFetcher(cfg, log)
	return &app{
		pipeline:   pipeline.New(fetcher, summarizer, log),
		fetcher:    fetcher,
		summarizer: summarizer,
	}, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	kind, err := model.ParseKind(args[0])
	if err != nil {
		return err
	}
	src := model.Source{Kind: kind, URL: args[1]}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, newLogger(cfg.Log, cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt)
	defer stop()

	result, err := a.pipeline.Run(ctx, src)
	if err != nil {
		return err
	}

	return printResult(cmd, result)
}

func printResult(cmd *cobra.Command, result *pipeline.Result) error {
	out := cmd.OutOrStdout()

	if runJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	label := "Wiki Text:"
	if result.Source.Kind == model.KindTwitter {
		label = "Tweet text:"
	}

	_, _ = fmt.Fprintf(out, "URL: %s\n\n", result.Source.URL)
	_, _ = fmt.Fprintf(out, "%s %s\n\n", label, result.Text)
	_, _ = fmt.Fprintf(out, "Summary: %s\n", result.Summary)
	return nil
}

// contextOrBackground guards commands executed without ExecuteContext
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
