package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/app"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/config"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/logging"
	"github.com/Eserhimas/customer-journey-risk-radar/internal/usecase"
)

const usage = `usage: journeyradar <command> [flags]

commands:
  classify   assign a journey stage and sentiment to every collected post
  report     print negative post counts and top pain point phrases per stage
  serve      expose stage counts and pain points over HTTP
`

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code, so deferred
// cleanup finishes before the process exits.
func run(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "classify", "report", "serve":
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, syncLogs := logging.New(cfg.Logging)
	defer func() { _ = syncLogs() }()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close application", "error", err)
		}
	}()

	switch cmd {
	case "classify":
		err = runClassify(ctx, application, cmdArgs)
	case "report":
		err = runReport(ctx, application, cmdArgs, os.Stdout)
	case "serve":
		err = runServe(ctx, application, cmdArgs)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		return 1
	}
	return 0
}

func runClassify(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	in := fs.String("in", "", "collector JSON file (defaults to storage.input)")
	out := fs.String("out", "", "classified JSON file (defaults to storage.output)")
	csvPath := fs.String("csv", "", "optional CSV export")
	every := fs.Duration("every", 0, "repeat the run on this interval until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.Classify(ctx, app.ClassifyOptions{Input: *in, Output: *out, CSV: *csvPath, Every: *every})
}

func runReport(ctx context.Context, a *app.Application, args []string, w io.Writer) error {
	q := a.DefaultReportQuery()

	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	in := fs.String("in", "", "classified JSON file (defaults to the repository or storage.output)")
	stage := fs.String("stage", "", "single stage to report (default: all stages)")
	fs.Float64Var(&q.SentimentCeiling, "ceiling", q.SentimentCeiling, "sentiment at or below which a post is negative")
	fs.IntVar(&q.MinTextLength, "min-length", q.MinTextLength, "ignore posts with this many characters or fewer")
	fs.IntVar(&q.Phrases.TopK, "top", q.Phrases.TopK, "number of phrases per stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reports, err := a.Report(ctx, app.ReportOptions{Input: *in, Stage: *stage, Query: q})
	if err != nil {
		return err
	}
	return printReports(w, reports)
}

func printReports(w io.Writer, reports []usecase.StageReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "== %s: %d negative posts\n", r.Stage, r.NegativePostCount)
		if len(r.Keyphrases) == 0 {
			fmt.Fprintf(tw, "   %s\n\n", r.Message)
			continue
		}
		fmt.Fprintln(tw, "   phrase\trelevance")
		for _, kp := range r.Keyphrases {
			fmt.Fprintf(tw, "   %s\t%.4f\n", kp.Phrase, kp.Relevance)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func runServe(ctx context.Context, a *app.Application, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	in := fs.String("in", "", "classified JSON file (defaults to the repository or storage.output)")
	addr := fs.String("addr", "", "listen address (defaults to server.addr)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	start := time.Now()
	err := a.Serve(ctx, *in, *addr)
	if err == nil {
		fmt.Fprintf(os.Stderr, "server stopped after %s\n", time.Since(start).Round(time.Second))
	}
	return err
}
