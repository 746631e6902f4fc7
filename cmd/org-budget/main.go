package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/org-budget/pkg/analysis"
	"github.com/ritzau/org-budget/pkg/config"
	"github.com/ritzau/org-budget/pkg/hierarchy"
	"github.com/ritzau/org-budget/pkg/logging"
	"github.com/ritzau/org-budget/pkg/output"
	"github.com/ritzau/org-budget/pkg/watcher"
	"github.com/ritzau/org-budget/pkg/web"
)

const (
	debounceQuiet   = 250 * time.Millisecond
	debounceMaxWait = 2 * time.Second
)

func main() {
	flags := pflag.NewFlagSet("org-budget", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logging.Configure(logging.Options{
		Level: logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt),
		JSON:  cfg.JSONLogs,
	})

	var buildOpts []hierarchy.Option
	if cfg.CaseInsensitive {
		buildOpts = append(buildOpts, hierarchy.WithCaseInsensitiveIDs())
	}

	if cfg.WebMode {
		err = serve(cfg, buildOpts)
	} else {
		err = report(cfg, buildOpts)
	}
	if err != nil {
		logging.Fatal("org-budget failed", "error", err)
	}
}

// report builds the hierarchy once and prints it to stdout.
func report(cfg *config.Config, buildOpts []hierarchy.Option) error {
	// the report lists diagnostics itself
	buildOpts = append(buildOpts, hierarchy.WithDiagnosticSink(func(d hierarchy.Diagnostic) {
		logging.Debug("record rejected", "diagnostic", d.String())
	}))

	h, err := hierarchy.LoadFile(cfg.Input, buildOpts...)
	if err != nil {
		return err
	}

	r, err := output.NewReport(cfg.Input, h, cfg.Budgets)
	if err != nil {
		return err
	}

	if cfg.Format == "json" {
		return output.WriteJSON(os.Stdout, r)
	}
	output.PrintReport(os.Stdout, r)
	return nil
}

// serve runs the HTTP API, and the input watcher when enabled, until
// interrupted.
func serve(cfg *config.Config, buildOpts []hierarchy.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer()
	runner := analysis.NewAnalysisRunner(cfg.Input, server, buildOpts...)

	g, ctx := errgroup.WithContext(ctx)

	// set up before any goroutine starts
	var changes <-chan watcher.ChangeEvent
	if cfg.Watch {
		fw, err := watcher.NewFileWatcher(cfg.Input)
		if err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return err
		}

		debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		debouncer.Start(ctx)
		changes = debouncer.Output()
	}

	g.Go(func() error {
		return server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
	})

	g.Go(func() error {
		// a broken input is reported through the status topic; keep serving
		if err := runner.Run(ctx, analysis.AnalysisOptions{Reason: "initial load"}); err != nil {
			logging.Warn("initial load failed", "error", err)
		}
		return nil
	})

	if changes != nil {
		g.Go(func() error {
			runner.Watch(ctx, changes)
			return nil
		})
	}

	logging.Info("serving budgets", "url", fmt.Sprintf("http://localhost:%d/api/budgets", cfg.Port))
	return g.Wait()
}
