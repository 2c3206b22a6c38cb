package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"traffic-monitor/internal/config"
	"traffic-monitor/internal/logging"
	"traffic-monitor/internal/metrics"
	"traffic-monitor/internal/render"
	"traffic-monitor/internal/sampler"
	"traffic-monitor/internal/storage"
	"traffic-monitor/internal/traffic"
)

const version = "1.0.0"

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	if err := config.LoadDotEnv(envFileArg(args)); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}

	cfg, opts, err := config.Resolve(args, stderr, getenv)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	case opts.ShowVersion:
		fmt.Fprintf(stdout, "traffic-monitor v%s\n", version)
		return exitOK
	}

	log, err := logging.NewDiagnostic(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v: %v\n", config.ErrInvalid, err)
		return exitConfig
	}

	clk := clock.New()

	source, err := metrics.NewSource(cfg.Source, cfg.ProcfsPath, clk)
	if err != nil {
		log.Error("failed to create counter source", "error", err)
		return exitConfig
	}

	known, err := metrics.HasInterface(ctx, source, cfg.Interface)
	if err != nil {
		log.Error("failed to list interfaces", "source", cfg.Source, "error", err)
		return exitFailure
	}
	if !known {
		names, _ := source.Interfaces(ctx)
		fmt.Fprintf(stderr, "error: %v %q (available: %s)\n",
			config.ErrUnknownInterface, cfg.Interface, strings.Join(names, ", "))
		return exitConfig
	}

	agg, err := traffic.NewAggregator(cfg.EMA.Alpha, cfg.EMA.Enabled)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v: %v\n", config.ErrInvalid, err)
		return exitConfig
	}

	hooks, err := newEventHooks(ctx, cfg, clk, log)
	if err != nil {
		log.Error("failed to set up event log", "dir", cfg.Log.Dir, "error", err)
		return exitFailure
	}
	defer hooks.Close()

	renderer, err := render.New(cfg.Output, stdout, render.Options{BarWidth: cfg.BarWidth})
	if err != nil {
		log.Error("failed to create renderer", "output", cfg.Output, "error", err)
		return exitFailure
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := sampler.New(
		sampler.Options{
			Interface: cfg.Interface,
			Interval:  cfg.Interval(),
			View:      cfg.ViewMode(),
			Limit:     cfg.IterationLimit(),
		},
		source, agg, traffic.NewScaleTracker(), renderer,
		sampler.WithClock(clk),
		sampler.WithLogger(log),
		sampler.WithHooks(hooks.OnFrame),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.Run(gctx)
	})

	if cfg.Log.Dir != "" {
		rotator := storage.NewRotator(cfg.Log.Dir, cfg.Log.RetentionDays, clk, log)
		g.Go(func() error {
			return rotator.Run(gctx)
		})
	}

	if d, ok := renderer.(*render.Dashboard); ok {
		g.Go(func() error {
			return d.Watch(gctx, cancel)
		})
	}

	runErr := g.Wait()
	if err := renderer.Close(); err != nil {
		log.Warn("failed to close renderer", "error", err)
	}

	if runErr != nil {
		reportFailure(log, loop, runErr)
		return exitFailure
	}

	if loop.State() == sampler.Stopped {
		summary := stdout
		if cfg.Output == config.OutputJSON {
			summary = stderr
		}
		printSummary(summary, loop)
	}
	return exitOK
}

func reportFailure(log *slog.Logger, loop *sampler.Loop, err error) {
	var ce *sampler.CollectorError
	if errors.As(err, &ce) && sampler.IsInterfaceGone(err) {
		log.Error("monitored interface disappeared", "iface", ce.Interface, "tick", ce.Tick)
	} else {
		log.Error("monitor failed", "error", err)
	}

	if last, ok := loop.Last(); ok {
		log.Info("last completed tick",
			"seq", last.Seq,
			"total_recv", last.Totals.In,
			"total_sent", last.Totals.Out,
		)
	}
}

func printSummary(w io.Writer, loop *sampler.Loop) {
	fmt.Fprintln(w, "\nStopped.")
	last, ok := loop.Last()
	if !ok {
		return
	}
	fmt.Fprintf(w, "Total sent: %s\n", render.FormatBytes(float64(last.Totals.Out)))
	fmt.Fprintf(w, "Total recv: %s\n", render.FormatBytes(float64(last.Totals.In)))
	fmt.Fprintf(w, "Duration:   %d sec\n", int(last.Uptime.Seconds()))
}

// envFileArg finds --env-file ahead of flag parsing, since the dotenv file
// must be loaded before the environment is read.
func envFileArg(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "env-file" || !strings.HasPrefix(arg, "-") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
