package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/certpatrol/certpatrol/internal/check"
	"github.com/certpatrol/certpatrol/internal/config"
	"github.com/certpatrol/certpatrol/internal/metrics"
	"github.com/certpatrol/certpatrol/internal/probe"
	"github.com/certpatrol/certpatrol/internal/runner"
	"github.com/certpatrol/certpatrol/internal/sink"
	"github.com/certpatrol/certpatrol/internal/source"
	"github.com/certpatrol/certpatrol/internal/target"
)

// Exit codes: 0 all certificates healthy, 1 issues found, 2 the
// invocation itself failed (config, fetch, or parse).
const (
	exitValid   = 0
	exitInvalid = 1
	exitFailure = 2
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single check even if the config sets an interval")
	flag.Parse()

	// Optional .env for webhook URLs and source credentials.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("certpatrol starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(exitFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Interval <= 0 || *once {
		os.Exit(runOnce(ctx, cfg))
	}
	runForever(ctx, cfg, *configPath)
}

// buildRunner assembles the check pipeline from one config snapshot.
func buildRunner(cfg *config.Config, exporter *metrics.Exporter) (*runner.Runner, error) {
	provider, err := source.New(cfg.Source)
	if err != nil {
		return nil, err
	}

	prober := probe.New(probe.WithTimeout(cfg.Checks.ProbeTimeout))
	coord := check.NewCoordinator(prober,
		check.WithMaxInFlight(cfg.Checks.MaxInFlight),
		check.WithRunDeadline(cfg.Checks.RunDeadline),
		check.WithNetworkRetry(cfg.Checks.RetryNetwork),
	)

	defaults := target.Defaults{
		Port:      cfg.Checks.Port,
		Threshold: cfg.Checks.ExpiryThreshold,
	}

	sinks := sink.FromConfig(cfg.Sinks)
	opts := []runner.Option{runner.WithSinks(sinks)}
	if exporter != nil {
		opts = append(opts, runner.WithExporter(exporter))
	}
	return runner.New(provider, coord, defaults, opts...), nil
}

// runOnce executes a single invocation, prints the report to stdout, and
// returns the process exit code.
func runOnce(ctx context.Context, cfg *config.Config) int {
	r, err := buildRunner(cfg, nil)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		return exitFailure
	}

	rep, err := r.Run(ctx)
	if err != nil {
		slog.Error("check run failed", "err", err)
		return exitFailure
	}

	data, err := json.Marshal(rep)
	if err != nil {
		slog.Error("failed to render report", "err", err)
		return exitFailure
	}
	fmt.Println(string(data))

	if rep.IsValid() {
		return exitValid
	}
	return exitInvalid
}

// runForever reruns the check on the configured interval, hot-reloading
// the config file and serving metrics until the context is cancelled.
func runForever(ctx context.Context, cfg *config.Config, configPath string) {
	exporter := metrics.NewExporter()

	if cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter)
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			slog.Info("metrics listening", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "err", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// The runner is rebuilt on config reload; runs always use the most
	// recent snapshot.
	var current atomic.Pointer[runner.Runner]
	r, err := buildRunner(cfg, exporter)
	if err != nil {
		slog.Error("failed to build pipeline", "err", err)
		os.Exit(exitFailure)
	}
	current.Store(r)

	go func() {
		err := config.Watch(ctx, configPath, func(updated *config.Config) {
			rebuilt, err := buildRunner(updated, exporter)
			if err != nil {
				slog.Error("config reload produced an unusable pipeline, keeping previous", "err", err)
				return
			}
			current.Store(rebuilt)
		})
		if err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	run := func() {
		if _, err := current.Load().Run(ctx); err != nil {
			slog.Error("check run failed", "err", err)
		}
	}

	slog.Info("certpatrol running", "interval", cfg.Interval)
	run()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("certpatrol shutting down")
			return
		case <-ticker.C:
			run()
		}
	}
}
