package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/certpatrol/certpatrol/internal/check"
	"github.com/certpatrol/certpatrol/internal/metrics"
	"github.com/certpatrol/certpatrol/internal/report"
	"github.com/certpatrol/certpatrol/internal/sink"
	"github.com/certpatrol/certpatrol/internal/source"
	"github.com/certpatrol/certpatrol/internal/target"
)

// Coordinator is the checking capability the runner drives.
// Satisfied by *check.Coordinator.
type Coordinator interface {
	Run(ctx context.Context, targets []target.Target) []check.Outcome
}

// Runner executes complete check invocations.
type Runner struct {
	provider source.Provider
	coord    Coordinator
	defaults target.Defaults
	sinks    []sink.Sink
	exporter *metrics.Exporter // nil when metrics are disabled

	now      func() time.Time
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithSinks sets the delivery targets for finished reports.
func WithSinks(sinks []sink.Sink) Option {
	return func(r *Runner) { r.sinks = sinks }
}

// WithExporter publishes every run to the given metrics exporter.
func WithExporter(e *metrics.Exporter) Option {
	return func(r *Runner) { r.exporter = e }
}

// WithClock overrides the wall clock. Tests use this for stable
// envelopes.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithRunIDs overrides run ID generation. Tests use this for stable
// envelopes.
func WithRunIDs(gen func() string) Option {
	return func(r *Runner) {
		if gen != nil {
			r.newRunID = gen
		}
	}
}

// New builds a Runner over the given provider and coordinator.
func New(provider source.Provider, coord Coordinator, defaults target.Defaults, opts ...Option) *Runner {
	r := &Runner{
		provider: provider,
		coord:    coord,
		defaults: defaults,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes one invocation. A non-nil error means the invocation
// itself failed (list fetch or parse) and no report exists; an Invalid
// report is a successful run.
func (r *Runner) Run(ctx context.Context) (report.Report, error) {
	started := r.now()
	runID := r.newRunID()

	raw, err := r.provider.Fetch(ctx)
	if err != nil {
		return report.Report{}, fmt.Errorf("runner: fetch target list: %w", err)
	}

	targets, err := target.ParseList(string(raw), r.defaults)
	if err != nil {
		return report.Report{}, fmt.Errorf("runner: %w", err)
	}

	outcomes := r.coord.Run(ctx, targets)
	rep := report.Aggregate(outcomes)

	if r.exporter != nil {
		r.exporter.Observe(outcomes, started)
	}

	issues := 0
	for _, o := range outcomes {
		if !o.Healthy() {
			issues++
		}
	}
	slog.Info("runner: run complete",
		"run_id", runID,
		"targets", len(targets),
		"issues", issues,
		"elapsed", r.now().Sub(started),
	)

	sink.DeliverAll(ctx, r.sinks, sink.Delivery{
		RunID:     runID,
		StartedAt: started,
		Targets:   len(targets),
		Report:    rep,
	})
	return rep, nil
}
