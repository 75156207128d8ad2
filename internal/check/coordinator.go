package check

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/certpatrol/certpatrol/internal/expiry"
	"github.com/certpatrol/certpatrol/internal/probe"
	"github.com/certpatrol/certpatrol/internal/target"
)

// Defaults applied when the corresponding Coordinator option is unset.
const (
	DefaultMaxInFlight = 8
	DefaultRunDeadline = 60 * time.Second
)

// Prober is the capability the coordinator needs from the probe layer.
// Satisfied by *probe.Prober; tests substitute stubs.
type Prober interface {
	Probe(ctx context.Context, tgt target.Target) (probe.Facts, error)
}

// Coordinator runs checks for all targets with bounded parallelism.
//
// Each target owns its own result slot, written exactly once; aggregation
// over the slots happens only after every check has settled, so there is
// no shared mutable state between checks.
type Coordinator struct {
	prober       Prober
	maxInFlight  int
	runDeadline  time.Duration
	retryNetwork bool
	now          func() time.Time // injectable for deterministic tests
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMaxInFlight bounds the number of simultaneous outbound checks.
func WithMaxInFlight(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxInFlight = n
		}
	}
}

// WithRunDeadline bounds one whole invocation. Targets not finished when
// the deadline expires are reported as network timeouts, never dropped.
func WithRunDeadline(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.runDeadline = d
		}
	}
}

// WithNetworkRetry enables a single immediate retry after a dial failure.
// Handshake failures are never retried — a rejected certificate will not
// become valid on a second attempt.
func WithNetworkRetry(enabled bool) CoordinatorOption {
	return func(c *Coordinator) { c.retryNetwork = enabled }
}

// WithClock overrides the reference clock used for expiry evaluation.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator builds a Coordinator around the given prober.
func NewCoordinator(p Prober, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		prober:      p,
		maxInFlight: DefaultMaxInFlight,
		runDeadline: DefaultRunDeadline,
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run checks every target and returns exactly one Outcome per target, in
// input order. A failing domain never aborts the run; an empty target
// set returns an empty slice.
func (c *Coordinator) Run(ctx context.Context, targets []target.Target) []Outcome {
	outcomes := make([]Outcome, len(targets))
	if len(targets) == 0 {
		return outcomes
	}

	runCtx, cancel := context.WithTimeout(ctx, c.runDeadline)
	defer cancel()

	sem := make(chan struct{}, c.maxInFlight)
	var wg sync.WaitGroup
	for i, tgt := range targets {
		wg.Add(1)
		go func(i int, tgt target.Target) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-runCtx.Done():
				outcomes[i] = Outcome{Domain: tgt.Domain, Reason: NetworkError{Detail: "timeout"}}
				return
			}
			defer func() { <-sem }()

			outcomes[i] = c.checkOne(runCtx, tgt)
		}(i, tgt)
	}
	wg.Wait()
	return outcomes
}

// checkOne probes a single target and classifies the result.
func (c *Coordinator) checkOne(ctx context.Context, tgt target.Target) Outcome {
	facts, err := c.prober.Probe(ctx, tgt)

	var dialErr *probe.DialError
	if err != nil && c.retryNetwork && errors.As(err, &dialErr) && ctx.Err() == nil {
		slog.Debug("check: retrying after dial failure", "domain", tgt.Domain, "err", err)
		facts, err = c.prober.Probe(ctx, tgt)
	}

	if err != nil {
		return Outcome{Domain: tgt.Domain, Reason: classifyProbeError(ctx, err)}
	}

	out := Outcome{Domain: tgt.Domain, NotAfter: facts.NotAfter}
	finding := expiry.Evaluate(facts, tgt.Threshold, c.now())
	switch finding.State {
	case expiry.StateExpired:
		out.Reason = Expired{NotAfter: finding.NotAfter}
	case expiry.StateNearExpiry:
		out.Reason = NearExpiry{NotAfter: finding.NotAfter, DaysLeft: finding.DaysLeft}
	}
	return out
}

// classifyProbeError maps a probe error onto the reason sum. Run-deadline
// exhaustion is reported uniformly as a network timeout so that every
// configured target appears in the final report even when time runs out
// mid-handshake.
func classifyProbeError(ctx context.Context, err error) Reason {
	if ctx.Err() != nil {
		return NetworkError{Detail: "timeout"}
	}

	var dialErr *probe.DialError
	if errors.As(err, &dialErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return NetworkError{Detail: "timeout"}
		}
		return NetworkError{Detail: dialErr.Error()}
	}

	var hsErr *probe.HandshakeError
	if errors.As(err, &hsErr) {
		return HandshakeError{Detail: hsErr.Error()}
	}

	// A prober implementation returned an unclassified error. Treat it as
	// transient rather than blaming the certificate.
	return NetworkError{Detail: err.Error()}
}
