// Package expiry evaluates certificate validity windows against a
// near-expiry threshold.
//
// Evaluate is pure: the reference time is always passed in by the caller
// so production uses the wall clock and tests use fixed instants. Only
// the certificate's upper bound is inspected — a not-yet-valid NotBefore
// is the TLS layer's concern and is rejected (or not) during the
// handshake, before this package ever sees the facts.
package expiry

import (
	"math"
	"time"

	"github.com/certpatrol/certpatrol/internal/probe"
)

// Evaluation states.
const (
	StateHealthy    = "healthy"
	StateNearExpiry = "near_expiry"
	StateExpired    = "expired"
)

// Finding is the outcome of evaluating one certificate.
type Finding struct {
	State    string
	NotAfter time.Time
	DaysLeft int // whole days until NotAfter, floored; meaningless when expired
}

// Evaluate classifies the certificate's remaining lifetime.
//
// A certificate is expired only when now is strictly past NotAfter.
// The threshold boundary is inclusive in favor of flagging: remaining
// lifetime exactly equal to the threshold is still near-expiry.
func Evaluate(facts probe.Facts, threshold time.Duration, now time.Time) Finding {
	f := Finding{NotAfter: facts.NotAfter}

	if now.After(facts.NotAfter) {
		f.State = StateExpired
		return f
	}

	remaining := facts.NotAfter.Sub(now)
	f.DaysLeft = int(math.Floor(remaining.Hours() / 24))

	if remaining <= threshold {
		f.State = StateNearExpiry
		return f
	}
	f.State = StateHealthy
	return f
}
