package check

import (
	"fmt"
	"time"
)

// Reason explains why a domain is not healthy. It is a sealed sum: the
// only implementations are NetworkError, HandshakeError, Expired and
// NearExpiry, and exactly one of them is attached to a non-healthy
// Outcome.
type Reason interface {
	fmt.Stringer
	isReason()
}

// NetworkError means the target could not be reached: DNS, connect, or
// the run deadline expiring before the check finished.
type NetworkError struct {
	Detail string
}

func (NetworkError) isReason()        {}
func (r NetworkError) String() string { return "network error: " + r.Detail }

// HandshakeError means the TLS layer rejected the exchange — untrusted
// or invalid chain, hostname mismatch, protocol failure.
type HandshakeError struct {
	Detail string
}

func (HandshakeError) isReason()        {}
func (r HandshakeError) String() string { return "handshake error: " + r.Detail }

// Expired means the certificate's NotAfter is in the past.
type Expired struct {
	NotAfter time.Time
}

func (Expired) isReason() {}
func (r Expired) String() string {
	return fmt.Sprintf("expired (not_after=%s)", r.NotAfter.UTC().Format(time.RFC3339))
}

// NearExpiry means the certificate is still valid but within the
// configured threshold of its expiration time.
type NearExpiry struct {
	NotAfter time.Time
	DaysLeft int
}

func (NearExpiry) isReason() {}
func (r NearExpiry) String() string {
	return fmt.Sprintf("expires in %d days (not_after=%s)", r.DaysLeft, r.NotAfter.UTC().Format(time.RFC3339))
}

// Outcome is the per-domain result of one check. A nil Reason means the
// domain is healthy; a non-nil Reason always carries the offending
// domain alongside it for correlation in aggregated output.
type Outcome struct {
	Domain string
	// NotAfter is the leaf certificate's upper bound when the probe
	// succeeded, zero otherwise. Exposed for metrics.
	NotAfter time.Time
	Reason   Reason
}

// Healthy reports whether the check found no issue.
func (o Outcome) Healthy() bool { return o.Reason == nil }

// Line renders the outcome as a self-contained "domain: reason" line.
// Only meaningful for non-healthy outcomes.
func (o Outcome) Line() string {
	if o.Reason == nil {
		return o.Domain + ": healthy"
	}
	return o.Domain + ": " + o.Reason.String()
}
