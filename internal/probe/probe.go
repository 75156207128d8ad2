package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/certpatrol/certpatrol/internal/target"
)

// DefaultTimeout bounds one probe (dial + handshake) so a slow or
// unreachable host cannot stall the whole run.
const DefaultTimeout = 10 * time.Second

// Facts holds what the evaluator needs from a successfully presented
// leaf certificate. Transient — produced by one probe, consumed once.
type Facts struct {
	NotBefore    time.Time
	NotAfter     time.Time
	Subject      string
	ChainTrusted bool
}

// DialError means the target could not be reached at all: DNS resolution,
// TCP connect, or timeout before the handshake started.
type DialError struct {
	Addr string
	Err  error
}

func (e *DialError) Error() string { return fmt.Sprintf("dial %s: %v", e.Addr, e.Err) }
func (e *DialError) Unwrap() error { return e.Err }

// HandshakeError means the TCP connection succeeded but the TLS layer
// rejected the exchange: untrusted or invalid chain, hostname mismatch,
// protocol failure, or handshake timeout.
type HandshakeError struct {
	Domain string
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("tls handshake with %s: %v", e.Domain, e.Err)
}
func (e *HandshakeError) Unwrap() error { return e.Err }

// Prober opens TLS connections to targets and extracts certificate facts.
type Prober struct {
	timeout time.Duration
	roots   *x509.CertPool // nil means the system pool
	dialer  *net.Dialer
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout overrides the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRootCAs overrides the trust anchors used to verify presented chains.
// Tests use this to trust a local test server; production uses the system pool.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(p *Prober) { p.roots = pool }
}

// New returns a Prober with the default timeout and system trust anchors.
func New(opts ...Option) *Prober {
	p := &Prober{
		timeout: DefaultTimeout,
		dialer:  &net.Dialer{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe connects to the target and returns facts about its leaf
// certificate. The error, when non-nil, is always a *DialError or a
// *HandshakeError.
func (p *Prober) Probe(ctx context.Context, tgt target.Target) (Facts, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addr := tgt.Addr()
	raw, err := p.dialer.DialContext(probeCtx, "tcp", addr)
	if err != nil {
		return Facts{}, &DialError{Addr: addr, Err: err}
	}
	defer raw.Close()

	conn := tls.Client(raw, &tls.Config{
		ServerName: tgt.Domain,
		RootCAs:    p.roots,
	})
	if err := conn.HandshakeContext(probeCtx); err != nil {
		return Facts{}, &HandshakeError{Domain: tgt.Domain, Err: err}
	}

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		// Cannot happen after a verified handshake, but a facts value
		// must never be fabricated from a missing certificate.
		return Facts{}, &HandshakeError{Domain: tgt.Domain, Err: fmt.Errorf("no peer certificates presented")}
	}

	leaf := state.PeerCertificates[0]
	return Facts{
		NotBefore:    leaf.NotBefore,
		NotAfter:     leaf.NotAfter,
		Subject:      leaf.Subject.String(),
		ChainTrusted: len(state.VerifiedChains) > 0,
	}, nil
}
