// Package probe performs the TLS handshake against a single target and
// extracts facts about the presented leaf certificate.
//
// The connection is opened in two explicit phases so failures stay
// classifiable: a TCP dial (DNS resolution + connect) that fails with
// *DialError, then a fully-verified TLS handshake that fails with
// *HandshakeError. An untrusted chain, a hostname mismatch, or a protocol
// failure is always a *HandshakeError — verification is never relaxed.
//
// The probe sends no application data and performs no retries; retry
// policy belongs to the caller.
package probe
