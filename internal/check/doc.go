// Package check runs certificate checks for a set of targets and
// classifies every result into a DomainOutcome.
//
// outcome.go defines the Outcome value and the sealed Reason sum
// (NetworkError | HandshakeError | Expired | NearExpiry) so every
// consumer handles each failure category explicitly.
//
// coordinator.go provides the Coordinator, which fans the probe +
// evaluation pipeline out across targets with bounded parallelism and an
// overall run deadline, then hands back exactly one Outcome per target
// in input order. Coordinator.Run accepts an injectable clock through
// NewCoordinator so tests are deterministic.
package check
