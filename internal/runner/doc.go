// Package runner wires one complete invocation together: fetch the raw
// target list, parse it, run the coordinator, fold the outcomes into a
// report, then publish the result to the metrics exporter and sinks.
//
// Run distinguishes invocation-level failures (the list could not be
// fetched or parsed — no checks ran) from a content-level Invalid
// report: the former is an error return, the latter a successful run.
package runner
