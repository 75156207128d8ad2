// Package sink delivers finished reports to downstream consumers.
// Webhooks are delivered to Slack, Teams, or generic HTTP targets; a
// WriterSink serializes the delivery envelope to any io.Writer (stdout
// in the CLI). Delivery failures are logged, never propagated — a flaky
// notification channel must not turn a completed check run into a
// failure.
package sink
