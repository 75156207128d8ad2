// Package metrics exposes the most recent check run in Prometheus text
// exposition format.
//
// The Exporter keeps only the last run's outcomes — there is no history;
// scrape cadence decides resolution. Exported families:
//
//	certpatrol_runs_total                          counter
//	certpatrol_last_run_timestamp_seconds          gauge
//	certpatrol_last_run_issues                     gauge
//	certpatrol_domain_healthy{domain}              gauge (1 healthy, 0 issue)
//	certpatrol_cert_not_after_timestamp_seconds{domain} gauge, probed certs only
package metrics
