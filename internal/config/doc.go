// Package config loads and watches the certpatrol configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Source, Checks, Sinks, Metrics, Interval} — full tree parsed
//     from YAML
//   - SourceConfig — where the raw target list comes from: type
//     (file|http), path or url, optional auth header resolved from an
//     environment variable
//   - ChecksConfig — per-run check parameters: default port and expiry
//     threshold, probe timeout, run deadline, max in-flight checks,
//     network retry toggle
//   - SinksConfig / WebhookConfig — report delivery targets; webhook URLs
//     are indirected through environment variable names, never stored in
//     the file
//   - MetricsConfig — optional Prometheus exposition listener
//
// Load(path) reads the YAML file, applies defaults (port 443, 14-day
// threshold, 10s probe timeout, 60s run deadline, 8 in-flight), then
// validates required fields and enums.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and
// calls onChange with the newly parsed Config, handling the
// rename→create pattern used by atomic-save editors.
package config
