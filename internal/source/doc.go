// Package source fetches the raw target-list text from wherever it is
// hosted. The engine never fetches configuration itself — it consumes
// whatever bytes a Provider hands it.
//
// Implemented providers: local file and HTTP(S) with an optional auth
// header resolved from an environment variable. Factory:
// New(config.SourceConfig) returns the right Provider. Tests substitute
// in-memory fakes by implementing Provider.
package source
