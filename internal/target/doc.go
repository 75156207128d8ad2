// Package target parses the raw newline-delimited target list into
// validated Target values.
//
// The list format is one target per line:
//
//	example.com               # default port and threshold
//	example.com:8443          # port override
//	example.com 30d           # threshold override (days or Go duration)
//	example.com:8443 720h     # both
//
// Blank lines and lines starting with '#' are skipped. Trailing whitespace
// and CRLF line endings are tolerated. A line that cannot be parsed yields
// a *ParseError carrying the 1-based line number; the caller is expected to
// treat this as fatal for the whole run since it indicates a broken input
// contract rather than a problem with any one domain.
package target
