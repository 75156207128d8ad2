// Package report folds per-domain outcomes into the single two-variant
// report consumed by the downstream alerting stage.
//
// The wire contract is exactly two JSON renderings:
//
//	{"Valid":null}
//	{"Invalid":"Found 2 issues.\n<domain>: <reason>\n<domain>: <reason>"}
//
// There is no partial-success shape: a report is Valid iff every outcome
// is healthy. Issue lines preserve the order targets were parsed in, so
// identical inputs and reference time always render byte-identical
// reports. Report implements both json.Marshaler and json.Unmarshaler so
// the consumer can parse it with no knowledge of how checks ran.
package report
