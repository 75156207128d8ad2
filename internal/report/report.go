package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/certpatrol/certpatrol/internal/check"
)

// Report is the aggregated result of one check run. The zero value is
// Valid.
type Report struct {
	invalid *string
}

// Valid returns a report meaning every domain checked out healthy.
func Valid() Report { return Report{} }

// Invalid returns a report carrying the aggregated issue message.
func Invalid(message string) Report { return Report{invalid: &message} }

// IsValid reports whether the run found no issues.
func (r Report) IsValid() bool { return r.invalid == nil }

// Message returns the aggregated issue text, empty for a Valid report.
func (r Report) Message() string {
	if r.invalid == nil {
		return ""
	}
	return *r.invalid
}

// MarshalJSON renders the two-variant wire shape.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.invalid == nil {
		return []byte(`{"Valid":null}`), nil
	}
	return json.Marshal(map[string]string{"Invalid": *r.invalid})
}

// UnmarshalJSON parses the wire shape back. Exactly one of the two
// variant keys must be present.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		Valid   *json.RawMessage `json:"Valid"`
		Invalid *string          `json:"Invalid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("report: parse: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("report: parse: %w", err)
	}
	_, hasValid := keys["Valid"]
	_, hasInvalid := keys["Invalid"]
	switch {
	case hasValid == hasInvalid:
		return fmt.Errorf("report: expected exactly one of %q or %q", "Valid", "Invalid")
	case hasInvalid:
		if raw.Invalid == nil || *raw.Invalid == "" {
			return fmt.Errorf("report: %q variant requires a non-empty message", "Invalid")
		}
		r.invalid = raw.Invalid
	default:
		r.invalid = nil
	}
	return nil
}

// Aggregate folds outcomes into a Report. A pure function: no I/O, no
// clock. Outcome order is preserved, so the rendered message is stable
// for a given input.
func Aggregate(outcomes []check.Outcome) Report {
	var lines []string
	for _, o := range outcomes {
		if o.Healthy() {
			continue
		}
		lines = append(lines, o.Line())
	}
	if len(lines) == 0 {
		return Valid()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issues.", len(lines))
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return Invalid(b.String())
}
