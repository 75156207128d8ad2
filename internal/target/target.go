package target

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is used when a target line carries no port override.
const DefaultPort = 443

// DefaultThreshold is the near-expiry window used when a target line
// carries no threshold override.
const DefaultThreshold = 14 * 24 * time.Hour

const commentMarker = "#"

// Target is one domain configured for checking. Immutable once parsed.
type Target struct {
	Domain    string
	Port      int
	Threshold time.Duration
}

// Addr returns the host:port dial address for the target.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Domain, strconv.Itoa(t.Port))
}

// ParseError reports a target line that could not be parsed.
type ParseError struct {
	Line int    // 1-based line number in the input text
	Text string // offending line, trimmed
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("target list line %d %q: %s", e.Line, e.Text, e.Msg)
}

// Defaults overrides the built-in port and threshold defaults for lines
// that do not specify their own. Zero fields fall back to the package
// constants.
type Defaults struct {
	Port      int
	Threshold time.Duration
}

// ParseList parses the raw target list text. Duplicate domains are not
// deduplicated — they are simply checked again. An empty or comment-only
// input yields an empty slice and no error.
func ParseList(text string, def Defaults) ([]Target, error) {
	if def.Port == 0 {
		def.Port = DefaultPort
	}
	if def.Threshold == 0 {
		def.Threshold = DefaultThreshold
	}

	var targets []Target
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}
		t, err := parseLine(line, i+1, def)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// parseLine parses a single non-empty, non-comment line.
func parseLine(line string, lineNo int, def Defaults) (Target, error) {
	fields := strings.Fields(line)
	if len(fields) > 2 {
		return Target{}, &ParseError{Line: lineNo, Text: line, Msg: "expected \"domain[:port] [threshold]\""}
	}

	t := Target{Port: def.Port, Threshold: def.Threshold}

	host := fields[0]
	if strings.Contains(host, ":") {
		h, p, err := net.SplitHostPort(host)
		if err != nil {
			return Target{}, &ParseError{Line: lineNo, Text: line, Msg: "invalid host:port"}
		}
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Target{}, &ParseError{Line: lineNo, Text: line, Msg: fmt.Sprintf("invalid port %q", p)}
		}
		host = h
		t.Port = port
	}
	if !validDomain(host) {
		return Target{}, &ParseError{Line: lineNo, Text: line, Msg: fmt.Sprintf("invalid domain %q", host)}
	}
	t.Domain = host

	if len(fields) == 2 {
		d, err := parseThreshold(fields[1])
		if err != nil {
			return Target{}, &ParseError{Line: lineNo, Text: line, Msg: err.Error()}
		}
		t.Threshold = d
	}
	return t, nil
}

// parseThreshold accepts a bare day count ("30"), a day suffix ("30d"),
// or any Go duration string ("720h").
func parseThreshold(s string) (time.Duration, error) {
	days := s
	if strings.HasSuffix(s, "d") {
		days = strings.TrimSuffix(s, "d")
	}
	if n, err := strconv.Atoi(days); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("threshold must be positive, got %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("threshold must be positive, got %q", s)
	}
	return d, nil
}

// validDomain rejects values that cannot be a dialable host name.
// Intentionally permissive beyond that — DNS is the real arbiter.
func validDomain(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-':
		default:
			return false
		}
	}
	return !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".")
}
