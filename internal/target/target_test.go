package target

import (
	"errors"
	"testing"
	"time"
)

func TestParseList_Basic(t *testing.T) {
	text := "good.example\nother.example:8443\n"
	targets, err := ParseList(text, Defaults{})
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets len = %d, want 2", len(targets))
	}
	if targets[0].Domain != "good.example" || targets[0].Port != DefaultPort {
		t.Errorf("targets[0] = %+v", targets[0])
	}
	if targets[0].Threshold != DefaultThreshold {
		t.Errorf("targets[0].Threshold = %v, want %v", targets[0].Threshold, DefaultThreshold)
	}
	if targets[1].Domain != "other.example" || targets[1].Port != 8443 {
		t.Errorf("targets[1] = %+v", targets[1])
	}
}

func TestParseList_CommentsBlanksAndCRLF(t *testing.T) {
	text := "# fleet certs\r\n\r\ngood.example  \r\n\n  # trailing comment\nlast.example\r\n"
	targets, err := ParseList(text, Defaults{})
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("targets len = %d, want 2", len(targets))
	}
	if targets[0].Domain != "good.example" || targets[1].Domain != "last.example" {
		t.Errorf("domains = %q, %q", targets[0].Domain, targets[1].Domain)
	}
}

func TestParseList_Empty(t *testing.T) {
	for _, text := range []string{"", "\n", "# only comments\n\n"} {
		targets, err := ParseList(text, Defaults{})
		if err != nil {
			t.Fatalf("ParseList(%q) error = %v", text, err)
		}
		if len(targets) != 0 {
			t.Errorf("ParseList(%q) len = %d, want 0", text, len(targets))
		}
	}
}

func TestParseList_ThresholdOverride(t *testing.T) {
	cases := []struct {
		line string
		want time.Duration
	}{
		{"a.example 30", 30 * 24 * time.Hour},
		{"a.example 30d", 30 * 24 * time.Hour},
		{"a.example 720h", 720 * time.Hour},
		{"a.example:8443 7d", 7 * 24 * time.Hour},
	}
	for _, c := range cases {
		targets, err := ParseList(c.line, Defaults{})
		if err != nil {
			t.Fatalf("ParseList(%q) error = %v", c.line, err)
		}
		if targets[0].Threshold != c.want {
			t.Errorf("ParseList(%q) threshold = %v, want %v", c.line, targets[0].Threshold, c.want)
		}
	}
}

func TestParseList_Defaults(t *testing.T) {
	targets, err := ParseList("a.example\n", Defaults{Port: 8443, Threshold: 7 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if targets[0].Port != 8443 {
		t.Errorf("port = %d, want 8443", targets[0].Port)
	}
	if targets[0].Threshold != 7*24*time.Hour {
		t.Errorf("threshold = %v, want 168h", targets[0].Threshold)
	}
}

func TestParseList_MalformedLines(t *testing.T) {
	cases := []struct {
		text     string
		wantLine int
	}{
		{"good.example\nbad domain here\n", 2},
		{"a.example:notaport\n", 1},
		{"a.example:99999\n", 1},
		{"a.example -3d\n", 1},
		{"a.example bogus\n", 1},
		{"un:der_score\n", 1},
		{"https://a.example\n", 1},
	}
	for _, c := range cases {
		_, err := ParseList(c.text, Defaults{})
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseList(%q) error = %v, want *ParseError", c.text, err)
		}
		if pe.Line != c.wantLine {
			t.Errorf("ParseList(%q) line = %d, want %d", c.text, pe.Line, c.wantLine)
		}
	}
}

func TestParseList_DuplicatesKept(t *testing.T) {
	targets, err := ParseList("a.example\na.example\n", Defaults{})
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if len(targets) != 2 {
		t.Errorf("duplicates should be kept, len = %d", len(targets))
	}
}

func TestTarget_Addr(t *testing.T) {
	tgt := Target{Domain: "a.example", Port: 8443}
	if got := tgt.Addr(); got != "a.example:8443" {
		t.Errorf("Addr() = %q", got)
	}
}
