package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/certpatrol/certpatrol/internal/config"
	"github.com/certpatrol/certpatrol/internal/report"
)

var startedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func delivery(rep report.Report) Delivery {
	return Delivery{
		RunID:     "run-123",
		StartedAt: startedAt,
		Targets:   2,
		Report:    rep,
	}
}

func TestWriterSink_ValidReport(t *testing.T) {
	var buf bytes.Buffer
	s := &WriterSink{W: &buf}
	if err := s.Deliver(context.Background(), delivery(report.Valid())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var got map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if string(got["run_id"]) != `"run-123"` {
		t.Errorf("run_id = %s", got["run_id"])
	}
	if string(got["report"]) != `{"Valid":null}` {
		t.Errorf("report = %s", got["report"])
	}
}

func TestWriterSink_InvalidReport(t *testing.T) {
	var buf bytes.Buffer
	s := &WriterSink{W: &buf}
	rep := report.Invalid("Found 1 issues.\na.example: network error: timeout")
	if err := s.Deliver(context.Background(), delivery(rep)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"Invalid":"Found 1 issues.`) {
		t.Errorf("output missing invalid variant: %s", buf.String())
	}
}

func TestWebhookSink_Slack(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
	}))
	defer srv.Close()

	t.Setenv("SINK_TEST_URL", srv.URL)
	sinks := FromConfig(config.SinksConfig{Webhooks: []config.WebhookConfig{
		{Type: "slack", URLEnv: "SINK_TEST_URL"},
	}})
	if len(sinks) != 1 {
		t.Fatalf("sinks len = %d, want 1", len(sinks))
	}

	rep := report.Invalid("Found 1 issues.\nexpired.example: expired (not_after=2026-02-28T12:00:00Z)")
	if err := sinks[0].Deliver(context.Background(), delivery(rep)); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var payload map[string]string
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not json: %v (%s)", err, gotBody)
	}
	if !strings.Contains(payload["text"], "expired.example") {
		t.Errorf("slack text missing domain: %q", payload["text"])
	}
}

func TestWebhookSink_HTTPCarriesEnvelope(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
	}))
	defer srv.Close()

	t.Setenv("SINK_TEST_URL", srv.URL)
	sinks := FromConfig(config.SinksConfig{Webhooks: []config.WebhookConfig{
		{Type: "http", URLEnv: "SINK_TEST_URL"},
	}})

	if err := sinks[0].Deliver(context.Background(), delivery(report.Valid())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if string(env["report"]) != `{"Valid":null}` {
		t.Errorf("report = %s", env["report"])
	}
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv("SINK_TEST_URL", srv.URL)
	sinks := FromConfig(config.SinksConfig{Webhooks: []config.WebhookConfig{
		{Type: "http", URLEnv: "SINK_TEST_URL"},
	}})
	if err := sinks[0].Deliver(context.Background(), delivery(report.Valid())); err == nil {
		t.Fatal("Deliver() should surface HTTP 502")
	}
}

func TestFromConfig_SkipsUnsetURL(t *testing.T) {
	sinks := FromConfig(config.SinksConfig{Webhooks: []config.WebhookConfig{
		{Type: "slack", URLEnv: "SINK_TEST_DEFINITELY_UNSET"},
	}})
	if len(sinks) != 0 {
		t.Errorf("sinks len = %d, want 0", len(sinks))
	}
}
