package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/certpatrol/certpatrol/internal/config"
	"github.com/certpatrol/certpatrol/internal/report"
)

const deliverTimeout = 10 * time.Second

// Delivery is the envelope handed to every sink: the report plus enough
// invocation metadata for the consumer to correlate runs.
type Delivery struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Targets   int           `json:"targets"`
	Report    report.Report `json:"report"`
}

// Sink receives one Delivery per completed check run.
type Sink interface {
	Deliver(ctx context.Context, d Delivery) error
}

// FromConfig builds the configured webhook sinks. Webhooks whose URL
// environment variable is unset are skipped with a warning rather than
// failing the run.
func FromConfig(cfg config.SinksConfig) []Sink {
	var sinks []Sink
	for _, wh := range cfg.Webhooks {
		if wh.URL() == "" {
			slog.Warn("sink: webhook url env is unset, skipping", "type", wh.Type, "url_env", wh.URLEnv)
			continue
		}
		sinks = append(sinks, &WebhookSink{
			kind:   wh.Type,
			cfg:    wh,
			client: &http.Client{Timeout: deliverTimeout},
		})
	}
	return sinks
}

// DeliverAll fans d out to every sink. Errors are logged per sink and
// swallowed.
func DeliverAll(ctx context.Context, sinks []Sink, d Delivery) {
	for _, s := range sinks {
		if err := s.Deliver(ctx, d); err != nil {
			slog.Error("sink: delivery failed", "run_id", d.RunID, "err", err)
		} else {
			slog.Debug("sink: delivered", "run_id", d.RunID)
		}
	}
}

// WriterSink serializes the delivery envelope as JSON to an io.Writer.
type WriterSink struct {
	W io.Writer
}

// Deliver writes the envelope followed by a newline.
func (s *WriterSink) Deliver(_ context.Context, d Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("sink: marshal delivery: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("sink: write: %w", err)
	}
	return nil
}

// WebhookSink posts the report to a Slack, Teams, or generic HTTP target.
type WebhookSink struct {
	kind   string
	cfg    config.WebhookConfig
	client *http.Client
}

// Deliver formats the payload for the webhook kind and posts it.
func (s *WebhookSink) Deliver(ctx context.Context, d Delivery) error {
	var body []byte
	switch s.kind {
	case "slack":
		body = slackPayload(d)
	case "teams":
		body = teamsPayload(d)
	default:
		var err error
		body, err = json.Marshal(d)
		if err != nil {
			return fmt.Errorf("sink: marshal delivery: %w", err)
		}
	}
	return s.post(ctx, body)
}

func slackPayload(d Delivery) []byte {
	text := "All monitored certificates are healthy."
	if !d.Report.IsValid() {
		text = "Certificate issues found:\n" + d.Report.Message()
	}
	body, _ := json.Marshal(map[string]string{"text": text})
	return body
}

func teamsPayload(d Delivery) []byte {
	title := "Certificate check passed"
	color := "2EB67D"
	text := fmt.Sprintf("All %d monitored domains are healthy.", d.Targets)
	if !d.Report.IsValid() {
		title = "Certificate check failed"
		color = "E01E5A"
		text = d.Report.Message()
	}
	body, _ := json.Marshal(map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": color,
		"summary":    title,
		"title":      title,
		"text":       text,
	})
	return body
}

func (s *WebhookSink) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink: http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sink: webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}
