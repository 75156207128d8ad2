package metrics

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/certpatrol/certpatrol/internal/check"
)

// Exporter holds the outcomes of the most recent run and serves them as
// a Prometheus scrape target. Safe for concurrent use.
type Exporter struct {
	mu       sync.RWMutex
	outcomes []check.Outcome
	lastRun  time.Time
	runs     float64
}

// NewExporter returns an empty Exporter. Until the first Observe it
// exports only a zero run counter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Observe replaces the exported snapshot with the given run's outcomes.
func (e *Exporter) Observe(outcomes []check.Outcome, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes = outcomes
	e.lastRun = at
	e.runs++
}

// ServeHTTP renders the current snapshot in text exposition format.
func (e *Exporter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range e.families() {
		if err := enc.Encode(mf); err != nil {
			slog.Error("metrics: encode failed", "family", mf.GetName(), "err", err)
			return
		}
	}
}

// families builds the metric families from the held snapshot.
func (e *Exporter) families() []*dto.MetricFamily {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var issues float64
	healthy := make([]*dto.Metric, 0, len(e.outcomes))
	notAfter := make([]*dto.Metric, 0, len(e.outcomes))
	for _, o := range e.outcomes {
		v := 1.0
		if !o.Healthy() {
			v = 0
			issues++
		}
		healthy = append(healthy, &dto.Metric{
			Label: []*dto.LabelPair{{Name: str("domain"), Value: str(o.Domain)}},
			Gauge: &dto.Gauge{Value: f64(v)},
		})
		if !o.NotAfter.IsZero() {
			notAfter = append(notAfter, &dto.Metric{
				Label: []*dto.LabelPair{{Name: str("domain"), Value: str(o.Domain)}},
				Gauge: &dto.Gauge{Value: f64(float64(o.NotAfter.Unix()))},
			})
		}
	}

	families := []*dto.MetricFamily{
		{
			Name:   str("certpatrol_runs_total"),
			Help:   str("Completed check runs since process start."),
			Type:   mt(dto.MetricType_COUNTER),
			Metric: []*dto.Metric{{Counter: &dto.Counter{Value: f64(e.runs)}}},
		},
	}
	if !e.lastRun.IsZero() {
		families = append(families,
			&dto.MetricFamily{
				Name:   str("certpatrol_last_run_timestamp_seconds"),
				Help:   str("Unix time the last check run started."),
				Type:   mt(dto.MetricType_GAUGE),
				Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: f64(float64(e.lastRun.Unix()))}}},
			},
			&dto.MetricFamily{
				Name:   str("certpatrol_last_run_issues"),
				Help:   str("Issues found by the last check run."),
				Type:   mt(dto.MetricType_GAUGE),
				Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: f64(issues)}}},
			},
		)
	}
	if len(healthy) > 0 {
		families = append(families, &dto.MetricFamily{
			Name:   str("certpatrol_domain_healthy"),
			Help:   str("1 when the domain's last check found no issue, 0 otherwise."),
			Type:   mt(dto.MetricType_GAUGE),
			Metric: healthy,
		})
	}
	if len(notAfter) > 0 {
		families = append(families, &dto.MetricFamily{
			Name:   str("certpatrol_cert_not_after_timestamp_seconds"),
			Help:   str("Unix time the domain's leaf certificate expires."),
			Type:   mt(dto.MetricType_GAUGE),
			Metric: notAfter,
		})
	}
	return families
}

func str(s string) *string                { return &s }
func f64(v float64) *float64              { return &v }
func mt(t dto.MetricType) *dto.MetricType { return &t }
