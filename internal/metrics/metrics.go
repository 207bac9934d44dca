// Package metrics exposes Prometheus instrumentation for the digest pipeline.
// A nil *Recorder is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gameday"

// Outcome labels shared by every collector.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns the collectors registered for one process.
type Recorder struct {
	runs     *prometheus.CounterVec
	fetches  *prometheus.HistogramVec
	emails   *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Digest pipeline runs by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		fetches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_fetch_seconds",
			Help:      "Latency of schedule provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Email delivery attempts by outcome.",
		}, []string{"outcome"}),
		gatherer: gatherer,
	}
	reg.MustRegister(r.runs, r.fetches, r.emails)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) RunFinished(trigger string, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(trigger, outcome(err)).Inc()
}

func (r *Recorder) FetchFinished(d time.Duration, err error) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (r *Recorder) EmailFinished(err error) {
	if r == nil {
		return
	}
	r.emails.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
