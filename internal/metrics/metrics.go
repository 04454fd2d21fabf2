// Package metrics records batch-run metrics for the node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"domaincreates/internal/core/domain"
)

// Metrics tracks the outcome of one run on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	DomainsExtracted prometheus.Gauge
	RunDuration      prometheus.Gauge
	FailedStage      *prometheus.GaugeVec
}

// New creates a Metrics instance with all run metrics registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "domaincreates_last_run_success",
			Help: "1 if the last run wrote a domain list, 0 otherwise",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "domaincreates_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		DomainsExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "domaincreates_domains_extracted",
			Help: "Number of domains written by the last run",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "domaincreates_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		FailedStage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "domaincreates_last_run_failed_stage",
			Help: "1 for the stage the last run failed at, absent after a successful run",
		}, []string{"stage"}),
	}
	m.registry.MustRegister(m.LastRunSuccess, m.LastRunTimestamp, m.DomainsExtracted, m.RunDuration, m.FailedStage)
	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(result *domain.RunResult) {
	m.LastRunTimestamp.Set(float64(result.CompletedAt.Unix()))
	m.RunDuration.Set(result.CompletedAt.Sub(result.StartedAt).Seconds())
	m.DomainsExtracted.Set(float64(result.Domains))
	m.FailedStage.Reset()

	if result.Success {
		m.LastRunSuccess.Set(1)
		return
	}
	m.LastRunSuccess.Set(0)
	m.FailedStage.WithLabelValues(string(result.Stage)).Set(1)
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
