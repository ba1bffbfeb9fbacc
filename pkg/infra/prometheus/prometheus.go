package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	domainLabels = []string{"domain"}

	AirdropsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "devportal_airdrops_total",
			Help: "Airdrop requests by outcome",
		},
		[]string{"outcome"},
	)

	AdmissionDeniedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "devportal_admission_denied_total",
			Help: "Admission denials by usage domain and limit hit",
		},
		append(domainLabels, "reason"),
	)

	JobRunsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "devportal_job_runs_total",
			Help: "Scheduler job executions by job name and status",
		},
		[]string{"job", "status"},
	)

	JobRecordsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "devportal_job_records_total",
			Help: "Rows processed by scheduler jobs, by job name and result",
		},
		[]string{"job", "result"},
	)

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "devportal_requests_total",
			Help: "API requests by method and status",
		},
		[]string{"method", "status"},
	)
)

// Registry exposes the dedicated registry for the metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
