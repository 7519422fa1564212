package dnsbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	probeResultSuccess = "success"
	probeResultFailure = "failure"
)

var (
	probeDurationMetrics = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dnsrank",
		Name:      "probe_duration_seconds",
		Help:      "Duration of successful DNS lookups in seconds",
	}, []string{"executor"})

	probesTotalMetrics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dnsrank",
		Name:      "probes_total",
		Help:      "The total number of DNS lookups",
	}, []string{"executor", "result"})

	skippedServersTotalMetrics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dnsrank",
		Name:      "skipped_servers_total",
		Help:      "The total number of servers whose benchmark failed",
	})
)
