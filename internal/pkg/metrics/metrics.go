package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every qrlookup metric plus the Go and process collectors.
// It is served on /metrics by the status server.
var Registry = prometheus.NewRegistry()

var (
	// FetchTotal counts HTTP exchanges with the lookup service by status code.
	// code is the numeric status, or "error" when the transport failed.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrlookup_fetch_total",
			Help: "Total number of GET requests sent to the lookup service.",
		},
		[]string{"code"},
	)

	// FetchLatency records the duration of one GET exchange.
	FetchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrlookup_fetch_duration_seconds",
			Help:    "Latency of GET requests to the lookup service.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LookupTotal counts finished lookups. outcome is "success" or an error kind.
	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrlookup_lookup_total",
			Help: "Total number of finished vehicle lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// LookupLatency records the end-to-end duration of a lookup.
	LookupLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrlookup_lookup_duration_seconds",
			Help:    "End-to-end latency of vehicle lookups.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LookupRejectedTotal counts scans refused because a lookup was in flight.
	LookupRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qrlookup_lookup_rejected_total",
			Help: "Total number of lookups rejected while another one was in flight.",
		},
	)

	// LookupInFlight is 1 while a lookup is running.
	LookupInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrlookup_lookup_in_flight",
			Help: "Whether a vehicle lookup is currently in flight (1) or not (0).",
		},
	)

	// ScanTotal counts scan outcomes. result is "code" or a capability failure reason.
	ScanTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrlookup_scan_total",
			Help: "Total number of scan outcomes received by source and result.",
		},
		[]string{"source", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FetchTotal,
		FetchLatency,
		LookupTotal,
		LookupLatency,
		LookupRejectedTotal,
		LookupInFlight,
		ScanTotal,
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
