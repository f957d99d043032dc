// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stopwork"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// TransitionsTotal counts committed audit actions.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transitions_total",
		Help:      "Committed event transitions by audit action.",
	}, []string{"action"})

	// RejectedTransitionsTotal counts transitions refused by the workflow rules.
	RejectedTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_transitions_total",
		Help:      "Transitions refused, by operation and error class.",
	}, []string{"operation", "class"})

	ActiveEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_events",
		Help:      "Events that are not CLEARED, as of the last blocked set publication.",
	})

	BlockedResources = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blocked_resources",
		Help:      "Distinct blocked resources by kind.",
	}, []string{"kind"})

	BlockedSetRevision = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "blocked_set_revision",
		Help:      "Revision of the last published blocked set.",
	})

	JobResolutionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_resolution_failures_total",
		Help:      "Failed job assignment lookups by scope type.",
	}, []string{"scope_type"})

	JobResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_resolution_duration_seconds",
		Help:      "Job assignment lookup latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	})

	FeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_clients",
		Help:      "Connected blocked-resource feed subscribers.",
	})

	FeedPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_publish_failures_total",
		Help:      "Failed blocked set publications by sink.",
	}, []string{"sink"})
)
