// Package metrics defines and registers all custom Prometheus metrics for the
// itinerary sync service. It sits outside both the core and the transport
// layers so either side can observe without depending on the other, and is
// the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sync"

// ── Sync operation metrics ────────────────────────────────────────────────────

// ReadsTotal counts Get operations that completed successfully.
// Label:
//   - result: "found" (record exists) or "empty" (first-time user)
var ReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_total",
		Help:      "Total number of successful sync reads, by result.",
	},
	[]string{"result"},
)

// WritesTotal counts Put operations that committed successfully.
var WritesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writes_total",
		Help:      "Total number of successful sync writes.",
	},
)

// StoreErrorsTotal counts persistence failures.
// Label:
//   - op: "get", "put", or "stats"
var StoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_errors_total",
		Help:      "Total number of store operation failures, by operation.",
	},
	[]string{"op"},
)

// StoreDuration measures how long a single store operation takes.
// Label:
//   - op: "get", "put", or "stats"
var StoreDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_duration_seconds",
		Help:      "Duration of store operations from service call to commit.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)

// ── Transport metrics ─────────────────────────────────────────────────────────

// ValidationRejectionsTotal counts requests rejected for a malformed or
// out-of-range user identifier before any store access.
var ValidationRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_rejections_total",
		Help:      "Total number of requests rejected by identifier validation.",
	},
)

// RateLimitRejectionsTotal counts requests rejected by a rate limiter.
// Label:
//   - limiter: "api" (general) or "sync" (endpoint-specific)
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by rate limiting, by limiter.",
	},
	[]string{"limiter"},
)
