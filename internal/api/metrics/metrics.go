// Package metrics defines the custom Prometheus metrics of the study API.
// It is the single source of truth for metric names, labels, and help
// strings. Vectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "studies"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts auth endpoint outcomes.
// Labels:
//   - action: "signup", "login", "refresh", "logout"
//   - result: "ok" or "error"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of auth requests, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Library metrics ───────────────────────────────────────────────────────────

// StudiesAcquiredTotal counts successful study acquisitions.
var StudiesAcquiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "acquired_total",
		Help:      "Total number of studies added to a user library.",
	},
)

// ChaptersCompletedTotal counts completed chapters.
// Label:
//   - with_notes: "true" when the reader left journal notes
var ChaptersCompletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chapters_completed_total",
		Help:      "Total number of chapters marked as completed.",
	},
	[]string{"with_notes"},
)

// AdminDeniedTotal counts requests rejected by the admin guard.
var AdminDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_denied_total",
		Help:      "Total number of admin console requests denied.",
	},
)

// ── Activity queue metrics ────────────────────────────────────────────────────

// ActivityQueue is what the activity gauges read from.
type ActivityQueue interface {
	Depth() int
	Dropped() uint64
}

// RegisterActivityQueue exposes the depth and drop count of q. Call once at
// startup.
func RegisterActivityQueue(reg prometheus.Registerer, q ActivityQueue) {
	f := promauto.With(reg)
	f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_queue_depth",
			Help:      "Current number of activity lines waiting to be persisted.",
		},
		func() float64 { return float64(q.Depth()) },
	)
	f.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_dropped_total",
			Help:      "Total number of activity lines dropped because a queue shard was full.",
		},
		func() float64 { return float64(q.Dropped()) },
	)
}
