// Package metrics defines the custom Prometheus metrics of the portal. It is
// the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed by the echoprometheus handler at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayDecisionsTotal counts access decisions.
// Labels:
//   - state: the caller's access state (e.g. "anonymous", "doctor_pending")
//   - outcome: "continue" or "redirect"
var GatewayDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_decisions_total",
		Help:      "Total number of access decisions, by caller state and outcome.",
	},
	[]string{"state", "outcome"},
)

// IdentityResolutionsTotal counts identity lookups that carried a credential.
// Label:
//   - result: "resolved", "unauthenticated", "profile_missing" or "error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of identity resolutions, by result.",
	},
	[]string{"result"},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// AssignmentOperationsTotal counts adopt and release calls.
// Labels:
//   - op: "adopt" or "release"
//   - result: "ok" or the mapped error kind (e.g. "conflict")
var AssignmentOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignment_operations_total",
		Help:      "Total number of assignment operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// BookingsTotal counts booking attempts.
// Label:
//   - result: "ok" or the mapped error kind
var BookingsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_total",
		Help:      "Total number of booking attempts, by result.",
	},
	[]string{"result"},
)

// AppointmentTransitionsTotal counts requested state changes.
// Labels:
//   - to: the requested state
//   - result: "ok" or the mapped error kind
var AppointmentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_transitions_total",
		Help:      "Total number of appointment transitions, by target state and result.",
	},
	[]string{"to", "result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsDroppedTotal counts events dropped because a worker queue was full.
var NotificationsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of domain events dropped because the worker queue was full.",
	},
)

// NotificationsQueueDepth tracks pending events per worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures one sink delivery.
// Label:
//   - result: "ok" or "error"
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of delivering one domain event to the notification sink.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
