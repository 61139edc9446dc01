// Package metrics defines and registers all custom Prometheus metrics for the
// cyco-engine gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cyco"

// ── Access control ────────────────────────────────────────────────────────────

// AuthDecisionsTotal counts guard decisions.
// Labels:
//   - guard: "authenticate" or "require_admin"
//   - result: "allow", "deny" or "error"
var AuthDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Total number of authorization guard decisions.",
	},
	[]string{"guard", "result"},
)

// ── Mutations ─────────────────────────────────────────────────────────────────

// WishlistAddsTotal counts wishlist set-add attempts.
// Label:
//   - result: "added", "duplicate", "user_not_found" or "error"
var WishlistAddsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wishlist_adds_total",
		Help:      "Total number of wishlist add attempts, by outcome.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user registrations, by outcome.",
	},
	[]string{"result"},
)

// ForumViewUpdatesTotal counts view counter writes.
// Label:
//   - success: "true" when a record was matched and modified
var ForumViewUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forum_view_updates_total",
		Help:      "Total number of forum view counter updates.",
	},
	[]string{"success"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationPeers tracks the number of connected realtime peers.
var NotificationPeers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_peers",
		Help:      "Current number of connected notification peers.",
	},
)

// NotificationsDeliveredTotal counts per-peer deliveries.
// Label:
//   - result: "sent" or "dropped" (peer buffer full)
var NotificationsDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Total number of notification deliveries to individual peers.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending events in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Payments ──────────────────────────────────────────────────────────────────

// PaymentIntentsTotal counts payment intent requests.
// Label:
//   - result: "created", "replayed", "key_reused", "unavailable" or "error"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intent requests, by outcome.",
	},
	[]string{"result"},
)

// PaymentIntentDuration measures processor round-trips.
var PaymentIntentDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_intent_duration_seconds",
		Help:      "Duration of payment intent creation at the processor.",
		Buckets:   prometheus.DefBuckets,
	},
)
