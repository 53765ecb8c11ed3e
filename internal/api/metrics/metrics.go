// Package metrics defines and registers all custom Prometheus metrics for
// the ClientTracker CRM API. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ClientsCreatedTotal counts newly created clients.
// Label:
//   - stage: the initial pipeline stage name (e.g. "First Contact")
var ClientsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_created_total",
		Help:      "Total number of clients created, by initial stage.",
	},
	[]string{"stage"},
)

// StageTransitionsTotal counts stage changes applied to clients.
// Label:
//   - stage: the destination stage name
var StageTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_transitions_total",
		Help:      "Total number of client stage transitions, by destination stage.",
	},
	[]string{"stage"},
)

// ClientsDroppedTotal counts clients marked as dropped.
var ClientsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clients_dropped_total",
		Help:      "Total number of clients marked as dropped.",
	},
)

// NotificationsTotal counts side-channel delivery outcomes.
// Label:
//   - result: "sent", "failed", or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification delivery attempts, by result.",
	},
	[]string{"result"},
)

// DashboardComputations measures how long a dashboard stats computation takes.
// Label:
//   - scope: "all" or "owner" (restricted principal)
var DashboardComputations = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dashboard_computation_duration_seconds",
		Help:      "Duration of dashboard stats computations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"scope"},
)

// AttachmentsUploadedTotal counts stored attachments.
// Label:
//   - target: "client" or "note"
var AttachmentsUploadedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachments_uploaded_total",
		Help:      "Total number of attachments uploaded, by target.",
	},
	[]string{"target"},
)
