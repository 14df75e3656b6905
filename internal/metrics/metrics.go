package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "osbctl"
)

var (
	registryRequestBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

	// Session Metrics
	SessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_total",
		Help:      "Count of configuration sessions by terminal state.",
	}, []string{"terminal_state"})

	// Workflow Metrics
	UndeployOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "undeploy_outcomes_total",
		Help:      "Count of undeploy outcome rows by object type and status.",
	}, []string{"object_type", "status"})

	ToggleOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toggle_outcomes_total",
		Help:      "Count of state-toggle outcome rows by target and status.",
	}, []string{"target", "status"})

	EditRollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edit_rollbacks_total",
		Help:      "Count of domain edit transactions rolled back.",
	}, []string{"reason"})

	// Registry Client Metrics
	RegistryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registry_request_duration_seconds",
		Help:      "Time taken for one registry management API request.",
		Buckets:   registryRequestBuckets,
	}, []string{"method"})

	RegistryRequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registry_request_errors_total",
		Help:      "Count of failed registry management API requests.",
	}, []string{"method"})
)
