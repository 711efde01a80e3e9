package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Total number of calls made to the storefront API",
	}, []string{"method", "resource", "outcome"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Latency of calls made to the storefront API",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource"})

	TableLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "table_loads_total",
		Help: "Data table loads by outcome (ok, fallback, failed, stale)",
	}, []string{"resource", "outcome"})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "table_mutations_total",
		Help: "Create/update/delete mutations dispatched by the console",
	}, []string{"resource", "action", "outcome"})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "form_validation_failures_total",
		Help: "Form submissions rejected before any network call",
	}, []string{"form"})

	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "admin_sessions_created_total",
		Help: "Total number of admin sign-ins",
	})

	SessionsClearedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_sessions_cleared_total",
		Help: "Admin sessions cleared, by reason",
	}, []string{"reason"})

	DashboardRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_refresh_total",
		Help: "Dashboard refreshes by source (stats, aggregate, sample)",
	}, []string{"source"})

	AuditEventsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_events_failed_total",
		Help: "Admin action events that could not be recorded",
	}, []string{"sink"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
