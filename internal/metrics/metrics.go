package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AppointmentsBookedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_appointments_booked_total",
		Help: "Total number of appointments successfully booked.",
	})

	StatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_appointment_status_changes_total",
		Help: "Total number of verified appointment status transitions, by target status.",
	},
		[]string{"status"},
	)

	AppointmentsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_appointments_deleted_total",
		Help: "Total number of appointments deleted.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_operation_errors_total",
		Help: "Total number of failed operations, by operation and error kind.",
	},
		[]string{"operation", "kind"},
	)

	DegradedEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_listing_degraded_entries_total",
		Help: "Total number of listed records rebuilt with placeholder values.",
	})

	MechanicsSeededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workshop_mechanics_seeded_total",
		Help: "Total number of default mechanics inserted into an empty directory.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_http_requests_total",
		Help: "Total number of HTTP requests, by method and status code.",
	},
		[]string{"method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workshop_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method"},
	)
)
