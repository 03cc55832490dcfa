package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kycdesk_submissions_received_total",
		Help: "Total number of KYC submissions accepted through public form links.",
	})

	SubmissionsArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kycdesk_submissions_archived_total",
		Help: "Total number of submissions moved to the archive.",
	})

	RecommendationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kycdesk_recommendations_total",
		Help: "Total number of recommendations saved on submissions.",
	})

	ReportsExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kycdesk_reports_exported_total",
		Help: "Total number of CSV submission reports generated for download.",
	})

	ReportsSharedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kycdesk_reports_shared_total",
		Help: "Total number of submission reports shared, by channel.",
	},
		[]string{"channel"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kycdesk_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kycdesk_http_requests_total",
		Help: "HTTP requests served, by method, route pattern and status code.",
	},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kycdesk_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method", "route"},
	)
)
