package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "bookings_created_total",
			Help:      "Bookings created, by path (booking or payment).",
		},
		[]string{"via"},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "booking_rejected_total",
			Help:      "Booking attempts rejected by the availability check.",
		},
		[]string{"reason"},
	)

	syncRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "crm_sync_records_total",
			Help:      "CRM sync records by object and result.",
		},
		[]string{"object", "result"},
	)

	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hotel",
			Name:      "crm_sync_duration_seconds",
			Help:      "Duration of complete CRM sync runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	syncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "crm_sync_runs_total",
			Help:      "CRM sync runs by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			bookingsCreated, bookingRejected,
			syncRecords, syncDuration, syncRuns,
		)
	})
}

func ObserveHTTP(method, route, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func IncBookingCreated(via string) {
	bookingsCreated.WithLabelValues(via).Inc()
}

func IncBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func IncSyncRecord(object, result string) {
	syncRecords.WithLabelValues(object, result).Inc()
}

func ObserveSyncRun(outcome string, d time.Duration) {
	syncRuns.WithLabelValues(outcome).Inc()
	syncDuration.Observe(d.Seconds())
}
