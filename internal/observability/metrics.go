package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreatedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "rides_created_total", Help: "Total rides created"})
	SeatsReservedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "seats_reserved_total", Help: "Total seats reserved"})
	SeatsReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "seats_released_total", Help: "Total seats released by reservation cancellations"})
	RatingsTotal       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "ratings_total", Help: "Total ratings recorded"})

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_ledger", Name: "settlements_total", Help: "Rides settled, by outcome"},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_ledger", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_ledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
