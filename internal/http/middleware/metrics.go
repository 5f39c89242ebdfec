package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
	MinutesCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_minutes_committed_total",
			Help: "Whole minutes committed to lifetime/weekly counters",
		},
	)
	QuotaForceStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_quota_force_stops_total",
			Help: "Content sessions force-terminated at the daily quota cap",
		},
	)
	Purchases = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unlock_purchases_total",
			Help: "Unlock purchases by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(MinutesCommitted)
	prometheus.MustRegister(QuotaForceStops)
	prometheus.MustRegister(Purchases)
}
