package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// AuthAttempts counts sign-in attempts by method (local|google) and outcome.
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "auth_attempts_total", Help: "Sign-in attempts by method and outcome."},
		[]string{"method", "outcome"},
	)
	DBConnectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campus", Name: "db_connect_attempts_total", Help: "MongoDB connection attempts by strategy and outcome."},
		[]string{"strategy", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(DBConnectAttempts)
}
