package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	limiterAllowed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_ratelimit_allowed_total",
		Help: "Total number of attempts allowed by policy",
	}, []string{"policy"})

	limiterRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_ratelimit_rejected_total",
		Help: "Total number of attempts rejected by policy",
	}, []string{"policy"})
)
