package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_policy_cache_hits",
	Help: "Number of settings group reads served from cache",
}, []string{"group"})

var cacheLoads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_policy_cache_loads",
	Help: "Number of settings group loads from the policy store",
}, []string{"group"})

var cacheLoadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "chatguard_policy_cache_load_errors",
	Help: "Number of settings group loads that failed and were cached as unavailable",
}, []string{"group"})

var cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chatguard_policy_cache_invalidations",
	Help: "Number of settings group entries voided by invalidation",
})
