package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	reasonExpired  = "expired"
	reasonCapacity = "capacity"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emotunes_cache_hits_total",
		Help: "Cache lookups that returned a live entry.",
	}, []string{"cache"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emotunes_cache_misses_total",
		Help: "Cache lookups that found nothing or an expired entry.",
	}, []string{"cache"})
	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emotunes_cache_evictions_total",
		Help: "Entries removed by expiry or capacity eviction.",
	}, []string{"cache", "reason"})
)
