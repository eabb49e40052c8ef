package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks reads served from the store
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheable_cache_hits_total",
			Help: "Total number of cache reads served from the store",
		},
	)

	// CacheMisses tracks reads that found no usable entry
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheable_cache_misses_total",
			Help: "Total number of cache reads that found no entry",
		},
	)

	// CacheWrites tracks store writes by outcome
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheable_cache_writes_total",
			Help: "Total number of cache writes",
		},
		[]string{"result"}, // "stored", "rejected"
	)

	// CacheForgets tracks forget calls by whether an entry was removed
	CacheForgets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheable_cache_forgets_total",
			Help: "Total number of cache forgets",
		},
		[]string{"result"}, // "removed", "absent"
	)

	// CacheErrors tracks store and codec failures
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheable_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "forget", "decode", "encode"
	)

	// ModelSyncs tracks class-level cache syncs triggered by model lifecycle events
	ModelSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheable_model_syncs_total",
			Help: "Total number of model cache syncs",
		},
		[]string{"model", "result"}, // result: "ok", "error"
	)
)
