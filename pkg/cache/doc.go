// Package cache provides a generic, thread-safe cache with no eviction
// policy, built-in statistics, and optional Prometheus metrics.
//
// # Quick Start
//
//	c, _ := cache.NewSimple[string]()
//	c.Set("key", "value")
//	value, ok := c.Get("key")
//
// With metrics and an eviction callback:
//
//	c, _ := cache.NewSimple[*Scheme](
//		cache.WithMetrics[*Scheme](registry, "scheme_cache"),
//		cache.WithEvictionCallback[*Scheme](func(key string, _ *Scheme) {
//			log.Printf("evicted: %s", key)
//		}),
//	)
//
// # Observability
//
// Statistics are always on, tracked with atomic counters and available
// via Stats() with zero configuration. Prometheus metrics are optional,
// enabled per-instance with WithMetrics; both track the same operations
// independently so Stats() still works in deployments with no metrics
// registry wired up.
//
// # Thread Safety
//
// All operations are safe for concurrent use: reads take the RWMutex's
// read lock, writes take its write lock, and eviction callbacks run
// outside the lock to avoid deadlocking a callback that calls back into
// the cache.
package cache
