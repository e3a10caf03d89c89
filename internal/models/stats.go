// ABOUTME: Cache statistics model for the embedding precompute subsystem
// ABOUTME: Tracks hits, misses, precompute time, and derived hit rate
package models

import "time"

// CacheStats captures embedding cache counters at a point in time
type CacheStats struct {
	TotalEmbeddings int           `json:"total_embeddings"`
	CacheHits       int           `json:"cache_hits"`
	CacheMisses     int           `json:"cache_misses"`
	PrecomputeTime  time.Duration `json:"precompute_time"`
	LastUpdated     time.Time     `json:"last_updated"`
}

// HitRate returns hits / (hits + misses), or 0 when there has been no traffic
func (cs *CacheStats) HitRate() float64 {
	total := cs.CacheHits + cs.CacheMisses
	if total < 1 {
		total = 1
	}
	return float64(cs.CacheHits) / float64(total)
}

// Lookups returns the total number of cache lookups recorded
func (cs *CacheStats) Lookups() int {
	return cs.CacheHits + cs.CacheMisses
}
