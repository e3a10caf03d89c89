// ABOUTME: Tests for cache statistics hit rate derivation
// ABOUTME: Covers the zero-traffic guard and mixed hit/miss ratios
package models

import (
	"math"
	"testing"
)

func TestHitRate(t *testing.T) {
	tests := []struct {
		name   string
		hits   int
		misses int
		want   float64
	}{
		{"no traffic", 0, 0, 0.0},
		{"all hits", 10, 0, 1.0},
		{"all misses", 0, 10, 0.0},
		{"three quarters", 75, 25, 0.75},
		{"single hit", 1, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := CacheStats{CacheHits: tt.hits, CacheMisses: tt.misses}
			if got := stats.HitRate(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
			if got := stats.Lookups(); got != tt.hits+tt.misses {
				t.Errorf("Lookups() = %d, want %d", got, tt.hits+tt.misses)
			}
		})
	}
}
