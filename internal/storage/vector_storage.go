// ABOUTME: In-process vector store with cosine distance search
// ABOUTME: Default VectorStore used when no external index is configured
package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// DefaultDimension is the expected dimension for OpenAI text-embedding-3-small
const DefaultDimension = 1536

// MemoryVectorStore is an in-memory VectorStore with exhaustive cosine
// search. Safe for concurrent readers and writers.
type MemoryVectorStore struct {
	mu        sync.RWMutex
	entries   map[string]vectorEntry
	dimension int // 0 disables dimension validation
}

type vectorEntry struct {
	vector []float64
	meta   VectorMetadata
}

// NewMemoryVectorStore creates a store validating vectors against the
// given dimension. Pass 0 to accept any dimension (used by tests).
func NewMemoryVectorStore(dimension int) *MemoryVectorStore {
	return &MemoryVectorStore{
		entries:   make(map[string]vectorEntry),
		dimension: dimension,
	}
}

// Upsert stores or replaces the vector for an id
func (s *MemoryVectorStore) Upsert(ctx context.Context, id string, vector []float64, meta VectorMetadata) error {
	if s.dimension != 0 && len(vector) != s.dimension {
		return fmt.Errorf("invalid embedding dimension: expected %d, got %d", s.dimension, len(vector))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = vectorEntry{vector: vector, meta: meta}
	return nil
}

// Query performs exhaustive cosine-distance search, nearest first
func (s *MemoryVectorStore) Query(ctx context.Context, vector []float64, k int, taskFilter string) ([]VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	hits := make([]VectorHit, 0, len(s.entries))
	for _, entry := range s.entries {
		if taskFilter != "" && entry.meta.TaskName != taskFilter {
			continue
		}
		hits = append(hits, VectorHit{
			Metadata: entry.meta,
			Distance: 1 - cosineSimilarity(vector, entry.vector),
		})
	}
	s.mu.RUnlock()

	// Nearest first; equal distances keep a stable order by step id so
	// repeated queries are reproducible
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		if hits[i].Metadata.TaskName != hits[j].Metadata.TaskName {
			return hits[i].Metadata.TaskName < hits[j].Metadata.TaskName
		}
		return hits[i].Metadata.StepID < hits[j].Metadata.StepID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes the given ids; absent ids are ignored
func (s *MemoryVectorStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

// Len returns the number of stored vectors
func (s *MemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
