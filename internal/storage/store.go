// ABOUTME: VectorStore interface consumed by the matching engine and cache
// ABOUTME: Defines upsert/query/delete over embedding vectors with step metadata
package storage

import "context"

// VectorMetadata identifies the task step a stored vector belongs to
type VectorMetadata struct {
	TaskName string `json:"task_name"`
	StepID   int    `json:"step_id"`
}

// VectorHit is one nearest-neighbor result. Distance is in [0,2] for
// cosine distance; callers convert to similarity as 1 - distance.
type VectorHit struct {
	Metadata VectorMetadata
	Distance float64
}

// VectorStore is the nearest-neighbor index over step embeddings.
// Upsert is idempotent on id. Implementations must be safe for
// concurrent use by the precompute workers and the query path.
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float64, meta VectorMetadata) error

	// Query returns up to k hits ordered nearest-first. A non-empty
	// taskFilter restricts hits to that task.
	Query(ctx context.Context, vector []float64, k int, taskFilter string) ([]VectorHit, error)

	Delete(ctx context.Context, ids []string) error
}
