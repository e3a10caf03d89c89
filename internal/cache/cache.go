// ABOUTME: Two-level embedding cache with bounded-parallelism precompute
// ABOUTME: Memory map plus charm KV snapshots; tracks hit/miss/precompute statistics
package cache

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tasklens/stepmatch/internal/charm"
	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/storage"
)

// DefaultWorkers is the default width of the precompute worker pool
const DefaultWorkers = 4

// Embedder produces embedding vectors for batches of step texts
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// SnapshotStore persists embeddings across restarts. A nil snapshot store
// disables the disk level; charm.Client satisfies this interface.
type SnapshotStore interface {
	SetJSON(key string, value interface{}) error
	GetJSON(key string, dest interface{}) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
}

// snapshotEntry is the persisted form of one step embedding
type snapshotEntry struct {
	TaskName  string    `json:"task_name"`
	StepID    int       `json:"step_id"`
	Vector    []float64 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// EmbeddingCache avoids embedding the same step text repeatedly. Lookups
// check memory first, then the snapshot store (promoting on hit). Distinct
// precompute workers never write the same key, so a single RWMutex around
// the memory map is all the locking the write path needs.
type EmbeddingCache struct {
	embedder  Embedder
	store     storage.VectorStore
	snapshots SnapshotStore
	workers   int

	mu         sync.RWMutex
	embeddings map[models.TaskID][]float64

	statsMu sync.Mutex
	stats   models.CacheStats
}

// NewEmbeddingCache creates a cache over the given collaborators.
// snapshots may be nil; workers <= 0 selects DefaultWorkers.
func NewEmbeddingCache(embedder Embedder, store storage.VectorStore, snapshots SnapshotStore, workers int) *EmbeddingCache {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &EmbeddingCache{
		embedder:   embedder,
		store:      store,
		snapshots:  snapshots,
		workers:    workers,
		embeddings: make(map[models.TaskID][]float64),
	}
}

// PrecomputeAll warms the cache and the vector store for every task using
// a bounded worker pool. Each task is processed by exactly one worker.
// Per-task failures are logged and skipped; only context cancellation
// aborts the run.
func (c *EmbeddingCache) PrecomputeAll(ctx context.Context, tasks []*models.TaskKnowledge) error {
	start := time.Now()

	work := make(chan *models.TaskKnowledge)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range work {
				if err := c.EnsureTask(ctx, tk); err != nil {
					log.Printf("[Cache] Precompute failed for task %s: %v", tk.TaskName, err)
				}
			}
		}()
	}

	for _, tk := range tasks {
		if ctx.Err() != nil {
			break
		}
		work <- tk
	}
	close(work)
	wg.Wait()

	c.statsMu.Lock()
	c.stats.PrecomputeTime += time.Since(start)
	c.stats.LastUpdated = time.Now()
	c.statsMu.Unlock()

	return ctx.Err()
}

// EnsureTask makes one task's step embeddings available in memory, in the
// snapshot store, and in the vector store. Cached vectors are reused; on
// any miss the whole task is re-embedded in a single batched call to
// amortize API overhead. The per-step checks count toward hit/miss stats
// since precompute and lazy indexing are the cache's real traffic.
func (c *EmbeddingCache) EnsureTask(ctx context.Context, tk *models.TaskKnowledge) error {
	vectors := make(map[models.TaskID][]float64, len(tk.Steps))
	complete := true

	for i := range tk.Steps {
		id := models.TaskID{TaskName: tk.TaskName, StepID: tk.Steps[i].StepID}
		if vec, ok := c.Get(id); ok {
			vectors[id] = vec
		} else {
			complete = false
			break
		}
	}

	if !complete {
		texts := make([]string, len(tk.Steps))
		for i := range tk.Steps {
			texts[i] = tk.Steps[i].EmbeddingText()
		}

		embedded, err := c.embedder.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed task %s: %w", tk.TaskName, err)
		}
		if len(embedded) != len(tk.Steps) {
			return fmt.Errorf("embedding count mismatch for task %s: got %d, want %d", tk.TaskName, len(embedded), len(tk.Steps))
		}

		vectors = make(map[models.TaskID][]float64, len(tk.Steps))
		for i := range tk.Steps {
			id := models.TaskID{TaskName: tk.TaskName, StepID: tk.Steps[i].StepID}
			vectors[id] = embedded[i]
			c.put(id, embedded[i])
			c.persist(id, embedded[i])
		}
	}

	// Upsert into the vector store either way: a fresh process may have a
	// warm snapshot but an empty index
	for i := range tk.Steps {
		step := &tk.Steps[i]
		id := models.TaskID{TaskName: tk.TaskName, StepID: step.StepID}
		err := c.store.Upsert(ctx, id.String(), vectors[id], storage.VectorMetadata{
			TaskName: tk.TaskName,
			StepID:   step.StepID,
		})
		if err != nil {
			return fmt.Errorf("failed to index step %s: %w", id, err)
		}
	}

	return nil
}

// Get returns the cached embedding for a step, recording a hit or miss.
// A nil result means the caller must compute on demand.
func (c *EmbeddingCache) Get(id models.TaskID) ([]float64, bool) {
	vec, ok := c.lookup(id)

	c.statsMu.Lock()
	if ok {
		c.stats.CacheHits++
	} else {
		c.stats.CacheMisses++
	}
	c.statsMu.Unlock()

	return vec, ok
}

// lookup checks memory then snapshot without touching the counters
func (c *EmbeddingCache) lookup(id models.TaskID) ([]float64, bool) {
	c.mu.RLock()
	vec, ok := c.embeddings[id]
	c.mu.RUnlock()
	if ok {
		return vec, true
	}

	if c.snapshots == nil {
		return nil, false
	}

	// A corrupt or unreadable snapshot is a miss, never an error
	var entry snapshotEntry
	if err := c.snapshots.GetJSON(charm.EmbeddingKey(id.TaskName, id.StepID), &entry); err != nil {
		return nil, false
	}
	if entry.TaskName != id.TaskName || entry.StepID != id.StepID || len(entry.Vector) == 0 {
		return nil, false
	}

	c.put(id, entry.Vector)
	return entry.Vector, true
}

func (c *EmbeddingCache) put(id models.TaskID, vec []float64) {
	c.mu.Lock()
	c.embeddings[id] = vec
	c.mu.Unlock()
}

// persist writes a snapshot entry; snapshot failures are logged, not fatal
func (c *EmbeddingCache) persist(id models.TaskID, vec []float64) {
	if c.snapshots == nil {
		return
	}
	entry := snapshotEntry{
		TaskName:  id.TaskName,
		StepID:    id.StepID,
		Vector:    vec,
		CreatedAt: time.Now(),
	}
	if err := c.snapshots.SetJSON(charm.EmbeddingKey(id.TaskName, id.StepID), entry); err != nil {
		log.Printf("[Cache] Failed to persist snapshot for %s: %v", id, err)
	}
}

// HasTask reports whether every step of the task has a cached embedding
// in memory or snapshot. Does not touch the hit/miss counters.
func (c *EmbeddingCache) HasTask(tk *models.TaskKnowledge) bool {
	for i := range tk.Steps {
		id := models.TaskID{TaskName: tk.TaskName, StepID: tk.Steps[i].StepID}
		if _, ok := c.lookup(id); !ok {
			return false
		}
	}
	return true
}

// Invalidate removes one task's embeddings from memory, snapshots, and
// the vector store. The next lookup for any of its steps is a guaranteed
// miss until the task is precomputed again.
func (c *EmbeddingCache) Invalidate(ctx context.Context, taskName string) error {
	var removed []string

	c.mu.Lock()
	for id := range c.embeddings {
		if id.TaskName == taskName {
			removed = append(removed, id.String())
			delete(c.embeddings, id)
		}
	}
	c.mu.Unlock()

	if c.snapshots != nil {
		keys, err := c.snapshots.ListKeys(charm.EmbeddingTaskPrefix(taskName))
		if err != nil {
			log.Printf("[Cache] Failed to list snapshots for %s: %v", taskName, err)
		}
		for _, key := range keys {
			if err := c.snapshots.Delete(key); err != nil {
				log.Printf("[Cache] Failed to delete snapshot %s: %v", key, err)
			}
			// Snapshot entries may exist for steps never loaded into memory
			id := strings.TrimPrefix(key, charm.EmbeddingPrefix)
			removed = append(removed, id)
		}
	}

	if len(removed) > 0 {
		if err := c.store.Delete(ctx, removed); err != nil {
			return fmt.Errorf("failed to remove vectors for task %s: %w", taskName, err)
		}
	}

	c.statsMu.Lock()
	c.stats.LastUpdated = time.Now()
	c.statsMu.Unlock()

	return nil
}

// ClearAll removes every cached embedding and resets statistics
func (c *EmbeddingCache) ClearAll(ctx context.Context) error {
	var removed []string

	c.mu.Lock()
	for id := range c.embeddings {
		removed = append(removed, id.String())
	}
	c.embeddings = make(map[models.TaskID][]float64)
	c.mu.Unlock()

	if c.snapshots != nil {
		keys, err := c.snapshots.ListKeys(charm.EmbeddingPrefix)
		if err != nil {
			log.Printf("[Cache] Failed to list snapshots: %v", err)
		}
		for _, key := range keys {
			if err := c.snapshots.Delete(key); err != nil {
				log.Printf("[Cache] Failed to delete snapshot %s: %v", key, err)
			}
			removed = append(removed, strings.TrimPrefix(key, charm.EmbeddingPrefix))
		}
	}

	if len(removed) > 0 {
		if err := c.store.Delete(ctx, removed); err != nil {
			return fmt.Errorf("failed to clear vector store: %w", err)
		}
	}

	c.statsMu.Lock()
	c.stats = models.CacheStats{LastUpdated: time.Now()}
	c.statsMu.Unlock()

	return nil
}

// Stats returns a copy of the current cache statistics
func (c *EmbeddingCache) Stats() models.CacheStats {
	c.statsMu.Lock()
	stats := c.stats
	c.statsMu.Unlock()

	c.mu.RLock()
	stats.TotalEmbeddings = len(c.embeddings)
	c.mu.RUnlock()

	return stats
}
