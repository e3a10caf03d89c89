// ABOUTME: KnowledgeBase orchestrator composing loader, cache, and matching engine
// ABOUTME: Query operations absorb internal failures so a polling caller never crashes
package knowledge

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tasklens/stepmatch/internal/cache"
	"github.com/tasklens/stepmatch/internal/match"
	"github.com/tasklens/stepmatch/internal/models"
	"github.com/tasklens/stepmatch/internal/storage"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// Embedder is the external embedding function consumed by the knowledge base
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// Options tune the knowledge base. Zero values select defaults.
type Options struct {
	PrecomputeWorkers int
	DefaultTopK       int
	TieBreak          match.TieBreak
}

// KnowledgeBase is the public façade over task knowledge and step matching.
// Construct one per process and pass it by reference; it holds no global
// state. Query operations are safe for concurrent use.
type KnowledgeBase struct {
	loader   taskdef.Loader
	embedder Embedder
	store    storage.VectorStore
	cache    *cache.EmbeddingCache
	engine   *match.Engine
	topK     int

	mu          sync.RWMutex
	tasks       map[string]*models.TaskKnowledge
	indexed     map[string]bool
	initialized bool
}

// New creates a knowledge base. snapshots may be nil to run without the
// on-disk cache level.
func New(loader taskdef.Loader, embedder Embedder, store storage.VectorStore, snapshots cache.SnapshotStore, opts Options) *KnowledgeBase {
	topK := opts.DefaultTopK
	if topK <= 0 {
		topK = 3
	}

	kb := &KnowledgeBase{
		loader:   loader,
		embedder: embedder,
		store:    store,
		cache:    cache.NewEmbeddingCache(embedder, store, snapshots, opts.PrecomputeWorkers),
		topK:     topK,
		tasks:    make(map[string]*models.TaskKnowledge),
		indexed:  make(map[string]bool),
	}
	kb.engine = match.NewEngine(embedder, store, kb, opts.TieBreak)
	return kb
}

// Initialize loads every task definition and optionally precomputes all
// step embeddings up front. Without precompute, embeddings are computed
// on demand the first time a task is queried.
func (kb *KnowledgeBase) Initialize(ctx context.Context, precompute bool) error {
	tasks, err := kb.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load task definitions: %w", err)
	}

	kb.mu.Lock()
	kb.tasks = tasks
	kb.indexed = make(map[string]bool)
	kb.initialized = true
	kb.mu.Unlock()

	log.Printf("[KnowledgeBase] Loaded %d tasks", len(tasks))

	if precompute {
		if err := kb.cache.PrecomputeAll(ctx, kb.taskList()); err != nil {
			return fmt.Errorf("precompute aborted: %w", err)
		}
		kb.mu.Lock()
		for name, tk := range kb.tasks {
			if kb.cache.HasTask(tk) {
				kb.indexed[name] = true
			}
		}
		kb.mu.Unlock()
	}

	return nil
}

// StepByTask resolves a task step from vector metadata. Implements the
// matching engine's StepSource.
func (kb *KnowledgeBase) StepByTask(taskName string, stepID int) (*models.TaskKnowledge, *models.TaskStep) {
	kb.mu.RLock()
	tk := kb.tasks[taskName]
	kb.mu.RUnlock()
	if tk == nil {
		return nil, nil
	}
	return tk, tk.StepByID(stepID)
}

// FindMatchingStep returns the single best match for an observation, or
// the no-match sentinel. Internal failures are logged and absorbed: this
// backs a continuously polled perception loop that must never halt on one
// bad observation.
func (kb *KnowledgeBase) FindMatchingStep(ctx context.Context, observation, taskName string) models.MatchResult {
	results := kb.FindMultipleMatches(ctx, observation, taskName, 1)
	if len(results) == 0 {
		return models.NoMatch()
	}
	return results[0]
}

// FindMultipleMatches returns up to topK matches, best first. Failures
// degrade to an empty list, never an error.
func (kb *KnowledgeBase) FindMultipleMatches(ctx context.Context, observation, taskName string, topK int) []models.MatchResult {
	// A blank observation can never match; bail out before lazy indexing
	// so it triggers no embedding calls at all
	if strings.TrimSpace(observation) == "" {
		return []models.MatchResult{}
	}

	qid := uuid.New().String()[:8]

	if topK <= 0 {
		topK = kb.topK
	}

	if err := kb.ensureIndexed(ctx, taskName); err != nil {
		log.Printf("[KnowledgeBase] query %s: indexing failed: %v", qid, err)
		return []models.MatchResult{}
	}

	results, err := kb.engine.FindBestMatch(ctx, observation, taskName, topK)
	if err != nil {
		log.Printf("[KnowledgeBase] query %s: match failed: %v", qid, err)
		return []models.MatchResult{}
	}

	if len(results) == 0 {
		log.Printf("[KnowledgeBase] query %s: no candidates", qid)
		return results
	}
	best := results[0]
	log.Printf("[KnowledgeBase] query %s: %d candidates, best %s:%d similarity=%.3f confidence=%s",
		qid, len(results), best.TaskName, best.StepID, best.Similarity, best.ConfidenceLevel)
	return results
}

// ensureIndexed lazily embeds and indexes tasks that have not been
// precomputed yet. With an empty taskName every loaded task is covered.
func (kb *KnowledgeBase) ensureIndexed(ctx context.Context, taskName string) error {
	var pending []*models.TaskKnowledge

	kb.mu.RLock()
	if taskName != "" {
		if tk := kb.tasks[taskName]; tk != nil && !kb.indexed[taskName] {
			pending = append(pending, tk)
		}
	} else {
		for name, tk := range kb.tasks {
			if !kb.indexed[name] {
				pending = append(pending, tk)
			}
		}
	}
	kb.mu.RUnlock()

	for _, tk := range pending {
		if err := kb.cache.EnsureTask(ctx, tk); err != nil {
			return err
		}
		kb.mu.Lock()
		kb.indexed[tk.TaskName] = true
		kb.mu.Unlock()
	}
	return nil
}

// GetStepDetails returns one step of one task, or nil when absent
func (kb *KnowledgeBase) GetStepDetails(taskName string, stepID int) *models.TaskStep {
	_, step := kb.StepByTask(taskName, stepID)
	return step
}

// NextStepInfo describes the step after a given step
type NextStepInfo struct {
	NextStep   *models.TaskStep `json:"next_step,omitempty"`
	IsLastStep bool             `json:"is_last_step"`
	TotalSteps int              `json:"total_steps"`
}

// GetNextStepInfo returns what follows the given step, or nil when the
// task or step is absent
func (kb *KnowledgeBase) GetNextStepInfo(taskName string, stepID int) *NextStepInfo {
	tk, step := kb.StepByTask(taskName, stepID)
	if tk == nil || step == nil {
		return nil
	}
	return &NextStepInfo{
		NextStep:   tk.StepByID(stepID + 1),
		IsLastStep: stepID == tk.TotalSteps(),
		TotalSteps: tk.TotalSteps(),
	}
}

// TaskSummary is the introspection view of one loaded task
type TaskSummary struct {
	TaskName               string   `json:"task_name"`
	DisplayName            string   `json:"display_name"`
	Description            string   `json:"description"`
	TotalSteps             int      `json:"total_steps"`
	DifficultyLevel        string   `json:"difficulty_level,omitempty"`
	EstimatedTotalDuration string   `json:"estimated_total_duration,omitempty"`
	Tools                  []string `json:"tools"`
}

// GetTaskSummary returns a summary of one task, or nil when absent
func (kb *KnowledgeBase) GetTaskSummary(taskName string) *TaskSummary {
	kb.mu.RLock()
	tk := kb.tasks[taskName]
	kb.mu.RUnlock()
	if tk == nil {
		return nil
	}
	return &TaskSummary{
		TaskName:               tk.TaskName,
		DisplayName:            tk.DisplayName,
		Description:            tk.Description,
		TotalSteps:             tk.TotalSteps(),
		DifficultyLevel:        tk.DifficultyLevel,
		EstimatedTotalDuration: tk.EstimatedTotalDuration,
		Tools:                  tk.AllTools(),
	}
}

// GetAllTasks returns the names of all loaded tasks, sorted
func (kb *KnowledgeBase) GetAllTasks() []string {
	kb.mu.RLock()
	names := make([]string, 0, len(kb.tasks))
	for name := range kb.tasks {
		names = append(names, name)
	}
	kb.mu.RUnlock()
	sort.Strings(names)
	return names
}

// ReloadTask replaces one task's knowledge from the loader, invalidates
// its cached embeddings, and re-embeds it. Idempotent for an unchanged
// definition file.
func (kb *KnowledgeBase) ReloadTask(ctx context.Context, taskName string) error {
	tk, err := kb.loader.Load(taskName)
	if err != nil {
		return fmt.Errorf("failed to reload task %s: %w", taskName, err)
	}

	if err := kb.cache.Invalidate(ctx, taskName); err != nil {
		return fmt.Errorf("failed to invalidate task %s: %w", taskName, err)
	}

	kb.mu.Lock()
	kb.tasks[taskName] = tk
	kb.indexed[taskName] = false
	kb.mu.Unlock()

	if err := kb.cache.EnsureTask(ctx, tk); err != nil {
		return fmt.Errorf("failed to re-embed task %s: %w", taskName, err)
	}

	kb.mu.Lock()
	kb.indexed[taskName] = true
	kb.mu.Unlock()

	log.Printf("[KnowledgeBase] Reloaded task %s (%d steps)", taskName, tk.TotalSteps())
	return nil
}

// AddNewTask validates and registers a brand new task definition file
func (kb *KnowledgeBase) AddNewTask(ctx context.Context, path string) error {
	tk, err := taskdef.LoadFile(path)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	if _, exists := kb.tasks[tk.TaskName]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("task %s already loaded (use ReloadTask to replace it)", tk.TaskName)
	}
	kb.tasks[tk.TaskName] = tk
	kb.mu.Unlock()

	if err := kb.cache.EnsureTask(ctx, tk); err != nil {
		return fmt.Errorf("failed to embed new task %s: %w", tk.TaskName, err)
	}

	kb.mu.Lock()
	kb.indexed[tk.TaskName] = true
	kb.mu.Unlock()

	log.Printf("[KnowledgeBase] Added task %s (%d steps)", tk.TaskName, tk.TotalSteps())
	return nil
}

// ClearCache wipes every cached embedding and resets cache statistics.
// Tasks are re-embedded lazily on their next query.
func (kb *KnowledgeBase) ClearCache(ctx context.Context) error {
	if err := kb.cache.ClearAll(ctx); err != nil {
		return err
	}
	kb.mu.Lock()
	kb.indexed = make(map[string]bool)
	kb.mu.Unlock()
	return nil
}

func (kb *KnowledgeBase) taskList() []*models.TaskKnowledge {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	tasks := make([]*models.TaskKnowledge, 0, len(kb.tasks))
	for _, tk := range kb.tasks {
		tasks = append(tasks, tk)
	}
	return tasks
}
