// ABOUTME: Health check and system statistics for the knowledge base
// ABOUTME: Reports healthy/warning/unhealthy with explicit issue strings
package knowledge

import (
	"fmt"

	"github.com/tasklens/stepmatch/internal/models"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusUnhealthy = "unhealthy"
)

// Cache hit-rate below this after sufficient traffic degrades health to warning
const (
	lowHitRateThreshold = 0.5
	minLookupsForRate   = 50
)

// HealthStatus is the result of a health check
type HealthStatus struct {
	Status     string   `json:"status"`
	Issues     []string `json:"issues"`
	TaskCount  int      `json:"task_count"`
	StepCount  int      `json:"step_count"`
	CacheStats models.CacheStats `json:"cache_stats"`
}

// SystemStats is a snapshot of knowledge base state for introspection
type SystemStats struct {
	Initialized bool              `json:"initialized"`
	TaskCount   int               `json:"task_count"`
	StepCount   int               `json:"step_count"`
	TaskNames   []string          `json:"task_names"`
	CacheStats  models.CacheStats `json:"cache_stats"`
}

// HealthCheck reports the current health of the knowledge base.
// Unhealthy: not initialized or no tasks loaded. Warning: tasks missing
// embeddings, or a low cache hit rate after sufficient traffic.
func (kb *KnowledgeBase) HealthCheck() HealthStatus {
	status := HealthStatus{
		Status:     StatusHealthy,
		Issues:     []string{},
		CacheStats: kb.cache.Stats(),
	}

	kb.mu.RLock()
	initialized := kb.initialized
	status.TaskCount = len(kb.tasks)
	var unembedded []string
	for name, tk := range kb.tasks {
		status.StepCount += tk.TotalSteps()
		if !kb.cache.HasTask(tk) {
			unembedded = append(unembedded, name)
		}
	}
	kb.mu.RUnlock()

	if !initialized {
		status.Status = StatusUnhealthy
		status.Issues = append(status.Issues, "not initialized")
		return status
	}
	if status.TaskCount == 0 {
		status.Status = StatusUnhealthy
		status.Issues = append(status.Issues, "no tasks loaded")
		return status
	}

	if len(unembedded) > 0 {
		status.Status = StatusWarning
		status.Issues = append(status.Issues,
			fmt.Sprintf("%d of %d tasks have no embeddings yet", len(unembedded), status.TaskCount))
	}

	if status.CacheStats.Lookups() >= minLookupsForRate && status.CacheStats.HitRate() < lowHitRateThreshold {
		status.Status = StatusWarning
		status.Issues = append(status.Issues,
			fmt.Sprintf("cache hit rate %.2f below %.2f", status.CacheStats.HitRate(), lowHitRateThreshold))
	}

	return status
}

// GetSystemStats returns a snapshot of load and cache state
func (kb *KnowledgeBase) GetSystemStats() SystemStats {
	stats := SystemStats{
		CacheStats: kb.cache.Stats(),
		TaskNames:  kb.GetAllTasks(),
	}

	kb.mu.RLock()
	stats.Initialized = kb.initialized
	stats.TaskCount = len(kb.tasks)
	for _, tk := range kb.tasks {
		stats.StepCount += tk.TotalSteps()
	}
	kb.mu.RUnlock()

	return stats
}
