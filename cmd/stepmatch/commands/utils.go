// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Knowledge base construction and small formatting helpers
package commands

import (
	"fmt"
	"log"

	"github.com/tasklens/stepmatch/internal/cache"
	"github.com/tasklens/stepmatch/internal/charm"
	"github.com/tasklens/stepmatch/internal/config"
	"github.com/tasklens/stepmatch/internal/knowledge"
	"github.com/tasklens/stepmatch/internal/llm"
	"github.com/tasklens/stepmatch/internal/match"
	"github.com/tasklens/stepmatch/internal/storage"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// newKnowledgeBase wires a knowledge base from environment configuration.
// The returned cleanup closes the snapshot store; call it when done.
func newKnowledgeBase() (*knowledge.KnowledgeBase, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	embedder, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: llm.DefaultEmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	var snapshots cache.SnapshotStore
	cleanup := func() {}

	charmClient, err := charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		if verbose {
			log.Printf("Snapshot store unavailable, embeddings will not persist: %v", err)
		}
	} else {
		snapshots = charmClient
		cleanup = func() { _ = charmClient.Close() }
	}

	kb := knowledge.New(
		taskdef.NewDirLoader(cfg.TasksDir),
		embedder,
		storage.NewMemoryVectorStore(cfg.VectorDimension),
		snapshots,
		knowledge.Options{
			PrecomputeWorkers: cfg.PrecomputeWorkers,
			DefaultTopK:       cfg.DefaultTopK,
			TieBreak:          match.TieBreak(cfg.TieBreak),
		},
	)

	return kb, cleanup, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
