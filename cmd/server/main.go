// ABOUTME: Main entry point for the step matching MCP server with stdio transport
// ABOUTME: Initializes the knowledge base, precomputes embeddings, and registers all tools
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tasklens/stepmatch/internal/cache"
	"github.com/tasklens/stepmatch/internal/charm"
	"github.com/tasklens/stepmatch/internal/config"
	"github.com/tasklens/stepmatch/internal/knowledge"
	"github.com/tasklens/stepmatch/internal/llm"
	"github.com/tasklens/stepmatch/internal/match"
	"github.com/tasklens/stepmatch/internal/mcp"
	"github.com/tasklens/stepmatch/internal/storage"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	embedder, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		EmbeddingModel: llm.DefaultEmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	// Snapshot store is optional: without it embeddings are recomputed
	// on every start
	var snapshots *charm.Client
	snapshots, err = charm.NewClient(&charm.Config{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		log.Printf("Warning: snapshot store unavailable, embeddings will not persist: %v", err)
		snapshots = nil
	} else {
		defer snapshots.Close()
	}

	kb := knowledge.New(
		taskdef.NewDirLoader(cfg.TasksDir),
		embedder,
		storage.NewMemoryVectorStore(cfg.VectorDimension),
		snapshotsOrNil(snapshots),
		knowledge.Options{
			PrecomputeWorkers: cfg.PrecomputeWorkers,
			DefaultTopK:       cfg.DefaultTopK,
			TieBreak:          match.TieBreak(cfg.TieBreak),
		},
	)

	if err := kb.Initialize(context.Background(), true); err != nil {
		log.Fatalf("Failed to initialize knowledge base: %v", err)
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"StepMatch Task Knowledge",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, kb)

	// Start server with stdio transport
	log.Println("StepMatch MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// snapshotsOrNil avoids handing the knowledge base a typed nil interface
func snapshotsOrNil(c *charm.Client) cache.SnapshotStore {
	if c == nil {
		return nil
	}
	return c
}
