// ABOUTME: CLI command to warm the embedding cache for all tasks
// ABOUTME: Runs the bounded-parallelism precompute and prints cache statistics
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewPrecomputeCmd creates precompute command
func NewPrecomputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precompute",
		Short: "Precompute step embeddings for all tasks",
		Long: `Embed every step of every loaded task and persist the vectors to the
snapshot store, so later queries never pay per-step embedding latency.

Tasks with a complete snapshot are skipped; one batched embedding call
is made per task that needs recomputing.

Examples:
  stepmatch precompute
  stepmatch precompute --format json`,
		RunE: runPrecompute,
	}

	return cmd
}

func runPrecompute(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	kb, cleanup, err := newKnowledgeBase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := kb.Initialize(cmd.Context(), true); err != nil {
		return fmt.Errorf("precomputing embeddings: %w", err)
	}

	stats := kb.GetSystemStats()

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Precomputed embeddings for %d tasks (%d steps) in %s\n",
			stats.TaskCount, stats.StepCount, stats.CacheStats.PrecomputeTime)
		fmt.Fprintf(cmd.OutOrStdout(), "Cached embeddings: %d\n", stats.CacheStats.TotalEmbeddings)
	}
	return nil
}
