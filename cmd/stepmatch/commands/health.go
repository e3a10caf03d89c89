// ABOUTME: CLI command to report knowledge base health
// ABOUTME: Prints status, issues, and cache statistics
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tasklens/stepmatch/internal/knowledge"
)

// NewHealthCmd creates health command
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check knowledge base health",
		Long: `Load the task library and report engine health.

Reports unhealthy when no tasks load, warning when some tasks have no
embeddings yet or the cache hit rate is low, healthy otherwise.

Examples:
  stepmatch health
  stepmatch health --format json`,
		RunE: runHealth,
	}

	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	kb, cleanup, err := newKnowledgeBase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := kb.Initialize(cmd.Context(), false); err != nil {
		return fmt.Errorf("initializing knowledge base: %w", err)
	}

	status := kb.HealthCheck()

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status: %s\n", status.Status)
		fmt.Fprintf(out, "Tasks:  %d (%d steps)\n", status.TaskCount, status.StepCount)
		for _, issue := range status.Issues {
			fmt.Fprintf(out, "Issue:  %s\n", issue)
		}
	}

	if status.Status == knowledge.StatusUnhealthy {
		return fmt.Errorf("knowledge base is unhealthy")
	}
	return nil
}
