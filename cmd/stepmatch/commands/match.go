// ABOUTME: CLI command to match an observation against the step library
// ABOUTME: Prints candidate steps with similarity, confidence, and matched cues
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	matchTask string
	matchTopK int
)

// NewMatchCmd creates match command
func NewMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <observation>",
		Short: "Match an observation to task steps",
		Long: `Match a free-text observation against the loaded task step library.

Embeds the observation, finds the nearest step embeddings, and prints
candidates with similarity, confidence tier, and the visual cues that
textually matched the observation.

Examples:
  stepmatch match "person tightening a bolt with a wrench"
  stepmatch match --task change_tire "jack lifting the car"
  stepmatch match --top-k 5 --format json "pouring oil into the engine"`,
		Args: cobra.ExactArgs(1),
		RunE: runMatch,
	}

	cmd.Flags().StringVar(&matchTask, "task", "", "Restrict matching to one task")
	cmd.Flags().IntVar(&matchTopK, "top-k", 3, "Maximum candidates to return")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if err := validatePositiveInt(matchTopK, "top-k"); err != nil {
		return err
	}

	observation := args[0]

	kb, cleanup, err := newKnowledgeBase()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := kb.Initialize(cmd.Context(), false); err != nil {
		return fmt.Errorf("initializing knowledge base: %w", err)
	}

	results := kb.FindMultipleMatches(cmd.Context(), observation, matchTask, matchTopK)

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching steps for observation: %s\n", observation)
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SIMILARITY\tCONFIDENCE\tTASK\tSTEP\tMATCHED CUES\n")
	fmt.Fprintf(w, "----------\t----------\t----\t----\t------------\n")
	for _, result := range results {
		cues := strings.Join(result.MatchedCues, ", ")
		if cues == "" {
			cues = "(none)"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%d\t%s\n",
			result.Similarity,
			result.ConfidenceLevel,
			truncate(result.TaskName, 24),
			result.StepID,
			truncate(cues, 40))
	}
	return w.Flush()
}
