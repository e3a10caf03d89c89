// ABOUTME: CLI command to show the steps of one task
// ABOUTME: Prints the full step table or a single step's details
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklens/stepmatch/internal/config"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

var (
	stepsStepID int
)

// NewStepsCmd creates steps command
func NewStepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps <task>",
		Short: "Show the steps of a task",
		Long: `Show the steps of one loaded task.

With --step, prints the full definition of a single step including
visual cues, tools, completion indicators, and safety notes.

Examples:
  stepmatch steps change_tire
  stepmatch steps change_tire --step 3
  stepmatch steps change_tire --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runSteps,
	}

	cmd.Flags().IntVar(&stepsStepID, "step", 0, "Show one step in detail")

	return cmd
}

func runSteps(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tk, err := taskdef.NewDirLoader(cfg.TasksDir).Load(args[0])
	if err != nil {
		return err
	}

	if stepsStepID > 0 {
		step := tk.StepByID(stepsStepID)
		if step == nil {
			return fmt.Errorf("task %s has no step %d (steps 1-%d)", tk.TaskName, stepsStepID, tk.TotalSteps())
		}

		if outputFormat == "json" {
			jsonData, err := json.MarshalIndent(step, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Step %d: %s\n", step.StepID, step.Title)
		fmt.Fprintf(out, "Description: %s\n", step.Description)
		fmt.Fprintf(out, "Duration:    %s\n", step.EstimatedDuration)
		fmt.Fprintf(out, "Tools:       %s\n", joinOrNone(step.ToolsNeeded))
		fmt.Fprintf(out, "Visual cues: %s\n", joinOrNone(step.VisualCues))
		fmt.Fprintf(out, "Completion:  %s\n", joinOrNone(step.CompletionIndicators))
		if len(step.SafetyNotes) > 0 {
			fmt.Fprintf(out, "Safety:      %s\n", strings.Join(step.SafetyNotes, "; "))
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(tk.Steps, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STEP\tTITLE\tDURATION\tVISUAL CUES\n")
	fmt.Fprintf(w, "----\t-----\t--------\t-----------\n")
	for _, step := range tk.Steps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			step.StepID,
			truncate(step.Title, 32),
			step.EstimatedDuration,
			truncate(strings.Join(step.VisualCues, ", "), 44))
	}
	return w.Flush()
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "(none)"
	}
	return strings.Join(list, ", ")
}
