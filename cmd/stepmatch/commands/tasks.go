// ABOUTME: CLI command to list loaded tasks and their summaries
// ABOUTME: Reads definitions directly from the task directory without embedding
package commands

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tasklens/stepmatch/internal/config"
	"github.com/tasklens/stepmatch/internal/taskdef"
)

// NewTasksCmd creates tasks command
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List loaded task definitions",
		Long: `List every valid task definition in the tasks directory.

Invalid definition files are skipped with a logged error, matching the
loading behavior of the matching engine itself.

Examples:
  stepmatch tasks
  stepmatch tasks --format json`,
		RunE: runTasks,
	}

	return cmd
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loader := taskdef.NewDirLoader(cfg.TasksDir)
	tasks, err := loader.LoadAll()
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	if len(tasks) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No task definitions found in %s\n", cfg.TasksDir)
		}
		return nil
	}

	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TASK\tDISPLAY NAME\tSTEPS\tDIFFICULTY\tDESCRIPTION\n")
	fmt.Fprintf(w, "----\t------------\t-----\t----------\t-----------\n")
	for _, name := range names {
		tk := tasks[name]
		difficulty := tk.DifficultyLevel
		if difficulty == "" {
			difficulty = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			tk.TaskName,
			truncate(tk.DisplayName, 28),
			tk.TotalSteps(),
			difficulty,
			truncate(tk.Description, 44))
	}
	return w.Flush()
}
