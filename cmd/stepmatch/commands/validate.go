// ABOUTME: CLI command to validate task definition files
// ABOUTME: Runs structural and semantic validation without touching any API
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasklens/stepmatch/internal/taskdef"
)

// NewValidateCmd creates validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate task definition files",
		Long: `Validate one or more task definition files.

Runs the same two-phase validation the loader applies: structural field
checks, then step sequence and visual cue invariants. Exits non-zero if
any file is invalid.

Examples:
  stepmatch validate tasks/change_tire.yaml
  stepmatch validate tasks/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, path := range args {
		tk, err := taskdef.LoadFile(path)
		if err != nil {
			invalid++
			var verr *taskdef.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", path, verr)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", path, err)
			}
			continue
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "OK    %s (%s, %d steps)\n", path, tk.TaskName, tk.TotalSteps())
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files failed validation", invalid, len(args))
	}
	return nil
}
