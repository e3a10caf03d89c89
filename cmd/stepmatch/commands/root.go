// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for all stepmatch CLI operations
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███████╗████████╗███████╗██████╗ ███╗   ███╗ █████╗ ████████╗ ██████╗██╗  ██╗
██╔════╝╚══██╔══╝██╔════╝██╔══██╗████╗ ████║██╔══██╗╚══██╔══╝██╔════╝██║  ██║
███████╗   ██║   █████╗  ██████╔╝██╔████╔██║███████║   ██║   ██║     ███████║
╚════██║   ██║   ██╔══╝  ██╔═══╝ ██║╚██╔╝██║██╔══██║   ██║   ██║     ██╔══██║
███████║   ██║   ███████╗██║     ██║ ╚═╝ ██║██║  ██║   ██║   ╚██████╗██║  ██║
╚══════╝   ╚═╝   ╚══════╝╚═╝     ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepmatch",
		Short: "Match observed activity to procedure steps",
		Long: banner + `
StepMatch watches free-text observations of a user performing a
multi-step physical task and decides which step of a known procedure
the user is currently on, using embedding-based semantic matching
over a validated task step library.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")

	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewTasksCmd())
	cmd.AddCommand(NewStepsCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewPrecomputeCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
