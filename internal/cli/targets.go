package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/limn/internal/config"
	"github.com/roach88/limn/internal/devtool"
)

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List debuggable pages exposed by the host",
		Long: `List the pages the host's debug server is willing to attach to.

Pages marked with * carry a debugger URL and can be attached; the rest are
listed for completeness only.

Example:
  limn targets
  LIMN_DEBUG_URL=http://127.0.0.1:9333 limn targets --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTargets(rootOpts, cmd)
		},
	}
}

func listTargets(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "load configuration", err)
	}

	targets, err := devtool.ListTargets(cmd.Context(), cfg.DebugURL)
	if err != nil {
		return WrapExitError(ExitFailure, "list targets at "+cfg.DebugURL, err)
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(targets)
	}

	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No targets listed.")
		return nil
	}
	for _, t := range targets {
		mark := " "
		if t.WebSocketDebuggerURL != "" {
			mark = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %s\n", mark, t.ID, t.Title)
	}
	return nil
}
