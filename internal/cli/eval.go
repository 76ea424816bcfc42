package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	File string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate a script inside the host",
		Long: `Evaluate a script inside the host and print its value.

The script runs with the document's full scripting API available. Promises
are awaited, so async scripts work; a thrown exception is reported as a
remote fault.

Example:
  limn eval 'figma.currentPage.name'
  limn eval --file cleanup.js`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "read the script from a file instead of the argument")

	return cmd
}

func runEval(opts *EvalOptions, args []string, cmd *cobra.Command) error {
	expression, err := scriptSource(opts.File, args)
	if err != nil {
		return err
	}

	return withClient(opts.RootOptions, cmd, func(ctx context.Context, sess *session) (any, error) {
		value, err := sess.conn.Evaluate(ctx, expression)
		if err != nil {
			return nil, err
		}
		if opts.Format == "json" {
			return json.RawMessage(value), nil
		}
		return string(value), nil
	})
}

func scriptSource(file string, args []string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", WrapExitError(ExitCommandError, "pass either an expression or --file, not both", nil)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read script", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] != "":
		return args[0], nil
	default:
		return "", WrapExitError(ExitCommandError, "an expression or --file is required", nil)
	}
}
