package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/limn/internal/config"
	"github.com/roach88/limn/internal/trace"
)

// TraceOptions holds flags for the trace command group.
type TraceOptions struct {
	*RootOptions
	DB string
}

// NewTraceCommand creates the trace command group.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded exchange logs",
		Long: `Inspect exchange logs recorded with LIMN_TRACE_DB set.

Every command sent over a connection, and the reply or fault it ended with,
is stored keyed by session. Use 'trace sessions' to list connections and
'trace show' to walk one exchange by exchange.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "trace database path (default: LIMN_TRACE_DB)")

	cmd.AddCommand(newTraceSessionsCommand(opts))
	cmd.AddCommand(newTraceShowCommand(opts))

	return cmd
}

func newTraceSessionsCommand(opts *TraceOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "sessions",
		Short:         "List recorded sessions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := openTraceLog(opts)
			if err != nil {
				return err
			}
			defer log.Close()

			summaries, err := log.Sessions(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "list sessions", err)
			}

			if opts.Format == "json" {
				return newFormatter(opts.RootOptions, cmd).Success(summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}
			for _, s := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %d exchanges, %d faults, started %s\n",
					s.Session, s.Exchanges, s.Faults, s.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newTraceShowCommand(opts *TraceOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <session>",
		Short:         "Show every exchange in a session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := openTraceLog(opts)
			if err != nil {
				return err
			}
			defer log.Close()

			exchanges, err := log.Exchanges(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "read session", err)
			}

			if opts.Format == "json" {
				return newFormatter(opts.RootOptions, cmd).Success(exchanges)
			}
			if len(exchanges) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No exchanges recorded for session %s.\n", args[0])
				return nil
			}
			for _, e := range exchanges {
				status := "ok"
				switch {
				case e.Fault != "":
					status = "fault: " + e.Fault
				case e.DoneAt.IsZero():
					status = "pending"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s  %s\n", e.ReqID, e.Method, status)
			}
			return nil
		},
	}
}

func openTraceLog(opts *TraceOptions) (*trace.Log, error) {
	path := opts.DB
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load configuration", err)
		}
		path = cfg.TraceDB
	}
	if path == "" {
		return nil, WrapExitError(ExitCommandError, "no trace database: pass --db or set LIMN_TRACE_DB", nil)
	}

	log, err := trace.Open(path, nil)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open trace log", err)
	}
	return log, nil
}
