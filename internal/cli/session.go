package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/limn/internal/canvas"
	"github.com/roach88/limn/internal/config"
	"github.com/roach88/limn/internal/devtool"
	"github.com/roach88/limn/internal/genscript"
	"github.com/roach88/limn/internal/markup"
	"github.com/roach88/limn/internal/trace"
)

// session bundles everything a connected command needs and owns the
// teardown of the connection and the optional trace log.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	conn   *devtool.Conn
	client *canvas.Client
	trace  *trace.Log
}

func (s *session) close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.trace != nil {
		_ = s.trace.Close()
	}
}

// connect loads configuration from the environment and attaches to the
// host's debug endpoint.
func connect(ctx context.Context, rootOpts *RootOptions) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	logger := newLogger(cfg, rootOpts.Verbose)

	opts := []devtool.Option{
		devtool.WithConnectTimeout(cfg.ConnectTimeout),
		devtool.WithRequestTimeout(cfg.RequestTimeout),
		devtool.WithLogger(logger),
	}

	var traceLog *trace.Log
	if cfg.TraceDB != "" {
		traceLog, err = trace.Open(cfg.TraceDB, logger)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open trace log", err)
		}
		opts = append(opts, devtool.WithRecorder(traceLog))
	}

	conn, err := devtool.Connect(ctx, cfg.DebugURL, selector(cfg), opts...)
	if err != nil {
		if traceLog != nil {
			_ = traceLog.Close()
		}
		return nil, WrapExitError(ExitFailure, "attach to "+cfg.DebugURL, err)
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		client: canvas.New(conn, logger),
		trace:  traceLog,
	}, nil
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func selector(cfg *config.Config) devtool.Selector {
	switch {
	case cfg.TargetTitle != "":
		return devtool.TitleContains(cfg.TargetTitle)
	case cfg.TargetURL != "":
		return devtool.URLContains(cfg.TargetURL)
	default:
		return devtool.Any()
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// errorCode maps an error onto the code surfaced in JSON output.
func errorCode(err error) string {
	var derr *devtool.Error
	if errors.As(err, &derr) {
		return string(derr.Code)
	}
	if devtool.IsRemoteFault(err) {
		return "REMOTE_FAULT"
	}
	var perr *markup.ParseError
	var lerr *genscript.LowerError
	if errors.As(err, &perr) || errors.As(err, &lerr) {
		return "COMPILE_ERROR"
	}
	return "ERROR"
}

// withClient runs fn against a connected client and prints its result.
func withClient(rootOpts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, sess *session) (any, error)) error {
	sess, err := connect(cmd.Context(), rootOpts)
	if err != nil {
		return err
	}
	defer sess.close()

	data, err := fn(cmd.Context(), sess)
	if err != nil {
		if rootOpts.Format == "json" {
			_ = newFormatter(rootOpts, cmd).Error(errorCode(err), err.Error(), nil)
		}
		return WrapExitError(ExitFailure, cmd.Name(), err)
	}
	return newFormatter(rootOpts, cmd).Success(data)
}
