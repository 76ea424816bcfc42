package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewNodeCommand creates the node command group.
func NewNodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Inspect and mutate individual nodes",
		Long: `Inspect and mutate individual nodes by id.

Node ids come from render output, 'node find', or 'node selection'. A stale
id is reported as a remote fault.`,
	}

	cmd.AddCommand(newNodeGetCommand(rootOpts))
	cmd.AddCommand(newNodeMoveCommand(rootOpts))
	cmd.AddCommand(newNodeResizeCommand(rootOpts))
	cmd.AddCommand(newNodeRenameCommand(rootOpts))
	cmd.AddCommand(newNodeFillCommand(rootOpts))
	cmd.AddCommand(newNodeDeleteCommand(rootOpts))
	cmd.AddCommand(newNodeFindCommand(rootOpts))
	cmd.AddCommand(newNodeSelectionCommand(rootOpts))

	return cmd
}

func newNodeGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a node's type, position, and size",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				info, err := sess.client.GetNode(ctx, args[0])
				if err != nil {
					return nil, err
				}
				if rootOpts.Format == "json" {
					return info, nil
				}
				return fmt.Sprintf("%s  %s  %s  (%g, %g)  %gx%g",
					info.ID, info.Type, info.Name, info.X, info.Y, info.Width, info.Height), nil
			})
		},
	}
}

func newNodeMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "move <id> <x> <y>",
		Short:         "Reposition a node in page coordinates",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseCoord("x", args[1])
			if err != nil {
				return err
			}
			y, err := parseCoord("y", args[2])
			if err != nil {
				return err
			}
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.Move(ctx, args[0], x, y)
			})
		},
	}
}

func newNodeResizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "resize <id> <width> <height>",
		Short:         "Set a node's dimensions",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := parseCoord("width", args[1])
			if err != nil {
				return err
			}
			height, err := parseCoord("height", args[2])
			if err != nil {
				return err
			}
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.Resize(ctx, args[0], width, height)
			})
		},
	}
}

func newNodeRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <id> <name>",
		Short:         "Set a node's name",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.Rename(ctx, args[0], args[1])
			})
		},
	}
}

func newNodeFillCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "fill <id> <#RRGGBB>",
		Short:         "Set a node's fill to a solid color",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.SetFill(ctx, args[0], args[1])
			})
		},
	}
}

func newNodeDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove a node from the document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				if err := sess.client.Delete(ctx, args[0]); err != nil {
					return nil, err
				}
				return "deleted " + args[0], nil
			})
		},
	}
}

func newNodeFindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "find <name>",
		Short:         "Find the first node with the given name",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.FindByName(ctx, args[0])
			})
		},
	}
}

func newNodeSelectionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "selection",
		Short:         "List the nodes currently selected in the host",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(rootOpts, cmd, func(ctx context.Context, sess *session) (any, error) {
				return sess.client.Selection(ctx)
			})
		},
	}
}

func parseCoord(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("%s must be a number, got %q", name, raw), nil)
	}
	return v, nil
}
