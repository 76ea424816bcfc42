package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/limn/internal/genscript"
	"github.com/roach88/limn/internal/markup"
)

// Evaluator runs a script inside the host and returns its serialized
// value. *devtool.Conn satisfies this; tests substitute fakes.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string) (json.RawMessage, error)
}

// Node identifies a node in the host document.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client drives a canvas document through an Evaluator.
type Client struct {
	eval   Evaluator
	logger *slog.Logger
}

// New wraps an evaluator. A nil logger falls back to slog.Default.
func New(eval Evaluator, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{eval: eval, logger: logger}
}

// Render compiles markup and executes it inside the host, returning the
// created frame. Markup without an explicit x coordinate is placed to the
// right of everything currently on the page, with clearance.
func (c *Client) Render(ctx context.Context, src string) (Node, error) {
	root, err := markup.Parse(src)
	if err != nil {
		return Node{}, fmt.Errorf("render: %w", err)
	}

	var siblings []genscript.Rect
	if genscript.NeedsSiblingScan(root) {
		raw, err := c.eval.Evaluate(ctx, genscript.SiblingScanScript())
		if err != nil {
			return Node{}, fmt.Errorf("render: scan page: %w", err)
		}
		if err := json.Unmarshal(raw, &siblings); err != nil {
			return Node{}, fmt.Errorf("render: decode page scan: %w", err)
		}
	}

	placement, err := genscript.PlacementFor(root, siblings)
	if err != nil {
		return Node{}, fmt.Errorf("render: %w", err)
	}
	script, err := genscript.Lower(root, placement)
	if err != nil {
		return Node{}, fmt.Errorf("render: %w", err)
	}

	raw, err := c.eval.Evaluate(ctx, script)
	if err != nil {
		return Node{}, fmt.Errorf("render: %w", err)
	}

	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return Node{}, fmt.Errorf("render: decode created frame: %w", err)
	}

	c.logger.Info("rendered frame",
		"id", node.ID,
		"name", node.Name,
		"x", placement.X,
		"y", placement.Y)
	return node, nil
}
