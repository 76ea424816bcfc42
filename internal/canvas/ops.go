package canvas

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/limn/internal/encode"
	"github.com/roach88/limn/internal/genscript"
)

// NodeInfo is the inspectable subset of a node's state.
type NodeInfo struct {
	Node
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CreateFrame creates an empty named frame on the current page.
func (c *Client) CreateFrame(ctx context.Context, name string, width, height float64) (Node, error) {
	script := "(() => {\n" +
		"  const frame = figma.createFrame();\n" +
		"  frame.name = " + encode.Quote(name) + ";\n" +
		"  frame.resize(" + encode.Num(width) + ", " + encode.Num(height) + ");\n" +
		"  figma.currentPage.appendChild(frame);\n" +
		"  return { id: frame.id, name: frame.name };\n" +
		"})()"
	return c.evalNode(ctx, "create frame", script)
}

// CreateText creates a text node under the given parent. The default font
// is loaded first; text content cannot be assigned before its font is
// available.
func (c *Client) CreateText(ctx context.Context, parentID, content string) (Node, error) {
	q := encode.Quote(parentID)
	script := "(async () => {\n" +
		"  const parent = figma.getNodeById(" + q + ");\n" +
		"  if (!parent) { throw \"no node with id \" + " + q + "; }\n" +
		"  await figma.loadFontAsync({ family: " + encode.Quote(genscript.FontFamily) + ", style: \"Regular\" });\n" +
		"  const text = figma.createText();\n" +
		"  text.fontName = { family: " + encode.Quote(genscript.FontFamily) + ", style: \"Regular\" };\n" +
		"  text.characters = " + encode.Quote(content) + ";\n" +
		"  parent.appendChild(text);\n" +
		"  return { id: text.id, name: text.name };\n" +
		"})()"
	return c.evalNode(ctx, "create text", script)
}

// SetFill replaces a node's fill with one solid color.
func (c *Client) SetFill(ctx context.Context, id, hex string) (Node, error) {
	color, err := encode.Color(hex)
	if err != nil {
		return Node{}, fmt.Errorf("set fill: %w", err)
	}
	return c.evalNode(ctx, "set fill", c.mutation(id,
		"  node.fills = "+color.SolidPaint()+";\n"))
}

// SetStroke replaces a node's stroke with one solid color at the given
// weight.
func (c *Client) SetStroke(ctx context.Context, id, hex string, weight float64) (Node, error) {
	color, err := encode.Color(hex)
	if err != nil {
		return Node{}, fmt.Errorf("set stroke: %w", err)
	}
	return c.evalNode(ctx, "set stroke", c.mutation(id,
		"  node.strokes = "+color.SolidPaint()+";\n"+
			"  node.strokeWeight = "+encode.Num(weight)+";\n"))
}

// SetCornerRadius rounds a node's corners.
func (c *Client) SetCornerRadius(ctx context.Context, id string, radius float64) (Node, error) {
	return c.evalNode(ctx, "set corner radius", c.mutation(id,
		"  node.cornerRadius = "+encode.Num(radius)+";\n"))
}

// Move repositions a node in page coordinates.
func (c *Client) Move(ctx context.Context, id string, x, y float64) (Node, error) {
	return c.evalNode(ctx, "move", c.mutation(id,
		"  node.x = "+encode.Num(x)+";\n"+
			"  node.y = "+encode.Num(y)+";\n"))
}

// Resize sets a node's dimensions.
func (c *Client) Resize(ctx context.Context, id string, width, height float64) (Node, error) {
	return c.evalNode(ctx, "resize", c.mutation(id,
		"  node.resize("+encode.Num(width)+", "+encode.Num(height)+");\n"))
}

// Rename sets a node's name.
func (c *Client) Rename(ctx context.Context, id, name string) (Node, error) {
	return c.evalNode(ctx, "rename", c.mutation(id,
		"  node.name = "+encode.Quote(name)+";\n"))
}

// AppendChild reparents child under parent.
func (c *Client) AppendChild(ctx context.Context, parentID, childID string) (Node, error) {
	qp := encode.Quote(parentID)
	qc := encode.Quote(childID)
	script := "(() => {\n" +
		"  const parent = figma.getNodeById(" + qp + ");\n" +
		"  if (!parent) { throw \"no node with id \" + " + qp + "; }\n" +
		"  const child = figma.getNodeById(" + qc + ");\n" +
		"  if (!child) { throw \"no node with id \" + " + qc + "; }\n" +
		"  parent.appendChild(child);\n" +
		"  return { id: child.id, name: child.name };\n" +
		"})()"
	return c.evalNode(ctx, "append child", script)
}

// Delete removes a node from the document.
func (c *Client) Delete(ctx context.Context, id string) error {
	q := encode.Quote(id)
	script := "(() => {\n" +
		"  const node = figma.getNodeById(" + q + ");\n" +
		"  if (!node) { throw \"no node with id \" + " + q + "; }\n" +
		"  node.remove();\n" +
		"  return true;\n" +
		"})()"
	if _, err := c.eval.Evaluate(ctx, script); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// GetNode inspects a node's position, size, and type.
func (c *Client) GetNode(ctx context.Context, id string) (NodeInfo, error) {
	q := encode.Quote(id)
	script := "(() => {\n" +
		"  const node = figma.getNodeById(" + q + ");\n" +
		"  if (!node) { throw \"no node with id \" + " + q + "; }\n" +
		"  return { id: node.id, name: node.name, type: node.type, x: node.x, y: node.y, width: node.width, height: node.height };\n" +
		"})()"
	raw, err := c.eval.Evaluate(ctx, script)
	if err != nil {
		return NodeInfo{}, fmt.Errorf("get node: %w", err)
	}
	var info NodeInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return NodeInfo{}, fmt.Errorf("get node: decode: %w", err)
	}
	return info, nil
}

// FindByName returns the first node on the current page with the given
// name, searching depth first.
func (c *Client) FindByName(ctx context.Context, name string) (Node, error) {
	q := encode.Quote(name)
	script := "(() => {\n" +
		"  const node = figma.currentPage.findOne((n) => n.name === " + q + ");\n" +
		"  if (!node) { throw \"no node named \" + " + q + "; }\n" +
		"  return { id: node.id, name: node.name };\n" +
		"})()"
	return c.evalNode(ctx, "find by name", script)
}

// CurrentPage identifies the page the host is showing.
func (c *Client) CurrentPage(ctx context.Context) (Node, error) {
	script := "(() => ({ id: figma.currentPage.id, name: figma.currentPage.name }))()"
	return c.evalNode(ctx, "current page", script)
}

// Selection lists the nodes currently selected in the host.
func (c *Client) Selection(ctx context.Context) ([]Node, error) {
	script := "(() => figma.currentPage.selection.map((n) => ({ id: n.id, name: n.name })))()"
	raw, err := c.eval.Evaluate(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	var nodes []Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return nil, fmt.Errorf("selection: decode: %w", err)
	}
	return nodes, nil
}

// mutation wraps a body in a lookup of the target node that throws when
// the id is stale.
func (c *Client) mutation(id, body string) string {
	q := encode.Quote(id)
	return "(() => {\n" +
		"  const node = figma.getNodeById(" + q + ");\n" +
		"  if (!node) { throw \"no node with id \" + " + q + "; }\n" +
		body +
		"  return { id: node.id, name: node.name };\n" +
		"})()"
}

func (c *Client) evalNode(ctx context.Context, op, script string) (Node, error) {
	raw, err := c.eval.Evaluate(ctx, script)
	if err != nil {
		return Node{}, fmt.Errorf("%s: %w", op, err)
	}
	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return Node{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	return node, nil
}
