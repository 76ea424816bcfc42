package genscript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/limn/internal/encode"
	"github.com/roach88/limn/internal/markup"
)

// FontFamily is the single family the generated path uses. Weight is the
// only axis the markup exposes.
const FontFamily = "Inter"

// DefaultFontSize applies when a Text element carries no size attribute.
const DefaultFontSize = 14

// LowerError reports an attribute that could not be lowered.
type LowerError struct {
	Attr    string
	Message string
}

func (e *LowerError) Error() string {
	return fmt.Sprintf("lower: %s: %s", e.Attr, e.Message)
}

// Lower turns a parsed tree into one self-contained script. The script has
// no free variables beyond the host's ambient environment, executes as a
// single atomic unit inside the host, and evaluates to the created frame's
// {id, name}.
//
// Statement order follows the host's constraints: all font loads complete
// before any text content is assigned, and every text node is attached to
// the frame before its layout-dependent sizing flags are set.
func Lower(root *markup.Element, p Placement) (string, error) {
	if root == nil || root.Tag != markup.TagFrame {
		return "", &LowerError{Attr: "root", Message: "lowering requires a Frame root"}
	}

	var b strings.Builder
	b.WriteString("(async () => {\n")

	if err := emitFontLoads(&b, root.Children); err != nil {
		return "", err
	}
	if err := emitFrame(&b, root, p); err != nil {
		return "", err
	}
	for i, child := range root.Children {
		if err := emitText(&b, child, i); err != nil {
			return "", err
		}
	}

	b.WriteString("  return { id: frame.id, name: frame.name };\n")
	b.WriteString("})()")
	return b.String(), nil
}

// emitFontLoads schedules one load per distinct weight, in first-appearance
// order, and awaits them all before anything else runs.
func emitFontLoads(b *strings.Builder, texts []*markup.Element) error {
	var styles []string
	seen := map[string]bool{}
	for _, t := range texts {
		style := fontStyle(t.AttrOr("weight", ""))
		if !seen[style] {
			seen[style] = true
			styles = append(styles, style)
		}
	}
	if len(styles) == 0 {
		return nil
	}

	b.WriteString("  await Promise.all([\n")
	for _, style := range styles {
		fmt.Fprintf(b, "    figma.loadFontAsync({ family: %s, style: %s }),\n",
			encode.Quote(FontFamily), encode.Quote(style))
	}
	b.WriteString("  ]);\n")
	return nil
}

func emitFrame(b *strings.Builder, el *markup.Element, p Placement) error {
	width, err := numAttr(el, "width", 100)
	if err != nil {
		return err
	}
	height, err := numAttr(el, "height", 100)
	if err != nil {
		return err
	}

	b.WriteString("  const frame = figma.createFrame();\n")
	if name, ok := el.Attr("name"); ok {
		fmt.Fprintf(b, "  frame.name = %s;\n", encode.Quote(name))
	}
	fmt.Fprintf(b, "  frame.x = %s;\n", encode.Num(p.X))
	fmt.Fprintf(b, "  frame.y = %s;\n", encode.Num(p.Y))
	fmt.Fprintf(b, "  frame.resize(%s, %s);\n", encode.Num(width), encode.Num(height))

	if raw, ok := el.Attr("fill"); ok {
		c, err := encode.Color(raw)
		if err != nil {
			return &LowerError{Attr: "fill", Message: err.Error()}
		}
		fmt.Fprintf(b, "  frame.fills = %s;\n", c.SolidPaint())
	}
	if raw, ok := el.Attr("cornerRadius"); ok {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &LowerError{Attr: "cornerRadius", Message: "not a number: " + raw}
		}
		fmt.Fprintf(b, "  frame.cornerRadius = %s;\n", encode.Num(r))
	}
	if raw, ok := el.Attr("border"); ok {
		c, err := encode.Color(raw)
		if err != nil {
			return &LowerError{Attr: "border", Message: err.Error()}
		}
		fmt.Fprintf(b, "  frame.strokes = %s;\n", c.SolidPaint())
		b.WriteString("  frame.strokeWeight = 1;\n")
	}

	// Layout participation: row maps to the horizontal axis, anything else
	// (including no direction at all) to vertical.
	axis := "VERTICAL"
	if el.AttrOr("direction", "") == "row" {
		axis = "HORIZONTAL"
	}
	fmt.Fprintf(b, "  frame.layoutMode = %s;\n", encode.Quote(axis))

	if raw, ok := el.Attr("spacing"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &LowerError{Attr: "spacing", Message: "not a number: " + raw}
		}
		fmt.Fprintf(b, "  frame.itemSpacing = %s;\n", encode.Num(v))
	}
	if raw, ok := el.Attr("padding"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &LowerError{Attr: "padding", Message: "not a number: " + raw}
		}
		for _, side := range []string{"paddingLeft", "paddingRight", "paddingTop", "paddingBottom"} {
			fmt.Fprintf(b, "  frame.%s = %s;\n", side, encode.Num(v))
		}
	}

	// The generated path never auto-sizes: both axes stay fixed to the
	// resolved width and height.
	b.WriteString("  frame.primaryAxisSizingMode = \"FIXED\";\n")
	b.WriteString("  frame.counterAxisSizingMode = \"FIXED\";\n")
	b.WriteString("  figma.currentPage.appendChild(frame);\n")
	return nil
}

func emitText(b *strings.Builder, el *markup.Element, idx int) error {
	v := fmt.Sprintf("text%d", idx)
	style := fontStyle(el.AttrOr("weight", ""))

	size, err := numAttr(el, "size", DefaultFontSize)
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "  const %s = figma.createText();\n", v)
	fmt.Fprintf(b, "  %s.fontName = { family: %s, style: %s };\n",
		v, encode.Quote(FontFamily), encode.Quote(style))
	fmt.Fprintf(b, "  %s.fontSize = %s;\n", v, encode.Num(size))
	fmt.Fprintf(b, "  %s.characters = %s;\n", v, encode.Quote(el.Text))

	if raw, ok := el.Attr("color"); ok {
		c, err := encode.Color(raw)
		if err != nil {
			return &LowerError{Attr: "color", Message: err.Error()}
		}
		fmt.Fprintf(b, "  %s.fills = %s;\n", v, c.SolidPaint())
	}

	// Attach before sizing flags: fill-sizing only means something once the
	// node participates in the frame's layout.
	fmt.Fprintf(b, "  frame.appendChild(%s);\n", v)
	if el.AttrOr("width", "") == "fill" {
		fmt.Fprintf(b, "  %s.layoutSizingHorizontal = \"FILL\";\n", v)
		fmt.Fprintf(b, "  %s.textAutoResize = \"HEIGHT\";\n", v)
	}
	return nil
}

// fontStyle maps the closed weight vocabulary onto host font style names.
// Anything outside the vocabulary falls back to Regular.
func fontStyle(weight string) string {
	switch weight {
	case "bold":
		return "Bold"
	case "medium":
		return "Medium"
	case "semibold":
		return "Semi Bold"
	default:
		return "Regular"
	}
}

func numAttr(el *markup.Element, name string, def float64) (float64, error) {
	raw, ok := el.Attr(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &LowerError{Attr: name, Message: "not a number: " + raw}
	}
	return v, nil
}
