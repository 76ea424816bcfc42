package genscript

import (
	"strconv"

	"github.com/roach88/limn/internal/markup"
)

// Clearance is the horizontal gap left between an auto-placed frame and the
// right edge of the right-most existing sibling.
const Clearance = 100

// Rect is the geometry of an existing canvas node, as returned by the
// sibling scan script.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement is a resolved frame position.
type Placement struct {
	X float64
	Y float64
}

// SiblingScanScript returns the read-side script of the two round-trip
// placement sequence: it reports the geometry of every top-level node on
// the current page. The write (the lowered creation script) happens in a
// second, separate evaluation - the pair is not atomic, so auto-placement
// is best-effort against concurrent edits by the host's own users.
func SiblingScanScript() string {
	return `(() => figma.currentPage.children.map((n) => ({ x: n.x, y: n.y, width: n.width, height: n.height })))()`
}

// ResolveX applies the auto-placement heuristic: the maximum right edge
// (x + width) among existing siblings plus Clearance, or 0 when the canvas
// is empty.
func ResolveX(siblings []Rect) float64 {
	if len(siblings) == 0 {
		return 0
	}
	max := siblings[0].X + siblings[0].Width
	for _, r := range siblings[1:] {
		if edge := r.X + r.Width; edge > max {
			max = edge
		}
	}
	return max + Clearance
}

// PlacementFor resolves where the root frame goes. An explicit x or y
// attribute is used verbatim - the heuristic never overrides it. Without an
// explicit x, ResolveX runs over the supplied sibling snapshot; y defaults
// to 0.
func PlacementFor(root *markup.Element, siblings []Rect) (Placement, error) {
	var p Placement

	if raw, ok := root.Attr("x"); ok {
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, &LowerError{Attr: "x", Message: "not a number: " + raw}
		}
		p.X = x
	} else {
		p.X = ResolveX(siblings)
	}

	if raw, ok := root.Attr("y"); ok {
		y, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, &LowerError{Attr: "y", Message: "not a number: " + raw}
		}
		p.Y = y
	}

	return p, nil
}

// NeedsSiblingScan reports whether rendering root requires the read
// round-trip before lowering. Explicit x placement skips the scan entirely.
func NeedsSiblingScan(root *markup.Element) bool {
	_, ok := root.Attr("x")
	return !ok
}
