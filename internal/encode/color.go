package encode

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a color with channels normalized to the 0-1 range, the form the
// remote host's paint model expects.
type RGB struct {
	R float64
	G float64
	B float64
}

// Color parses a 6-hex-digit color string ("#RRGGBB", leading '#' optional)
// into a normalized RGB triple. Each channel is exactly channel/255 - no
// rounding is applied beyond float64 representation.
func Color(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return RGB{
		R: float64(n>>16&0xFF) / 255,
		G: float64(n>>8&0xFF) / 255,
		B: float64(n&0xFF) / 255,
	}, nil
}

// Script renders the color as a script object literal, e.g.
// "{ r: 1, g: 0.5019607843137255, b: 0 }".
func (c RGB) Script() string {
	return fmt.Sprintf("{ r: %s, g: %s, b: %s }", Num(c.R), Num(c.G), Num(c.B))
}

// SolidPaint renders the color as a single-element solid paint array,
// the shape used for both fills and strokes.
func (c RGB) SolidPaint() string {
	return fmt.Sprintf(`[{ type: "SOLID", color: %s }]`, c.Script())
}
