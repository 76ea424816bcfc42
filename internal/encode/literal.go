package encode

import (
	"encoding/json"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Quote renders s as a script string literal. The value is JSON-escaped so
// user-supplied content can never break out into executable syntax, and
// normalized to NFC first so the characters the host renders do not depend
// on how the caller composed combining marks.
func Quote(s string) string {
	b, err := json.Marshal(norm.NFC.String(s))
	if err != nil {
		// json.Marshal of a string cannot fail; keep the compiler total anyway.
		return `""`
	}
	return string(b)
}

// Num renders f as a script numeric literal using the shortest decimal
// representation that round-trips. NaN and infinities have no literal form
// and collapse to 0.
func Num(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
