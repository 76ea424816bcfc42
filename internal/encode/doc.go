// Package encode holds the value-encoding helpers shared by every
// script-building call site: hex color parsing, script string literals,
// and numeric literal formatting.
//
// Everything here is pure - no I/O, no host interaction. The helpers are
// the single source of truth for how Go values appear inside generated
// scripts, so the compiler and the per-feature canvas operations cannot
// drift apart.
package encode
