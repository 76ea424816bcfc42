// Package genscript lowers a parsed markup tree into a single executable
// script for the remote host's plugin environment.
//
// The emitted statement order is a contract, not an implementation detail:
// the host rejects text assignment before the font is resolved, and
// layout-dependent sizing flags are only meaningful after a node is
// attached to its container. Lowering therefore always emits
//
//	font loads -> frame creation -> per-text: create, font, characters,
//	attach, then sizing flags
//
// in that order, and tests pin it down textually.
package genscript
