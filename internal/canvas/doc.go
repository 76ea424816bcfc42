// Package canvas is the high-level client for driving a canvas document
// over an established debug connection.
//
// Render is the main entry point: it compiles declarative markup into one
// self-contained script and runs it inside the host, creating a frame with
// its text children in a single atomic evaluation. When the markup does not
// pin a position, Render first asks the host for the current top-level
// layout and places the new frame clear of existing content. The scan and
// the creation are two separate exchanges; content added between them is
// not accounted for.
//
// The remaining operations are thin node-level wrappers (move, resize,
// restyle, inspect) for working with a document outside the render path.
package canvas
