// Package markup parses the restricted declarative markup accepted by the
// renderer: a single <Frame> root with zero or more <Text> children.
//
// The grammar is deliberately small. It is not XML and not JSX - just an
// attribute-bearing element syntax scanned linearly, with no entities,
// namespaces, or nesting beyond one level. Parsing never touches the
// network; a malformed document fails here, before any script exists.
package markup
