package markup

import "fmt"

// Tag identifies an element kind. The vocabulary is closed: a Frame root
// containing Text children is the entire grammar.
type Tag string

const (
	// TagFrame is the container element. Exactly one per document, at the root.
	TagFrame Tag = "Frame"
	// TagText is the leaf label element. Only valid as a child of Frame.
	TagText Tag = "Text"
)

// Element is the parsed form of one markup element. It exists only for the
// duration of a single compile - there is no cross-call identity or caching.
type Element struct {
	Tag      Tag
	Attrs    map[string]string
	Children []*Element
	Text     string // literal text content, Text elements only
}

// Attr returns the raw value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// AttrOr returns the raw value of the named attribute, or def if absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attrs[name]; ok {
		return v
	}
	return def
}

// ParseError reports malformed markup with the byte offset where the
// scanner gave up.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup:%d: %s", e.Offset, e.Message)
}
