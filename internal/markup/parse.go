package markup

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse scans src into an element tree. The document must contain exactly
// one <Frame> root; its children, if any, must all be <Text> elements.
//
// Attribute values are either double-quoted literals (name="value") or
// brace-delimited raw expressions (name={20}). Duplicate attribute names
// are ambiguous input; the first occurrence wins and later ones are
// ignored, matching the single forward scan the grammar is defined by.
func Parse(src string) (*Element, error) {
	s := &scanner{src: src}

	s.skipSpace()
	root, err := s.element()
	if err != nil {
		return nil, err
	}
	if root.Tag != TagFrame {
		return nil, s.errorf("root element must be <Frame>, got <%s>", root.Tag)
	}

	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf("unexpected content after </Frame>")
	}
	return root, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *scanner) consume(lit string) bool {
	if strings.HasPrefix(s.src[s.pos:], lit) {
		s.pos += len(lit)
		return true
	}
	return false
}

func (s *scanner) errorf(format string, args ...any) *ParseError {
	return &ParseError{Offset: s.pos, Message: fmt.Sprintf(format, args...)}
}

// element parses one element starting at '<'.
func (s *scanner) element() (*Element, error) {
	if !s.consume("<") {
		return nil, s.errorf("expected '<'")
	}

	name := s.ident()
	var tag Tag
	switch name {
	case string(TagFrame):
		tag = TagFrame
	case string(TagText):
		tag = TagText
	case "":
		return nil, s.errorf("expected element name after '<'")
	default:
		return nil, s.errorf("unknown element <%s>", name)
	}

	el := &Element{Tag: tag, Attrs: map[string]string{}}

	if err := s.attributes(el); err != nil {
		return nil, err
	}

	// Self-closing: no children, no text.
	if s.consume("/>") {
		return el, nil
	}
	if !s.consume(">") {
		return nil, s.errorf("expected '>' to close <%s> attribute list", tag)
	}

	switch tag {
	case TagFrame:
		if err := s.frameChildren(el); err != nil {
			return nil, err
		}
	case TagText:
		if err := s.textContent(el); err != nil {
			return nil, err
		}
	}
	return el, nil
}

// attributes scans name="value" and name={raw} pairs until '>' or '/>'.
// First occurrence of a name wins; duplicates are dropped.
func (s *scanner) attributes(el *Element) error {
	for {
		s.skipSpace()
		if s.eof() {
			return s.errorf("unterminated <%s> element", el.Tag)
		}
		if c := s.peek(); c == '>' || c == '/' {
			return nil
		}

		name := s.ident()
		if name == "" {
			return s.errorf("expected attribute name in <%s>", el.Tag)
		}
		s.skipSpace()
		if !s.consume("=") {
			return s.errorf("attribute %q requires a value", name)
		}
		s.skipSpace()

		var value string
		switch s.peek() {
		case '"':
			s.pos++
			end := strings.IndexByte(s.src[s.pos:], '"')
			if end < 0 {
				return s.errorf("unterminated string value for %q", name)
			}
			value = s.src[s.pos : s.pos+end]
			s.pos += end + 1
		case '{':
			s.pos++
			end := strings.IndexByte(s.src[s.pos:], '}')
			if end < 0 {
				return s.errorf("unterminated expression value for %q", name)
			}
			value = strings.TrimSpace(s.src[s.pos : s.pos+end])
			s.pos += end + 1
		default:
			return s.errorf("attribute %q: value must be \"...\" or {...}", name)
		}

		if _, dup := el.Attrs[name]; !dup {
			el.Attrs[name] = value
		}
	}
}

// frameChildren parses the sequence of <Text> children up to </Frame>.
func (s *scanner) frameChildren(frame *Element) error {
	for {
		s.skipSpace()
		if s.consume("</Frame>") {
			return nil
		}
		if s.eof() {
			return s.errorf("missing </Frame>")
		}
		if s.peek() != '<' {
			return s.errorf("unexpected text content inside <Frame>")
		}
		child, err := s.element()
		if err != nil {
			return err
		}
		if child.Tag != TagText {
			return s.errorf("<Frame> children must be <Text>")
		}
		frame.Children = append(frame.Children, child)
	}
}

// textContent captures the literal text up to </Text>. The content is kept
// verbatim apart from trimming surrounding whitespace; escaping happens at
// lowering time, never here.
func (s *scanner) textContent(text *Element) error {
	end := strings.Index(s.src[s.pos:], "</Text>")
	if end < 0 {
		return s.errorf("missing </Text>")
	}
	text.Text = strings.TrimSpace(s.src[s.pos : s.pos+end])
	s.pos += end + len("</Text>")
	return nil
}

// ident scans an attribute or element name: a letter followed by letters,
// digits, or hyphens.
func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() {
		c := s.src[s.pos]
		isAlpha := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
		isTail := isAlpha || c >= '0' && c <= '9' || c == '-'
		if s.pos == start && !isAlpha {
			break
		}
		if s.pos > start && !isTail {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}
