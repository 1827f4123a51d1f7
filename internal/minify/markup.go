package minify

import (
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/scan"
)

// inlineElements render the whitespace between them, so a whitespace run
// separating two of them collapses to one space instead of disappearing.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"button": true, "cite": true, "code": true, "data": true, "del": true,
	"dfn": true, "em": true, "i": true, "img": true, "input": true,
	"ins": true, "kbd": true, "label": true, "mark": true, "q": true,
	"s": true, "samp": true, "select": true, "small": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true, "time": true,
	"tt": true, "u": true, "var": true,
}

// preservedElements keep their whitespace as written.
var preservedElements = map[string]bool{
	"pre":     true,
	"listing": true,
}

type markupStrategy struct{}

func (markupStrategy) Kind() kind.Kind { return kind.Markup }

// Validate requires at least one start tag. Tags inside comments and
// attribute values are never seen because the scanner classifies those
// regions as comments and strings.
func (markupStrategy) Validate(text string) error {
	spans, err := collect(text, kind.Markup)
	if err != nil {
		return err
	}
	for i, s := range spans {
		if s.Is("<") && i+1 < len(spans) && spans[i+1].Kind == scan.OpaqueContent {
			return nil
		}
	}
	return errors.KindMismatch(errors.ReasonNoMarkupTags, kind.Markup.DisplayName())
}

func (markupStrategy) Minify(text string) (string, error) {
	spans, err := collect(text, kind.Markup)
	if err != nil {
		return "", err
	}
	m := &markupMinifier{spans: spans, last: neighbour{start: true}}
	m.out.Grow(len(text))
	m.run()
	return m.out.String(), nil
}

// neighbour describes what sits on one side of a whitespace run.
type neighbour struct {
	start  bool // start or end of the document
	tag    bool // a tag, declaration or kept comment
	inline bool
}

type markupMinifier struct {
	spans []scan.Span
	out   strings.Builder

	inTag    bool
	closing  bool
	tagName  string
	preDepth int
	last     neighbour
}

func (m *markupMinifier) run() {
	for i := 0; i < len(m.spans); i++ {
		s := m.spans[i]
		switch {
		case m.inTag:
			m.tagSpan(i)
		case s.Kind == scan.Whitespace || s.Kind == scan.BlockComment && !keepComment(s.Text):
			i = m.gap(i) - 1
		case s.Is("<") || s.Is("</"):
			m.inTag = true
			m.closing = s.Text == "</"
			m.tagName = strings.ToLower(m.spans[i+1].Text)
			m.out.WriteString(s.Text)
		default:
			m.out.WriteString(s.Text)
			m.last = describe(s)
		}
	}
}

// gap consumes the whitespace and comment run starting at i and returns the
// index of the first span after it.
func (m *markupMinifier) gap(i int) int {
	j := i
	for ; j < len(m.spans); j++ {
		s := m.spans[j]
		if s.Kind != scan.Whitespace && !(s.Kind == scan.BlockComment && !keepComment(s.Text)) {
			break
		}
		if m.preDepth > 0 && s.Kind == scan.Whitespace {
			m.out.WriteString(s.Text)
		}
	}
	// A comment alone between two pieces of text joins them.
	if m.preDepth > 0 || !hasWhitespace(m.spans[i:j]) {
		return j
	}

	right := neighbour{start: true}
	if j < len(m.spans) {
		right = m.describeAt(j)
	}
	switch {
	case m.last.start || right.start:
	case m.last.tag && right.tag:
		if m.last.inline && right.inline {
			m.out.WriteByte(' ')
		}
	default:
		m.out.WriteByte(' ')
	}
	return j
}

func (m *markupMinifier) describeAt(j int) neighbour {
	s := m.spans[j]
	if (s.Is("<") || s.Is("</")) && j+1 < len(m.spans) {
		return neighbour{tag: true, inline: inlineElements[strings.ToLower(m.spans[j+1].Text)]}
	}
	return describe(s)
}

func describe(s scan.Span) neighbour {
	switch s.Kind {
	case scan.StructuralToken, scan.BlockComment:
		return neighbour{tag: true}
	}
	return neighbour{}
}

func (m *markupMinifier) tagSpan(i int) {
	s := m.spans[i]
	switch {
	case s.Kind == scan.Whitespace:
		m.out.WriteString(m.tagSpace(i))
	case s.Is(">") || s.Is("/>"):
		m.out.WriteString(s.Text)
		m.inTag = false
		if preservedElements[m.tagName] && s.Text == ">" {
			if !m.closing {
				m.preDepth++
			} else if m.preDepth > 0 {
				m.preDepth--
			}
		}
		m.last = neighbour{tag: true, inline: inlineElements[m.tagName]}
	default:
		m.out.WriteString(s.Text)
	}
}

// tagSpace returns the replacement for the whitespace span at i inside a
// tag. Spaces before '>' and around '=' are dropped. Before '/>' the space
// goes only after a quoted value or the tag name, since an unquoted value
// would absorb the slash.
func (m *markupMinifier) tagSpace(i int) string {
	prev, next := m.spans[i-1], m.spans[i+1]
	switch {
	case next.Is(">"):
		return ""
	case next.Is("/>"):
		if prev.Kind == scan.StringLiteral || i >= 2 && (m.spans[i-2].Is("<") || m.spans[i-2].Is("</")) {
			return ""
		}
		return " "
	case next.Is("=") || prev.Is("="):
		return ""
	}
	return " "
}

// keepComment reports whether a comment carries meaning for some browsers.
func keepComment(text string) bool {
	return strings.HasPrefix(text, "<!--[if") || strings.HasPrefix(text, "<!--<![endif]")
}

func hasWhitespace(spans []scan.Span) bool {
	for _, s := range spans {
		if s.Kind == scan.Whitespace {
			return true
		}
	}
	return false
}
