package scan

import "strings"

type styleLexer struct {
	buffer
}

func newStyleLexer(text string) *styleLexer {
	return &styleLexer{buffer: buffer{src: text}}
}

func isStyleStructural(c byte) bool {
	switch c {
	case '{', '}', ';', ':', ',':
		return true
	}
	return false
}

func (l *styleLexer) next() (Span, bool, error) {
	if l.pos >= len(l.src) {
		return Span{}, false, nil
	}
	start := l.pos
	src := l.src
	c := src[start]

	var end int
	var k SpanKind
	switch {
	case isMarkupSpace(c):
		end = start
		for end < len(src) && isMarkupSpace(src[end]) {
			end++
		}
		k = Whitespace
	case c == '/' && l.peekByte(start+1) == '*':
		i := strings.Index(src[start+2:], "*/")
		if i < 0 {
			return Span{}, false, malformed("unterminated comment", start)
		}
		end = start + 2 + i + 2
		k = BlockComment
	case c == '"' || c == '\'':
		var err error
		end, err = quotedEnd(src, start, "unterminated string")
		if err != nil {
			return Span{}, false, err
		}
		k = StringLiteral
	case isStyleStructural(c):
		end = start + 1
		k = StructuralToken
	default:
		end = start
		for end < len(src) {
			b := src[end]
			if isMarkupSpace(b) || isStyleStructural(b) || b == '"' || b == '\'' {
				break
			}
			if b == '/' && l.peekByte(end+1) == '*' {
				break
			}
			if b == '\\' && end+1 < len(src) {
				end += 2
				continue
			}
			end++
		}
		if end == start {
			end = start + 1
		}
		k = OpaqueContent
	}

	l.pos = end
	return Span{Kind: k, Text: src[start:end], Start: start}, true, nil
}

// quotedEnd returns the offset just past the string literal opening at
// start. A backslash escapes the following byte, so an escaped line break
// continues the literal; an unescaped one ends it with an error.
func quotedEnd(src string, start int, reason string) (int, error) {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			if strings.HasPrefix(src[i+1:], "\r\n") {
				i++
			}
			i++
		case quote:
			return i + 1, nil
		case '\n', '\r':
			return 0, malformed(reason, start)
		}
	}
	return 0, malformed(reason, start)
}
