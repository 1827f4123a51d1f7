package scan

type dataLexer struct {
	buffer
}

func newDataLexer(text string) *dataLexer {
	return &dataLexer{buffer: buffer{src: text}}
}

func isDataStructural(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',':
		return true
	}
	return false
}

func isDataSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// next splits structured data into spans. Grammar checks belong to the
// strict parser; this lexer only fails on an unterminated string.
func (l *dataLexer) next() (Span, bool, error) {
	if l.pos >= len(l.src) {
		return Span{}, false, nil
	}
	start := l.pos
	src := l.src
	c := src[start]

	var end int
	var k SpanKind
	switch {
	case isDataSpace(c):
		end = start
		for end < len(src) && isDataSpace(src[end]) {
			end++
		}
		k = Whitespace
	case c == '"':
		var err error
		end, err = quotedEnd(src, start, "unterminated string")
		if err != nil {
			return Span{}, false, err
		}
		k = StringLiteral
	case isDataStructural(c):
		end = start + 1
		k = StructuralToken
	default:
		end = start + 1
		for end < len(src) && !isDataSpace(src[end]) && !isDataStructural(src[end]) && src[end] != '"' {
			end++
		}
		k = OpaqueContent
	}

	l.pos = end
	return Span{Kind: k, Text: src[start:end], Start: start}, true, nil
}
