package scan

import (
	"strings"
	"unicode/utf8"
)

// isElementStart reports whether c, following a '<' in expression position,
// opens an embedded element or fragment.
func isElementStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '$' || c == '>'
}

// mark queues a span that belongs to embedded markup.
func (l *scriptLexer) mark(k SpanKind, start, end int) {
	l.pending = append(l.pending, Span{Kind: k, Text: l.src[start:end], Start: start, Markup: true})
}

// markSpace queues the whitespace run at i, if any, and returns its end.
func (l *scriptLexer) markSpace(i int) int {
	end := i
	for end < len(l.src) {
		w := scriptSpaceWidth(l.src, end)
		if w == 0 {
			break
		}
		end += w
	}
	if end > i {
		l.mark(Whitespace, i, end)
	}
	return end
}

func elementNameEnd(src string, i int) int {
	for i < len(src) {
		c := src[i]
		switch {
		case isIdentByte(c) || c == '-' || c == ':' || c == '.':
			i++
		case c >= utf8.RuneSelf && scriptSpaceWidth(src, i) == 0:
			_, w := utf8.DecodeRuneInString(src[i:])
			i += w
		default:
			return i
		}
	}
	return i
}

// lexElement queues the spans of the element or fragment opening at start
// and returns the offset just past it.
func (l *scriptLexer) lexElement(start int) (int, error) {
	src := l.src
	l.mark(StructuralToken, start, start+1)
	i := start + 1
	if l.peekByte(i) == '>' {
		l.mark(StructuralToken, i, i+1)
		return l.lexChildren(start, i+1, "")
	}

	nameEnd := elementNameEnd(src, i)
	if nameEnd == i {
		return 0, malformed("invalid element name", i)
	}
	name := src[i:nameEnd]
	l.mark(OpaqueContent, i, nameEnd)
	i = nameEnd

	for {
		i = l.markSpace(i)
		if i >= len(src) {
			return 0, malformed("unterminated element tag", start)
		}
		var err error
		switch c := src[i]; {
		case c == '/' && l.peekByte(i+1) == '>':
			l.mark(StructuralToken, i, i+2)
			return i + 2, nil
		case c == '>':
			l.mark(StructuralToken, i, i+1)
			return l.lexChildren(start, i+1, name)
		case c == '/' && l.peekByte(i+1) == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return 0, malformed("unterminated comment", i)
			}
			l.mark(BlockComment, i, i+2+end+2)
			i += 2 + end + 2
		case c == '/' && l.peekByte(i+1) == '/':
			end := lineEnd(src, i)
			l.mark(LineComment, i, end)
			i = end
		case c == '=':
			l.mark(StructuralToken, i, i+1)
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(src[i+1:], c)
			if end < 0 {
				return 0, malformed("unterminated attribute value", i)
			}
			l.mark(StringLiteral, i, i+1+end+1)
			i += 1 + end + 1
		case c == '{':
			i, err = l.lexContainer(i)
		case c == '<':
			i, err = l.lexElement(i)
		default:
			end := elementNameEnd(src, i)
			if end == i {
				return 0, malformed("unexpected character in element tag", i)
			}
			l.mark(OpaqueContent, i, end)
			i = end
		}
		if err != nil {
			return 0, err
		}
	}
}

// lexChildren queues the children of the element opened at start, up to
// and including its closing tag.
func (l *scriptLexer) lexChildren(start, i int, name string) (int, error) {
	src := l.src
	for {
		if i >= len(src) {
			return 0, malformed("unterminated element", start)
		}
		var err error
		switch src[i] {
		case '<':
			if l.peekByte(i+1) == '/' {
				return l.lexClosing(i, name)
			}
			i, err = l.lexElement(i)
		case '{':
			i, err = l.lexContainer(i)
		default:
			end := i
			for end < len(src) && src[end] != '<' && src[end] != '{' {
				end++
			}
			l.mark(OpaqueContent, i, end)
			i = end
		}
		if err != nil {
			return 0, err
		}
	}
}

func (l *scriptLexer) lexClosing(i int, name string) (int, error) {
	src := l.src
	l.mark(StructuralToken, i, i+2)
	j := l.markSpace(i + 2)
	end := elementNameEnd(src, j)
	if src[j:end] != name {
		return 0, malformed("mismatched closing tag", i)
	}
	if end > j {
		l.mark(OpaqueContent, j, end)
	}
	j = l.markSpace(end)
	if j >= len(src) || src[j] != '>' {
		return 0, malformed("unterminated closing tag", i)
	}
	l.mark(StructuralToken, j, j+1)
	return j + 1, nil
}

// lexContainer queues an embedded {expression} whose code is lexed as
// script.
func (l *scriptLexer) lexContainer(i int) (int, error) {
	l.mark(StructuralToken, i, i+1)
	spans, closing, err := l.subLexer(i + 1).expression(i)
	if err != nil {
		return 0, err
	}
	l.pending = append(l.pending, spans...)
	l.mark(StructuralToken, closing, closing+1)
	return closing + 1, nil
}
