package scan

import "strings"

// rawTextElements hold character data that is never parsed as markup.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

type markupLexer struct {
	buffer
	inTag    bool
	tagStart int
	closing  bool
	tagName  string
	// rawText names the element whose body must be read up to its end tag.
	rawText string
}

func newMarkupLexer(text string) *markupLexer {
	return &markupLexer{buffer: buffer{src: text}}
}

func (l *markupLexer) next() (Span, bool, error) {
	if span, ok := l.pop(); ok {
		return span, true, nil
	}
	if l.pos >= len(l.src) {
		if l.inTag {
			return Span{}, false, malformed("unterminated tag", l.tagStart)
		}
		return Span{}, false, nil
	}

	var err error
	switch {
	case l.inTag:
		err = l.lexInTag()
	case l.rawText != "":
		l.lexRawText()
	default:
		err = l.lexContent()
	}
	if err != nil {
		return Span{}, false, err
	}
	return l.next()
}

func (l *markupLexer) lexContent() error {
	start := l.pos
	src := l.src
	c := src[start]

	if c == '<' {
		rest := src[start:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(src[start+4:], "-->")
			if end < 0 {
				return malformed("unterminated comment", start)
			}
			l.pos = start + 4 + end + 3
			l.emit(BlockComment, start, l.pos)
			return nil
		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(src[start+9:], "]]>")
			if end < 0 {
				return malformed("unterminated CDATA section", start)
			}
			l.pos = start + 9 + end + 3
			l.emit(OpaqueContent, start, l.pos)
			return nil
		case strings.HasPrefix(rest, "<!"), strings.HasPrefix(rest, "<?"):
			end := strings.IndexByte(src[start+2:], '>')
			if end < 0 {
				return malformed("unterminated declaration", start)
			}
			l.pos = start + 2 + end + 1
			l.emit(StructuralToken, start, l.pos)
			return nil
		case strings.HasPrefix(rest, "</") && isTagNameStart(l.peekByte(start+2)):
			l.openTag(start, 2, true)
			return nil
		case isTagNameStart(l.peekByte(start + 1)):
			l.openTag(start, 1, false)
			return nil
		}
	}

	if isMarkupSpace(c) {
		end := start
		for end < len(src) && isMarkupSpace(src[end]) {
			end++
		}
		l.pos = end
		l.emit(Whitespace, start, end)
		return nil
	}

	// Text runs until whitespace or the next '<'. A lone '<' that does not
	// open a tag is text.
	end := start + 1
	for end < len(src) && src[end] != '<' && !isMarkupSpace(src[end]) {
		end++
	}
	l.pos = end
	l.emit(OpaqueContent, start, end)
	return nil
}

// openTag emits the tag opener and the tag name that follows it.
func (l *markupLexer) openTag(start, width int, closing bool) {
	l.emit(StructuralToken, start, start+width)
	nameStart := start + width
	end := nameStart
	for end < len(l.src) && !isMarkupSpace(l.src[end]) && l.src[end] != '>' && l.src[end] != '/' {
		end++
	}
	l.emit(OpaqueContent, nameStart, end)
	l.pos = end
	l.inTag = true
	l.tagStart = start
	l.closing = closing
	l.tagName = strings.ToLower(l.src[nameStart:end])
}

func (l *markupLexer) lexInTag() error {
	start := l.pos
	src := l.src
	c := src[start]

	switch {
	case isMarkupSpace(c):
		end := start
		for end < len(src) && isMarkupSpace(src[end]) {
			end++
		}
		l.pos = end
		l.emit(Whitespace, start, end)
	case c == '>':
		l.pos = start + 1
		l.emit(StructuralToken, start, l.pos)
		l.inTag = false
		if !l.closing && rawTextElements[l.tagName] {
			l.rawText = l.tagName
		}
	case c == '/' && l.peekByte(start+1) == '>':
		l.pos = start + 2
		l.emit(StructuralToken, start, l.pos)
		l.inTag = false
	case c == '=':
		l.pos = start + 1
		l.emit(StructuralToken, start, l.pos)
	case c == '"' || c == '\'':
		end := strings.IndexByte(src[start+1:], c)
		if end < 0 {
			return malformed("unterminated attribute value", start)
		}
		l.pos = start + 1 + end + 1
		l.emit(StringLiteral, start, l.pos)
	default:
		// Attribute name or unquoted value.
		end := start + 1
		for end < len(src) {
			b := src[end]
			if isMarkupSpace(b) || b == '>' || b == '=' || b == '"' || b == '\'' {
				break
			}
			if b == '/' && l.peekByte(end+1) == '>' {
				break
			}
			end++
		}
		l.pos = end
		l.emit(OpaqueContent, start, end)
	}
	return nil
}

// lexRawText reads the body of a raw-text element up to its end tag. A body
// without an end tag runs to the end of input.
func (l *markupLexer) lexRawText() {
	start := l.pos
	end := indexEndTag(l.src[start:], l.rawText)
	l.rawText = ""
	if end < 0 {
		end = len(l.src) - start
	}
	if end > 0 {
		l.emit(OpaqueContent, start, start+end)
	}
	l.pos = start + end
}

// indexEndTag finds "</name" followed by a tag-name terminator, ignoring
// ASCII case.
func indexEndTag(s, name string) int {
	for i := 0; i+2+len(name) <= len(s); i++ {
		if s[i] != '<' || s[i+1] != '/' || !equalFoldASCII(s[i+2:i+2+len(name)], name) {
			continue
		}
		after := i + 2 + len(name)
		if after >= len(s) || isMarkupSpace(s[after]) || s[after] == '>' || s[after] == '/' {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		x, y := a[i], b[i]
		if 'A' <= x && x <= 'Z' {
			x += 'a' - 'A'
		}
		if 'A' <= y && y <= 'Z' {
			y += 'a' - 'A'
		}
		if x != y {
			return false
		}
	}
	return true
}

func isTagNameStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isMarkupSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}
