package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuators are matched longest first.
var punctuators = []string{
	">>>=",
	"...", "===", "!==", "**=", "<<=", ">>=", ">>>", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**",
}

const singlePunctuators = "{}()[];,<>+-*/%&|^!~?:=.@"

// regexKeywords are the keywords after which a slash starts a regular
// expression rather than a division.
var regexKeywords = map[string]bool{
	"return":     true,
	"typeof":     true,
	"instanceof": true,
	"in":         true,
	"of":         true,
	"new":        true,
	"delete":     true,
	"void":       true,
	"throw":      true,
	"case":       true,
	"do":         true,
	"else":       true,
	"yield":      true,
	"await":      true,
}

type scriptLexer struct {
	buffer
	jsx bool
	// prev is the last span that was neither whitespace nor a comment.
	prev    Span
	hasPrev bool
}

func newScriptLexer(text string, jsx bool) *scriptLexer {
	return &scriptLexer{buffer: buffer{src: text}, jsx: jsx}
}

// subLexer returns a lexer for an expression embedded at pos. It starts in
// expression position, so a leading slash is a regular expression.
func (l *scriptLexer) subLexer(pos int) *scriptLexer {
	return &scriptLexer{buffer: buffer{src: l.src, pos: pos}, jsx: l.jsx}
}

func (l *scriptLexer) next() (Span, bool, error) {
	if span, ok := l.pop(); ok {
		return span, true, nil
	}
	if l.pos >= len(l.src) {
		return Span{}, false, nil
	}
	if err := l.lex(); err != nil {
		return Span{}, false, err
	}
	span, _ := l.pop()
	return span, true, nil
}

// regexAllowed applies the previous-significant-token rule.
func (l *scriptLexer) regexAllowed() bool {
	if !l.hasPrev {
		return true
	}
	switch l.prev.Kind {
	case StructuralToken:
		switch l.prev.Text {
		case ")", "]", "++", "--":
			return false
		}
		return true
	case OpaqueContent:
		return regexKeywords[l.prev.Text]
	}
	return false
}

func (l *scriptLexer) lex() error {
	start := l.pos
	src := l.src
	c := src[start]

	var (
		end int
		k   SpanKind
		err error
	)
	switch {
	case start == 0 && strings.HasPrefix(src, "#!"):
		// The hashbang line is kept verbatim and is not an operand.
		end = lineEnd(src, start)
		l.pos = end
		l.emit(OpaqueContent, start, end)
		return nil
	case scriptSpaceWidth(src, start) > 0:
		end = start
		for end < len(src) {
			w := scriptSpaceWidth(src, end)
			if w == 0 {
				break
			}
			end += w
		}
		k = Whitespace
	case c == '/' && l.peekByte(start+1) == '/':
		end = lineEnd(src, start)
		k = LineComment
	case c == '/' && l.peekByte(start+1) == '*':
		i := strings.Index(src[start+2:], "*/")
		if i < 0 {
			return malformed("unterminated comment", start)
		}
		end = start + 2 + i + 2
		k = BlockComment
	case c == '/' && l.regexAllowed():
		end, err = regexEnd(src, start)
		k = StringLiteral
	case c == '\'' || c == '"':
		end, err = quotedEnd(src, start, "unterminated string literal")
		k = StringLiteral
	case c == '`':
		end, err = l.templateEnd(start)
		k = StringLiteral
	case l.jsx && c == '<' && l.regexAllowed() && isElementStart(l.peekByte(start+1)):
		end, err = l.lexElement(start)
		if err != nil {
			return err
		}
		l.pos = end
		l.prev = Span{Kind: StringLiteral, Start: start}
		l.hasPrev = true
		return nil
	case isDigit(c) || c == '.' && isDigit(l.peekByte(start+1)):
		end = numberEnd(src, start)
		k = OpaqueContent
	case isIdentStart(src, start):
		end = identEnd(src, start)
		k = OpaqueContent
	default:
		end = l.punctuatorEnd(start)
		k = StructuralToken
		if end == start {
			_, w := utf8.DecodeRuneInString(src[start:])
			end = start + w
			k = OpaqueContent
		}
	}
	if err != nil {
		return err
	}

	l.pos = end
	l.emit(k, start, end)
	if k != Whitespace && k != LineComment && k != BlockComment {
		l.prev = Span{Kind: k, Text: src[start:end], Start: start}
		l.hasPrev = true
	}
	return nil
}

func (l *scriptLexer) punctuatorEnd(start int) int {
	rest := l.src[start:]
	for _, p := range punctuators {
		if !strings.HasPrefix(rest, p) {
			continue
		}
		// "a?.5:1" is a conditional, not optional chaining.
		if p == "?." && isDigit(l.peekByte(start+2)) {
			continue
		}
		return start + len(p)
	}
	if strings.IndexByte(singlePunctuators, rest[0]) >= 0 {
		return start + 1
	}
	return start
}

// JoinsPunctuator reports whether writing a directly before b would start a
// punctuator longer than a, as "<" and "<" make "<<".
func JoinsPunctuator(a, b string) bool {
	joined := a + b
	for _, p := range punctuators {
		if len(p) > len(a) && strings.HasPrefix(joined, p) {
			return true
		}
	}
	return false
}

// templateEnd returns the offset just past the template literal opening at
// start. Substitutions are scanned with a nested lexer so that braces and
// backticks inside strings, regular expressions or nested templates do not
// end them early.
func (l *scriptLexer) templateEnd(start int) (int, error) {
	src := l.src
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '`':
			return i + 1, nil
		case '$':
			if l.peekByte(i+1) != '{' {
				i++
				continue
			}
			_, closing, err := l.subLexer(i+2).expression(i)
			if err != nil {
				return 0, err
			}
			i = closing + 1
		default:
			i++
		}
	}
	return 0, malformed("unterminated template literal", start)
}

// expression lexes code up to the brace that closes an embedded expression
// opened at open. It returns the spans before that brace and its offset.
func (l *scriptLexer) expression(open int) ([]Span, int, error) {
	var spans []Span
	depth := 0
	for {
		span, ok, err := l.next()
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return nil, 0, malformed("unterminated expression", open)
		}
		if span.Kind == StructuralToken && !span.Markup {
			switch span.Text {
			case "{":
				depth++
			case "}":
				if depth == 0 {
					return spans, span.Start, nil
				}
				depth--
			}
		}
		spans = append(spans, span)
	}
}

func regexEnd(src string, start int) (int, error) {
	inClass := false
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
			if i < len(src) && (src[i] == '\n' || src[i] == '\r') {
				return 0, malformed("unterminated regular expression", start)
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if inClass {
				continue
			}
			end := i + 1
			for end < len(src) && isIdentByte(src[end]) {
				end++
			}
			return end, nil
		case '\n', '\r':
			return 0, malformed("unterminated regular expression", start)
		}
	}
	return 0, malformed("unterminated regular expression", start)
}

func numberEnd(src string, start int) int {
	hex := src[start] == '0' && start+1 < len(src) && (src[start+1] == 'x' || src[start+1] == 'X')
	i := start
	for i < len(src) {
		b := src[i]
		switch {
		case isIdentByte(b) || b == '.':
			i++
		case (b == '+' || b == '-') && !hex && i > start && (src[i-1] == 'e' || src[i-1] == 'E'):
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentStart(src string, i int) bool {
	c := src[i]
	if c >= utf8.RuneSelf {
		return scriptSpaceWidth(src, i) == 0 && !isLineBreakRune(src, i)
	}
	return isLetter(c) || c == '_' || c == '$' || c == '\\' || c == '#'
}

func identEnd(src string, start int) int {
	i := start + 1
	if src[start] == '\\' {
		i++
	} else if src[start] >= utf8.RuneSelf {
		_, w := utf8.DecodeRuneInString(src[start:])
		i = start + w
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\':
			i += 2
		case c >= utf8.RuneSelf:
			if scriptSpaceWidth(src, i) > 0 {
				return i
			}
			_, w := utf8.DecodeRuneInString(src[i:])
			i += w
		case isIdentByte(c):
			i++
		default:
			return i
		}
	}
	return len(src)
}

// lineEnd returns the offset of the next line terminator at or after start,
// or the end of src.
func lineEnd(src string, start int) int {
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\n', '\r':
			return i
		case 0xE2:
			if isLineBreakRune(src, i) {
				return i
			}
		}
	}
	return len(src)
}

// isLineBreakRune reports whether U+2028 or U+2029 starts at i.
func isLineBreakRune(src string, i int) bool {
	return strings.HasPrefix(src[i:], "\u2028") || strings.HasPrefix(src[i:], "\u2029")
}

// scriptSpaceWidth returns the byte width of the whitespace or line
// terminator at i, or 0.
func scriptSpaceWidth(src string, i int) int {
	c := src[i]
	if c < utf8.RuneSelf {
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return 1
		}
		return 0
	}
	r, w := utf8.DecodeRuneInString(src[i:])
	if r == '\u2028' || r == '\u2029' || r == '\uFEFF' || unicode.Is(unicode.Zs, r) {
		return w
	}
	return 0
}

// HasLineBreak reports whether s contains a script line terminator.
func HasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\n\r\u2028\u2029")
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_' || c == '$'
}
