package minify

import (
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/scan"
)

// scriptMarkers are the tokens whose presence marks text as code.
var scriptMarkers = map[string]bool{
	"var":      true,
	"let":      true,
	"const":    true,
	"function": true,
	"class":    true,
	"import":   true,
	"export":   true,
}

// restrictedKeywords may not be followed by a line break without ending
// the statement.
var restrictedKeywords = map[string]bool{
	"return":   true,
	"break":    true,
	"continue": true,
	"throw":    true,
	"yield":    true,
	"async":    true,
}

// closers end an operand, so a statement may end right after them.
var closers = map[string]bool{
	")":  true,
	"]":  true,
	"}":  true,
	"++": true,
	"--": true,
}

// continuations can only continue an expression, never start a statement.
var continuations = map[string]bool{
	")": true, "]": true, "}": true, ".": true, "?.": true, ",": true,
	";": true, ":": true, "?": true, "=": true, "==": true, "===": true,
	"!=": true, "!==": true, "<": true, ">": true, "<=": true, ">=": true,
	"<<": true, ">>": true, ">>>": true, "*": true, "/": true, "%": true,
	"**": true, "&": true, "|": true, "^": true, "&&": true, "||": true,
	"??": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true, "&&=": true, "||=": true, "??=": true,
}

// tagPunctuation in embedded markup never needs a space next to it.
var tagPunctuation = map[string]bool{
	"<":  true,
	"</": true,
	">":  true,
	"/>": true,
	"=":  true,
}

type scriptStrategy struct {
	kind kind.Kind
}

func (s scriptStrategy) Kind() kind.Kind { return s.kind }

func (s scriptStrategy) Validate(text string) error {
	spans, err := collect(text, s.kind)
	if err != nil {
		return err
	}
	for i, sp := range spans {
		if sp.Markup {
			if sp.Is("<") && i+1 < len(spans) && isUpper(firstByte(spans[i+1].Text)) {
				return nil
			}
			continue
		}
		if sp.Kind == scan.OpaqueContent && scriptMarkers[sp.Text] || sp.Is("=>") {
			return nil
		}
	}
	return errors.KindMismatch(errors.ReasonNoScriptMarkers, s.kind.DisplayName())
}

func (s scriptStrategy) Minify(text string) (string, error) {
	spans, err := collect(text, s.kind)
	if err != nil {
		return "", err
	}
	m := &scriptMinifier{}
	m.out.Grow(len(text))
	m.run(spans)
	return m.out.String(), nil
}

type scriptMinifier struct {
	out     strings.Builder
	prev    scan.Span
	hasPrev bool
	// punct holds the punctuation that ends the output so far, so that a
	// punctuator is not formed across more than two tokens.
	punct string
	// contexts tracks embedded markup: 't' inside a tag, 'c' inside an
	// {expression} container.
	contexts []byte
}

func (m *scriptMinifier) run(spans []scan.Span) {
	var g gap
	markupGap := false
	for _, s := range spans {
		if s.IsTrivia() {
			if g.empty() {
				markupGap = s.Markup
			}
			g.add(s)
			continue
		}

		text := s.Text
		switch {
		case s.Markup && s.Kind == scan.OpaqueContent && !m.inTag():
			text = CleanJSXText(s.Text)
		case m.hasPrev && !g.empty():
			sep := ""
			if markupGap {
				sep = markupSeparator(m.prev, s)
			} else {
				sep = scriptSeparator(m.prev, s, g.newline)
				if sep == "" && s.Kind == scan.StructuralToken && joinsTail(m.punct, s.Text) {
					sep = " "
				}
			}
			if sep != "" {
				m.punct = ""
			}
			m.out.WriteString(sep)
		}
		m.out.WriteString(text)
		m.trackPunct(s)
		m.track(s)
		m.prev = s
		m.hasPrev = true
		g = gap{}
	}
}

func (m *scriptMinifier) trackPunct(s scan.Span) {
	if s.Kind != scan.StructuralToken {
		m.punct = ""
		return
	}
	m.punct += s.Text
	if len(m.punct) > 4 {
		m.punct = m.punct[len(m.punct)-4:]
	}
}

// joinsTail reports whether next would form a punctuator with any suffix of
// tail, as "." after ".." makes "...".
func joinsTail(tail, next string) bool {
	for i := range len(tail) {
		if scan.JoinsPunctuator(tail[i:], next) {
			return true
		}
	}
	return false
}

func (m *scriptMinifier) inTag() bool {
	return len(m.contexts) > 0 && m.contexts[len(m.contexts)-1] == 't'
}

func (m *scriptMinifier) track(s scan.Span) {
	if !s.Markup || s.Kind != scan.StructuralToken {
		return
	}
	switch s.Text {
	case "<", "</":
		m.contexts = append(m.contexts, 't')
	case "{":
		m.contexts = append(m.contexts, 'c')
	case ">", "/>", "}":
		if len(m.contexts) > 0 {
			m.contexts = m.contexts[:len(m.contexts)-1]
		}
	}
}

// markupSeparator replaces whitespace and comments inside an embedded tag.
func markupSeparator(prev, next scan.Span) string {
	if isTagPunctuation(prev) || isTagPunctuation(next) {
		return ""
	}
	return " "
}

func isTagPunctuation(s scan.Span) bool {
	return s.Markup && s.Kind == scan.StructuralToken && tagPunctuation[s.Text]
}

// scriptSeparator replaces whitespace and comments between two code tokens.
// A line break survives unless removing it cannot change where automatic
// semicolon insertion ends a statement; otherwise a space survives only
// where the tokens would merge.
func scriptSeparator(prev, next scan.Span, newline bool) string {
	if newline && !lineBreakRemovable(prev, next) {
		return "\n"
	}
	if tokensMerge(prev, next) {
		return " "
	}
	return ""
}

func lineBreakRemovable(prev, next scan.Span) bool {
	if prev.Start == 0 && strings.HasPrefix(prev.Text, "#!") {
		return false
	}
	if prev.Kind == scan.OpaqueContent && !prev.Markup && restrictedKeywords[prev.Text] {
		return false
	}
	if prev.Kind == scan.StructuralToken && (!prev.Markup || prev.Text == "{") && !closers[prev.Text] {
		return true
	}
	return next.Kind == scan.StructuralToken && (!next.Markup || next.Text == "}") && continuations[next.Text]
}

// tokensMerge is the adjacency table: it reports whether writing prev and
// next with nothing between them would lex differently.
func tokensMerge(prev, next scan.Span) bool {
	a, b := lastByte(prev.Text), firstByte(next.Text)
	switch {
	case isWordByte(a) && isWordByte(b):
		return true
	case prev.Kind == scan.StringLiteral && firstByte(prev.Text) == '/' && isWordByte(b):
		// Regular expression flags would absorb the word.
		return true
	case isNumber(prev) && b == '.':
		return true
	case a == '.' && isDigit(b):
		return true
	case a == '+' && b == '+', a == '-' && b == '-':
		return true
	case a == '/' && (b == '/' || b == '*'):
		return true
	case a == '<' && b == '!', a == '-' && b == '>':
		return true
	case prev.Kind == scan.StructuralToken && next.Kind == scan.StructuralToken:
		return scan.JoinsPunctuator(prev.Text, next.Text)
	}
	return false
}

func isNumber(s scan.Span) bool {
	if s.Kind != scan.OpaqueContent || s.Text == "" {
		return false
	}
	c := s.Text[0]
	return isDigit(c) || c == '.' && len(s.Text) > 1 && isDigit(s.Text[1])
}

func isWordByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || isDigit(c) ||
		c == '_' || c == '$' || c == '\\' || c == '#' || c >= 0x80
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}

// CleanJSXText returns the string value of a JSX text child. Lines are
// trimmed of the spaces and tabs around their breaks, blank lines are
// dropped and the remaining lines are joined by single spaces. Text on a
// single line keeps its spaces, with tabs turned into spaces.
func CleanJSXText(text string) string {
	lines := splitLines(text)
	lastNonEmpty := 0
	for i, line := range lines {
		if strings.Trim(line, " \t") != "" {
			lastNonEmpty = i
		}
	}

	var b strings.Builder
	for i, line := range lines {
		t := strings.ReplaceAll(line, "\t", " ")
		if i > 0 {
			t = strings.TrimLeft(t, " ")
		}
		if i < len(lines)-1 {
			t = strings.TrimRight(t, " ")
		}
		if t == "" {
			continue
		}
		b.WriteString(t)
		if i != lastNonEmpty {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
