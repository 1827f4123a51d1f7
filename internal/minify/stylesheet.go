package minify

import (
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/scan"
)

// selectorCombinators may be written without surrounding spaces when they
// stand alone in a selector prelude.
var selectorCombinators = map[string]bool{
	">": true,
	"+": true,
	"~": true,
}

type stylesheetStrategy struct{}

func (stylesheetStrategy) Kind() kind.Kind { return kind.Stylesheet }

func (stylesheetStrategy) Validate(text string) error {
	spans, err := collect(text, kind.Stylesheet)
	if err != nil {
		return err
	}
	sig := significant(spans)

	depth := 0
	for _, s := range sig {
		switch {
		case s.Is("{"):
			depth++
		case s.Is("}"):
			depth--
			if depth < 0 {
				return errors.MalformedInput(errors.ReasonUnbalanced, -1)
			}
		}
	}
	if depth != 0 {
		return errors.MalformedInput(errors.ReasonUnbalanced, -1)
	}

	for i, s := range sig {
		if s.Is("{") && i > 0 && sig[i-1].Kind != scan.StructuralToken {
			return nil
		}
	}
	return errors.KindMismatch(errors.ReasonNoStyleRules, kind.Stylesheet.DisplayName())
}

func (stylesheetStrategy) Minify(text string) (string, error) {
	spans, err := collect(text, kind.Stylesheet)
	if err != nil {
		return "", err
	}
	sig := significant(spans)
	prelude := preludeFlags(sig)
	atRule := atRuleFlags(sig)

	var out strings.Builder
	out.Grow(len(text))

	n := 0 // index into sig of the next significant span
	var g gap
	for _, s := range spans {
		if s.IsTrivia() {
			g.add(s)
			continue
		}
		if n > 0 && !g.empty() {
			out.WriteString(styleSeparator(sig[n-1], s, prelude[n], atRule[n], g))
		}
		out.WriteString(s.Text)
		g = gap{}
		n++
	}
	return out.String(), nil
}

// styleSeparator returns what replaces the whitespace and comments between
// prev and next. inPrelude is set when next belongs to a rule prelude, and
// atRule when that rule is an at-rule.
func styleSeparator(prev, next scan.Span, inPrelude, atRule bool, g gap) string {
	switch {
	case isStyleBoundary(prev) || isStyleBoundary(next):
		return ""
	case next.Is(":"):
		// "a :hover" and "a:hover" select different elements.
		if inPrelude && !atRule && g.whitespace {
			return " "
		}
		return ""
	case prev.Is(":"):
		return ""
	case inPrelude && !atRule && (isCombinator(prev) || isCombinator(next)):
		return ""
	case !g.whitespace:
		// Comments separate tokens without being whitespace; an empty one
		// keeps "1px/**/2px" from becoming a single token.
		return "/**/"
	}
	return " "
}

func isStyleBoundary(s scan.Span) bool {
	return s.Is("{") || s.Is("}") || s.Is(";") || s.Is(",")
}

func isCombinator(s scan.Span) bool {
	return s.Kind == scan.OpaqueContent && selectorCombinators[s.Text]
}

// preludeFlags marks each significant span that is followed by '{' before
// any ';' or '}', meaning it belongs to a selector or at-rule prelude.
func preludeFlags(sig []scan.Span) []bool {
	flags := make([]bool, len(sig))
	inPrelude := false
	for i := len(sig) - 1; i >= 0; i-- {
		switch {
		case sig[i].Is("{"):
			inPrelude = true
		case sig[i].Is(";"), sig[i].Is("}"):
			inPrelude = false
		}
		flags[i] = inPrelude
	}
	return flags
}

// atRuleFlags marks each significant span of a statement that starts with an
// at-keyword.
func atRuleFlags(sig []scan.Span) []bool {
	flags := make([]bool, len(sig))
	atRule := false
	statementStart := true
	for i, s := range sig {
		if statementStart {
			atRule = strings.HasPrefix(s.Text, "@")
			statementStart = false
		}
		flags[i] = atRule
		if s.Is("{") || s.Is("}") || s.Is(";") {
			statementStart = true
		}
	}
	return flags
}
