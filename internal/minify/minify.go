// Package minify holds one validation and minification strategy per content
// kind. Strategies are pure: they keep no state between calls and the same
// input always yields byte-identical output.
package minify

import (
	stderrors "errors"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/scan"
)

// Strategy validates and minifies text of a single content kind.
type Strategy interface {
	Kind() kind.Kind

	// Validate reports whether text plausibly belongs to the kind. The
	// returned error is a *errors.ShrinkError with a validation code.
	Validate(text string) error

	// Minify returns a shorter, equivalent encoding of text. It is only
	// defined for text that passed Validate.
	Minify(text string) (string, error)
}

var strategies = map[kind.Kind]Strategy{
	kind.Markup:           markupStrategy{},
	kind.Stylesheet:       stylesheetStrategy{},
	kind.StructuredData:   dataStrategy{},
	kind.Script:           scriptStrategy{kind: kind.Script},
	kind.ScriptWithMarkup: scriptStrategy{kind: kind.ScriptWithMarkup},
}

// For returns the strategy for k.
func For(k kind.Kind) (Strategy, error) {
	s, ok := strategies[k]
	if !ok {
		return nil, errors.UnknownKind(k.String())
	}
	return s, nil
}

// Validate runs the strategy for k against text. It does not apply the size
// ceiling or the empty-input check; the engine does both before calling it.
func Validate(text string, k kind.Kind) error {
	s, err := For(k)
	if err != nil {
		return err
	}
	return s.Validate(text)
}

// Minify runs the strategy for k against text.
func Minify(text string, k kind.Kind) (string, error) {
	s, err := For(k)
	if err != nil {
		return "", err
	}
	return s.Minify(text)
}

// collect scans text and converts scanner failures to MALFORMED_INPUT.
func collect(text string, k kind.Kind) ([]scan.Span, error) {
	spans, err := scan.Collect(text, k)
	if err != nil {
		return nil, malformedFrom(err)
	}
	return spans, nil
}

func malformedFrom(err error) error {
	var me *scan.MalformedError
	if stderrors.As(err, &me) {
		return errors.MalformedInput(me.Reason, me.Offset)
	}
	return errors.Internal("scanning failed", err)
}

// gap describes a run of whitespace and comment spans between two
// significant spans.
type gap struct {
	whitespace bool
	comments   bool
	newline    bool
}

func (g *gap) add(s scan.Span) {
	switch s.Kind {
	case scan.Whitespace:
		g.whitespace = true
	case scan.LineComment, scan.BlockComment:
		g.comments = true
	}
	if scan.HasLineBreak(s.Text) {
		g.newline = true
	}
}

func (g gap) empty() bool {
	return !g.whitespace && !g.comments
}

// significant returns the spans that are neither whitespace nor comments.
func significant(spans []scan.Span) []scan.Span {
	out := make([]scan.Span, 0, len(spans))
	for _, s := range spans {
		if !s.IsTrivia() {
			out = append(out, s)
		}
	}
	return out
}

func lastByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
