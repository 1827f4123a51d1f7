// Package scan splits source text into classified lexical spans.
//
// A scan covers its input exactly: concatenating the Text of every span
// yields the original text. Minifiers rely on this to rewrite only the
// whitespace and comment spans while passing literals through untouched.
package scan

import (
	"fmt"
	"iter"

	"github.com/HartBrook/shrink/internal/kind"
)

// SpanKind classifies a lexical span.
type SpanKind int

const (
	Whitespace SpanKind = iota
	LineComment
	BlockComment
	StringLiteral
	StructuralToken
	OpaqueContent
)

var spanKindNames = [...]string{
	Whitespace:      "whitespace",
	LineComment:     "line-comment",
	BlockComment:    "block-comment",
	StringLiteral:   "string",
	StructuralToken: "structural",
	OpaqueContent:   "opaque",
}

func (k SpanKind) String() string {
	if int(k) < len(spanKindNames) {
		return spanKindNames[k]
	}
	return fmt.Sprintf("SpanKind(%d)", int(k))
}

// Span is a classified substring of the scanned text.
type Span struct {
	Kind  SpanKind
	Text  string
	Start int
	// Markup is set on spans lexed inside an element embedded in script
	// (JSX). Expression containers inside such elements are lexed as code
	// and do not carry the flag.
	Markup bool
}

// End returns the offset one past the last byte of the span.
func (s Span) End() int {
	return s.Start + len(s.Text)
}

// IsTrivia reports whether the span is whitespace or a comment.
func (s Span) IsTrivia() bool {
	return s.Kind == Whitespace || s.Kind == LineComment || s.Kind == BlockComment
}

// IsComment reports whether the span is a comment.
func (s Span) IsComment() bool {
	return s.Kind == LineComment || s.Kind == BlockComment
}

// Is reports whether the span is a structural token with the given text.
func (s Span) Is(text string) bool {
	return s.Kind == StructuralToken && s.Text == text
}

// MalformedError reports input that cannot be tokenized consistently.
type MalformedError struct {
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Reason, e.Offset)
}

func malformed(reason string, offset int) error {
	return &MalformedError{Offset: offset, Reason: reason}
}

// lexer produces spans one at a time. ok is false once input is exhausted.
type lexer interface {
	next() (span Span, ok bool, err error)
}

func newLexer(text string, k kind.Kind) lexer {
	switch {
	case k.IsScript():
		return newScriptLexer(text, k == kind.ScriptWithMarkup)
	case k == kind.Markup:
		return newMarkupLexer(text)
	case k == kind.Stylesheet:
		return newStyleLexer(text)
	case k == kind.StructuredData:
		return newDataLexer(text)
	}
	return nil
}

// Scan returns a lazy, forward-only sequence of spans over text. Iteration
// stops after the first error. Each range over the returned sequence starts
// a fresh scan.
func Scan(text string, k kind.Kind) iter.Seq2[Span, error] {
	return func(yield func(Span, error) bool) {
		lx := newLexer(text, k)
		if lx == nil {
			yield(Span{}, fmt.Errorf("scan: unsupported content kind %v", k))
			return
		}
		for {
			span, ok, err := lx.next()
			if err != nil {
				yield(Span{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(span, nil) {
				return
			}
		}
	}
}

// Collect scans text to completion and returns every span. It panics if the
// spans fail to cover the input exactly, which would be a lexer bug.
func Collect(text string, k kind.Kind) ([]Span, error) {
	spans := make([]Span, 0, len(text)/4+1)
	offset := 0
	for span, err := range Scan(text, k) {
		if err != nil {
			return nil, err
		}
		if span.Start != offset || span.Text == "" {
			panic(fmt.Sprintf("scan: %s span at offset %d breaks coverage at offset %d", span.Kind, span.Start, offset))
		}
		offset = span.End()
		spans = append(spans, span)
	}
	if offset != len(text) {
		panic(fmt.Sprintf("scan: spans end at offset %d of %d", offset, len(text)))
	}
	return spans, nil
}

// buffer holds the shared state of the lexers: the source, the read
// position and spans already produced but not yet handed out.
type buffer struct {
	src     string
	pos     int
	pending []Span
}

func (b *buffer) emit(k SpanKind, start, end int) {
	b.pending = append(b.pending, Span{Kind: k, Text: b.src[start:end], Start: start})
}

func (b *buffer) pop() (Span, bool) {
	if len(b.pending) == 0 {
		return Span{}, false
	}
	span := b.pending[0]
	b.pending = b.pending[1:]
	return span, true
}

func (b *buffer) peekByte(i int) byte {
	if i < len(b.src) {
		return b.src[i]
	}
	return 0
}
