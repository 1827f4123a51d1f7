// Package equiv checks that minified text still means what the original
// meant. Each kind is reduced to a canonical event stream that ignores
// whitespace and comments, and the two streams must match.
package equiv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/minify"
	"github.com/HartBrook/shrink/internal/scan"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MismatchError describes the first place where two event streams differ.
type MismatchError struct {
	Kind     kind.Kind
	Index    int
	Original string
	Minified string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s output differs at event %d: %q became %q",
		e.Kind.DisplayName(), e.Index, e.Original, e.Minified)
}

// Check reports whether minified is equivalent to original under k. It
// returns a *MismatchError when they differ, or another error when either
// text cannot be read as k.
func Check(original, minified string, k kind.Kind) error {
	switch k {
	case kind.StructuredData:
		return checkData(original, minified)
	case kind.Markup:
		a, err := markupEvents(original)
		if err != nil {
			return fmt.Errorf("reading original: %w", err)
		}
		b, err := markupEvents(minified)
		if err != nil {
			return fmt.Errorf("reading minified: %w", err)
		}
		return compare(k, a, b)
	case kind.Stylesheet, kind.Script, kind.ScriptWithMarkup:
		a, err := tokenEvents(original, k)
		if err != nil {
			return fmt.Errorf("reading original: %w", err)
		}
		b, err := tokenEvents(minified, k)
		if err != nil {
			return fmt.Errorf("reading minified: %w", err)
		}
		return compare(k, a, b)
	}
	return fmt.Errorf("no equivalence check for kind %s", k)
}

func compare(k kind.Kind, a, b []string) error {
	n := max(len(a), len(b))
	for i := range n {
		x, y := at(a, i), at(b, i)
		if x != y {
			return &MismatchError{Kind: k, Index: i, Original: x, Minified: y}
		}
	}
	return nil
}

func at(events []string, i int) string {
	if i < len(events) {
		return events[i]
	}
	return "<end>"
}

func checkData(original, minified string) error {
	a, err := decodeData(original)
	if err != nil {
		return fmt.Errorf("reading original: %w", err)
	}
	b, err := decodeData(minified)
	if err != nil {
		return fmt.Errorf("reading minified: %w", err)
	}
	if !reflect.DeepEqual(a, b) {
		return &MismatchError{Kind: kind.StructuredData, Original: original, Minified: minified}
	}
	return nil
}

func decodeData(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// verbatimElements hold text whose whitespace is significant.
var verbatimElements = map[atom.Atom]bool{
	atom.Pre:      true,
	atom.Listing:  true,
	atom.Textarea: true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Title:    true,
}

// markupEvents tokenizes text with the HTML5 tokenizer. Comments are
// dropped, adjacent text is merged and, outside verbatim elements, each
// whitespace run counts as one space and whitespace-only text is ignored.
func markupEvents(text string) ([]string, error) {
	z := html.NewTokenizer(strings.NewReader(text))
	var (
		events   []string
		pending  strings.Builder
		verbatim int
	)
	flush := func() {
		t := pending.String()
		pending.Reset()
		if verbatim == 0 {
			t = strings.Join(strings.Fields(t), " ")
		}
		if t == "" {
			return
		}
		events = append(events, "text:"+t)
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			flush()
			return events, nil
		case html.CommentToken:
		case html.TextToken:
			pending.Write(z.Text())
		default:
			flush()
			tok := z.Token()
			events = append(events, describeToken(tok))
			if verbatimElements[tok.DataAtom] {
				switch tt {
				case html.StartTagToken:
					verbatim++
				case html.EndTagToken:
					if verbatim > 0 {
						verbatim--
					}
				}
			}
		}
	}
}

func describeToken(tok html.Token) string {
	var b bytes.Buffer
	b.WriteString(tok.Type.String())
	b.WriteByte(':')
	b.WriteString(tok.Data)
	for _, a := range tok.Attr {
		fmt.Fprintf(&b, " %s=%q", a.Key, a.Val)
	}
	return b.String()
}

// tokenEvents lists the significant spans of text. Embedded markup text is
// compared by its cleaned value, and text that cleans to nothing is
// skipped.
func tokenEvents(text string, k kind.Kind) ([]string, error) {
	var events []string
	for s, err := range scan.Scan(text, k) {
		if err != nil {
			return nil, err
		}
		if s.IsTrivia() {
			continue
		}
		t := s.Text
		if s.Markup && s.Kind == scan.OpaqueContent {
			t = minify.CleanJSXText(t)
			if t == "" {
				continue
			}
		}
		events = append(events, s.Kind.String()+":"+t)
	}
	return events, nil
}
