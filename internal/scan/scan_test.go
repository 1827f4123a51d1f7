package scan

import (
	"errors"
	"strings"
	"testing"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type want struct {
	kind   SpanKind
	text   string
	markup bool
}

func collect(t *testing.T, text string, k kind.Kind) []Span {
	t.Helper()
	spans, err := Collect(text, k)
	require.NoError(t, err)
	return spans
}

func assertSpans(t *testing.T, expected []want, spans []Span) {
	t.Helper()
	got := make([]want, len(spans))
	for i, s := range spans {
		got[i] = want{s.Kind, s.Text, s.Markup}
	}
	assert.Equal(t, expected, got)
}

func join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestScan_Coverage(t *testing.T) {
	tests := []struct {
		name string
		kind kind.Kind
		text string
	}{
		{"markup", kind.Markup, "<!DOCTYPE html>\n<div class='a b'>  <p>Hi</p> <!-- c --> </div>"},
		{"markup raw text", kind.Markup, "<style>a > b { }</style><script>if (a<b) {}</script>"},
		{"stylesheet", kind.Stylesheet, ".a, .b > c { color: red; /* note */ content: \"}\" }\n@media (x) {}"},
		{"data", kind.StructuredData, `{"a": [1, 2.5e3, true, null], "b": "x\"y"}`},
		{"script", kind.Script, "const x = a / b; // div\nlet re = /[/]+/g;\nconst t = `a${ {b: 1}.b }c`;"},
		{"jsx", kind.ScriptWithMarkup, "const App = () => (\n  <div className=\"x\">\n    Hello {name}!\n    <Foo {...props} />\n  </div>\n);"},
		{"unicode", kind.Script, "const café = \"naïve\"; let x = 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := collect(t, tt.text, tt.kind)
			assert.Equal(t, tt.text, join(spans))
		})
	}
}

func TestScan_Markup(t *testing.T) {
	spans := collect(t, `<a href="x > y">t</a>`, kind.Markup)
	assertSpans(t, []want{
		{StructuralToken, "<", false},
		{OpaqueContent, "a", false},
		{Whitespace, " ", false},
		{OpaqueContent, "href", false},
		{StructuralToken, "=", false},
		{StringLiteral, `"x > y"`, false},
		{StructuralToken, ">", false},
		{OpaqueContent, "t", false},
		{StructuralToken, "</", false},
		{OpaqueContent, "a", false},
		{StructuralToken, ">", false},
	}, spans)
}

func TestScan_MarkupComment(t *testing.T) {
	spans := collect(t, "<p><!-- <b>not a tag</b> --></p>", kind.Markup)
	require.Len(t, spans, 7)
	assert.Equal(t, BlockComment, spans[3].Kind)
	assert.Equal(t, "<!-- <b>not a tag</b> -->", spans[3].Text)
}

func TestScan_MarkupRawText(t *testing.T) {
	spans := collect(t, "<script>if (a<b) {}</script>", kind.Markup)
	assertSpans(t, []want{
		{StructuralToken, "<", false},
		{OpaqueContent, "script", false},
		{StructuralToken, ">", false},
		{OpaqueContent, "if (a<b) {}", false},
		{StructuralToken, "</", false},
		{OpaqueContent, "script", false},
		{StructuralToken, ">", false},
	}, spans)
}

func TestScan_Stylesheet(t *testing.T) {
	spans := collect(t, `.a { content: "}"; }`, kind.Stylesheet)
	assertSpans(t, []want{
		{OpaqueContent, ".a", false},
		{Whitespace, " ", false},
		{StructuralToken, "{", false},
		{Whitespace, " ", false},
		{OpaqueContent, "content", false},
		{StructuralToken, ":", false},
		{Whitespace, " ", false},
		{StringLiteral, `"}"`, false},
		{StructuralToken, ";", false},
		{Whitespace, " ", false},
		{StructuralToken, "}", false},
	}, spans)
}

func TestScan_StylesheetEscapes(t *testing.T) {
	spans := collect(t, `.sm\:flex{content:'it\'s'}`, kind.Stylesheet)
	assert.Equal(t, `.sm\:flex`, spans[0].Text)
	assert.Equal(t, StringLiteral, spans[4].Kind)
	assert.Equal(t, `'it\'s'`, spans[4].Text)
}

func TestScan_Script(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []want
	}{
		{
			name: "regex after operator",
			text: "x = /ab+c/g.test(s)",
			want: []want{
				{OpaqueContent, "x", false},
				{Whitespace, " ", false},
				{StructuralToken, "=", false},
				{Whitespace, " ", false},
				{StringLiteral, "/ab+c/g", false},
				{StructuralToken, ".", false},
				{OpaqueContent, "test", false},
				{StructuralToken, "(", false},
				{OpaqueContent, "s", false},
				{StructuralToken, ")", false},
			},
		},
		{
			name: "division",
			text: "a / b / c",
			want: []want{
				{OpaqueContent, "a", false},
				{Whitespace, " ", false},
				{StructuralToken, "/", false},
				{Whitespace, " ", false},
				{OpaqueContent, "b", false},
				{Whitespace, " ", false},
				{StructuralToken, "/", false},
				{Whitespace, " ", false},
				{OpaqueContent, "c", false},
			},
		},
		{
			name: "comment marker inside string",
			text: `s = "//not a comment"; // real`,
			want: []want{
				{OpaqueContent, "s", false},
				{Whitespace, " ", false},
				{StructuralToken, "=", false},
				{Whitespace, " ", false},
				{StringLiteral, `"//not a comment"`, false},
				{StructuralToken, ";", false},
				{Whitespace, " ", false},
				{LineComment, "// real", false},
			},
		},
		{
			name: "nested template",
			text: "t = `a${ '}' + `b${c}` }d`;",
			want: []want{
				{OpaqueContent, "t", false},
				{Whitespace, " ", false},
				{StructuralToken, "=", false},
				{Whitespace, " ", false},
				{StringLiteral, "`a${ '}' + `b${c}` }d`", false},
				{StructuralToken, ";", false},
			},
		},
		{
			name: "maximal munch",
			text: "a>>>=b?.c??d",
			want: []want{
				{OpaqueContent, "a", false},
				{StructuralToken, ">>>=", false},
				{OpaqueContent, "b", false},
				{StructuralToken, "?.", false},
				{OpaqueContent, "c", false},
				{StructuralToken, "??", false},
				{OpaqueContent, "d", false},
			},
		},
		{
			name: "conditional with leading-dot number",
			text: "a?.5:1",
			want: []want{
				{OpaqueContent, "a", false},
				{StructuralToken, "?", false},
				{OpaqueContent, ".5", false},
				{StructuralToken, ":", false},
				{OpaqueContent, "1", false},
			},
		},
		{
			name: "regex after return keyword",
			text: "return /}/",
			want: []want{
				{OpaqueContent, "return", false},
				{Whitespace, " ", false},
				{StringLiteral, "/}/", false},
			},
		},
		{
			name: "exponent",
			text: "1e+5+0x1e",
			want: []want{
				{OpaqueContent, "1e+5", false},
				{StructuralToken, "+", false},
				{OpaqueContent, "0x1e", false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSpans(t, tt.want, collect(t, tt.text, kind.Script))
		})
	}
}

func TestScan_ScriptWithMarkup(t *testing.T) {
	spans := collect(t, `const el = <Foo bar="x">hi {name}</Foo>;`, kind.ScriptWithMarkup)
	assertSpans(t, []want{
		{OpaqueContent, "const", false},
		{Whitespace, " ", false},
		{OpaqueContent, "el", false},
		{Whitespace, " ", false},
		{StructuralToken, "=", false},
		{Whitespace, " ", false},
		{StructuralToken, "<", true},
		{OpaqueContent, "Foo", true},
		{Whitespace, " ", true},
		{OpaqueContent, "bar", true},
		{StructuralToken, "=", true},
		{StringLiteral, `"x"`, true},
		{StructuralToken, ">", true},
		{OpaqueContent, "hi ", true},
		{StructuralToken, "{", true},
		{OpaqueContent, "name", false},
		{StructuralToken, "}", true},
		{StructuralToken, "</", true},
		{OpaqueContent, "Foo", true},
		{StructuralToken, ">", true},
		{StructuralToken, ";", false},
	}, spans)
}

func TestScan_ScriptWithMarkupComparison(t *testing.T) {
	spans := collect(t, "if (a < b) {}", kind.ScriptWithMarkup)
	for _, s := range spans {
		assert.False(t, s.Markup, s.Text)
	}
	assert.True(t, spans[5].Is("<"))
}

func TestJoinsPunctuator(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"<", "<", true},
		{"!", "=>", true},
		{"=", "=", true},
		{"..", ".", true},
		{">>", ">=", true},
		{"=>", "(", false},
		{"=", "<", false},
		{")", "{", false},
		{"<", "!", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinsPunctuator(tt.a, tt.b), "%q %q", tt.a, tt.b)
	}
}

func TestScan_Fragment(t *testing.T) {
	text := "x = <><A/>{/* c */}</>"
	spans := collect(t, text, kind.ScriptWithMarkup)
	assert.Equal(t, text, join(spans))

	var comments int
	for _, s := range spans {
		if s.IsComment() {
			comments++
		}
	}
	assert.Equal(t, 1, comments)
}

func TestScan_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		kind   kind.Kind
		text   string
		offset int
		reason string
	}{
		{"unterminated string", kind.Script, `x = "abc`, 4, "unterminated string literal"},
		{"string broken by newline", kind.Script, "x = 'a\nb'", 4, "unterminated string literal"},
		{"unterminated block comment", kind.Script, "a /* b", 2, "unterminated comment"},
		{"unterminated template", kind.Script, "x = `a${b}", 4, "unterminated template literal"},
		{"unterminated substitution", kind.Script, "x = `a${b", 6, "unterminated expression"},
		{"unterminated regex", kind.Script, "x = /ab\n", 4, "unterminated regular expression"},
		{"markup comment", kind.Markup, "<p><!-- open", 3, "unterminated comment"},
		{"markup attribute", kind.Markup, `<a href="x>`, 8, "unterminated attribute value"},
		{"markup tag", kind.Markup, "<div class", 0, "unterminated tag"},
		{"stylesheet string", kind.Stylesheet, `a{content:"x}`, 10, "unterminated string"},
		{"stylesheet comment", kind.Stylesheet, "a{} /* x", 4, "unterminated comment"},
		{"element mismatch", kind.ScriptWithMarkup, "x = <A></B>", 7, "mismatched closing tag"},
		{"unterminated element", kind.ScriptWithMarkup, "x = <A>text", 4, "unterminated element"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.text, tt.kind)
			require.Error(t, err)

			var me *MalformedError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.offset, me.Offset)
			assert.Equal(t, tt.reason, me.Reason)
		})
	}
}

func TestScan_StopsEarly(t *testing.T) {
	var n int
	for _, err := range Scan("a b c d e f", kind.Script) {
		require.NoError(t, err)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestScan_UnsupportedKind(t *testing.T) {
	for _, err := range Scan("x", kind.Unknown) {
		assert.Error(t, err)
	}
}

func TestSpanHelpers(t *testing.T) {
	s := Span{Kind: BlockComment, Text: "/* x */", Start: 4}
	assert.Equal(t, 11, s.End())
	assert.True(t, s.IsTrivia())
	assert.True(t, s.IsComment())
	assert.False(t, s.Is("/* x */"))
	assert.Equal(t, "block-comment", s.Kind.String())
	assert.True(t, HasLineBreak("a\u2028b"))
	assert.False(t, HasLineBreak("a b"))
}

func fuzzCoverage(f *testing.F, k kind.Kind, seeds ...string) {
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		spans, err := Collect(text, k)
		if err != nil {
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("unexpected error type %T", err)
			}
			if me.Offset < 0 || me.Offset > len(text) {
				t.Fatalf("offset %d out of range", me.Offset)
			}
			return
		}
		if got := join(spans); got != text {
			t.Fatalf("spans rebuild %q, want %q", got, text)
		}
	})
}

func FuzzScanMarkup(f *testing.F) {
	fuzzCoverage(f, kind.Markup, "<div a='1'>x</div>", "<!-- c -->", "<script>a<b</script>", "<br/>")
}

func FuzzScanStylesheet(f *testing.F) {
	fuzzCoverage(f, kind.Stylesheet, ".a{color:red}", `a::after{content:"\""}`, "/* x */")
}

func FuzzScanScript(f *testing.F) {
	fuzzCoverage(f, kind.Script, "const x = 1;", "a = /b/g / 2", "`${`${x}`}`", "#!/bin/node\nx")
}

func FuzzScanScriptWithMarkup(f *testing.F) {
	fuzzCoverage(f, kind.ScriptWithMarkup, "<A b={c}>d</A>", "x = <><b/></>", "a < b > c")
}
