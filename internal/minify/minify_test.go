package minify

import (
	"encoding/json"
	"testing"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type minifyCase struct {
	name string
	in   string
	want string
}

func runMinifyCases(t *testing.T, k kind.Kind, tests []minifyCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Minify(tt.in, k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := Minify(got, k)
			require.NoError(t, err)
			assert.Equal(t, got, again, "minifying twice must be stable")
		})
	}
}

func TestFor(t *testing.T) {
	for _, k := range kind.All() {
		s, err := For(k)
		require.NoError(t, err)
		assert.Equal(t, k, s.Kind())
	}

	_, err := For(kind.Unknown)
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnknownKind, errors.CodeOf(err))
}

func TestMinify_Fixtures(t *testing.T) {
	tests := []struct {
		kind kind.Kind
		in   string
		want string
	}{
		{kind.StructuredData, `{"a": 1, "b": [1,2,3]}`, `{"a":1,"b":[1,2,3]}`},
		{kind.Markup, `<div>  <p>Hi</p>  </div>`, `<div><p>Hi</p></div>`},
		{kind.Stylesheet, `.a { color: red; /* note */ }`, `.a{color:red;}`},
		{kind.Script, `const x = 1;`, `const x=1;`},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			require.NoError(t, Validate(tt.in, tt.kind))
			got, err := Minify(tt.in, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinify_Markup(t *testing.T) {
	runMinifyCases(t, kind.Markup, []minifyCase{
		{"inline siblings keep one space", "<p>Hello   <b>big</b>   <i>world</i></p>", "<p>Hello <b>big</b> <i>world</i></p>"},
		{"block siblings lose whitespace", "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>", "<ul><li>a</li><li>b</li></ul>"},
		{"pre is preserved", "<pre>  a\n   b  </pre>", "<pre>  a\n   b  </pre>"},
		{"attributes", `<input  type = "text"   disabled />`, `<input type="text" disabled />`},
		{"void element", "<br />", "<br/>"},
		{"unquoted value before close", "<a href=x  >y</a>", "<a href=x>y</a>"},
		{"comment between words", "<p>a <!-- c --> b</p>", "<p>a b</p>"},
		{"conditional comment kept", "<!--[if IE]><p>x</p><![endif]-->", "<!--[if IE]><p>x</p><![endif]-->"},
		{"raw text untouched", "<script>  var a = 1;  </script>", "<script>  var a = 1;  </script>"},
		{"attribute value verbatim", `<p title="  a   b  ">x</p>`, `<p title="  a   b  ">x</p>`},
		{"document", "  <!DOCTYPE html>\n<html>\n<body>\n</body>\n</html>\n", "<!DOCTYPE html><html><body></body></html>"},
	})
}

func TestMinify_Stylesheet(t *testing.T) {
	runMinifyCases(t, kind.Stylesheet, []minifyCase{
		{"descendant colon kept", "a :hover { color : red }", "a :hover{color:red}"},
		{"combinators", "ul > li + li ~ p , a { margin : 0 auto !important }", "ul>li+li~p,a{margin:0 auto !important}"},
		{
			"at-rule",
			"@media (min-width: 100px) and (max-width: 200px) {\n  a { b: calc(1px + 2px) }\n}",
			"@media (min-width:100px) and (max-width:200px){a{b:calc(1px + 2px)}}",
		},
		{"at-rule colon", "@media (min-width : 10px) { a :hover { b : c } }", "@media (min-width:10px){a :hover{b:c}}"},
		{"comment between values", "a{margin:1px/* x */2px}", "a{margin:1px/**/2px}"},
		{"strings untouched", `.x { content: "  a  { } " }`, `.x{content:"  a  { } "}`},
		{"escaped colon", `.sm\:flex { display: flex; }`, `.sm\:flex{display:flex;}`},
	})
}

func TestMinify_StructuredData(t *testing.T) {
	runMinifyCases(t, kind.StructuredData, []minifyCase{
		{
			"order, duplicates and number text kept",
			`{"b": 1, "a": [true, null, 1.50, -0.0e10, "x<y"], "a": {}}`,
			`{"b":1,"a":[true,null,1.50,-0.0e10,"x<y"],"a":{}}`,
		},
		{"scalar", "  42  ", "42"},
		{"escapes", `{"s": "é\n"}`, `{"s":"é\n"}`},
		{"nested empty", "[ [ ], { } ]", "[[],{}]"},
		{"escapes kept as written", `{ "\u0041" : "\/" }`, `{"\u0041":"\/"}`},
		{"lone surrogate", `[ "\ud800" ]`, `["\ud800"]`},
		{"invalid utf-8", "[ \"a\xffb\" ]", "[\"a\xffb\"]"},
	})
}

func TestMinify_StructuredDataDeepEqual(t *testing.T) {
	inputs := []string{
		`{"a": 1, "b": [1,2,3]}`,
		`{"nested": {"list": [{"x": 1e3}, {"y": "\"quoted\""}]}, "t": true}`,
		"[\n  \"line\\nbreak\",\n  -12.5\n]",
	}
	for _, in := range inputs {
		out, err := Minify(in, kind.StructuredData)
		require.NoError(t, err)

		var want, got any
		require.NoError(t, json.Unmarshal([]byte(in), &want))
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, want, got)
	}
}

func TestMinify_Script(t *testing.T) {
	runMinifyCases(t, kind.Script, []minifyCase{
		{"comment marker in string", `s = "//not a comment"; // real`, `s="//not a comment";`},
		{"function body", "function f() {\n  return 1;\n}\n", "function f(){return 1;}"},
		{"restricted return", "return\nx", "return\nx"},
		{"prefix increment on next line", "a = b\n++c", "a=b\n++c"},
		{"unary plus", "x = a + +b", "x=a+ +b"},
		{"unary minus", "x = a - -b", "x=a- -b"},
		{"number member", "x = 1 .toString()", "x=1 .toString()"},
		{"division then regex", "x = a / /re/g.source", "x=a/ /re/g.source"},
		{"regex flags", "if (/a/ instanceof RegExp) {}", "if(/a/ instanceof RegExp){}"},
		{"template untouched", "const t = `a  ${ b }  c`;", "const t=`a  ${ b }  c`;"},
		{"statements on lines", "let a = 1\nlet b = 2", "let a=1\nlet b=2"},
		{"array literal", "x = [\n  1,\n  2\n]", "x=[1,2]"},
		{"block comment separates words", "a /* c */ b", "a b"},
		{"hashbang", "#!/usr/bin/env node\nconsole.log(1)", "#!/usr/bin/env node\nconsole.log(1)"},
		{"regex with slash in class", "const re = /[/]+/g; // slashes", "const re=/[/]+/g;"},
		{"html comment opener", "if (a < !b) {}", "if(a< !b){}"},
		{"punctuators stay apart", "let x = a ! = b", "let x=a! =b"},
		{"arrow not formed", "let f = a ! => b", "let f=a! =>b"},
		{"spread not formed across three tokens", "let s = a .. .", "let s=a.. ."},
	})
}

func TestMinify_ScriptWithMarkup(t *testing.T) {
	runMinifyCases(t, kind.ScriptWithMarkup, []minifyCase{
		{
			"component",
			"const App = () => (\n  <div className=\"x\">\n    Hello {name}!\n    <Foo {...props} />\n  </div>\n);",
			`const App=()=>(<div className="x">Hello {name}!<Foo {...props}/></div>);`,
		},
		{
			"attributes on lines",
			"x = <input\n  type=\"text\"\n  value={v}\n/>;",
			`x=<input type="text" value={v}/>;`,
		},
		{"comparison stays code", "if (a < b) { c() }", "if(a<b){c()}"},
		{"comparison against element", "const ok = a < <B/>", "const ok=a< <B/>"},
		{"inline text kept", "x = <b>a  b</b>", "x=<b>a  b</b>"},
	})
}

func TestCleanJSXText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "Hello"},
		{"  a  b  ", "  a  b  "},
		{"\n    Hello ", "Hello "},
		{"!\n    ", "!"},
		{"\n  \n", ""},
		{"a\n   \n  b", "a b"},
		{"a\tb", "a b"},
		{"one\r\ntwo", "one two"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSXText(tt.in), "%q", tt.in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		kind   kind.Kind
		in     string
		code   errors.ErrorCode
		reason string
	}{
		{"markup ok", kind.Markup, `<a title="<b>">x</a>`, "", ""},
		{"markup text", kind.Markup, "just text", errors.ErrKindMismatch, errors.ReasonNoMarkupTags},
		{"markup tag in comment", kind.Markup, "<!-- <p> -->", errors.ErrKindMismatch, errors.ReasonNoMarkupTags},
		{"markup comparison", kind.Markup, "x < y", errors.ErrKindMismatch, errors.ReasonNoMarkupTags},
		{"markup unterminated comment", kind.Markup, "<p><!-- x", errors.ErrMalformedInput, ""},
		{"stylesheet ok", kind.Stylesheet, "a{}", "", ""},
		{"stylesheet unclosed", kind.Stylesheet, ".a { color: red;", errors.ErrMalformedInput, errors.ReasonUnbalanced},
		{"stylesheet extra close", kind.Stylesheet, "} a {", errors.ErrMalformedInput, errors.ReasonUnbalanced},
		{"stylesheet braces in string", kind.Stylesheet, `a{content:"}"}`, "", ""},
		{"stylesheet no rules", kind.Stylesheet, "color: red;", errors.ErrKindMismatch, errors.ReasonNoStyleRules},
		{"data trailing comma", kind.StructuredData, `{"a": 1,}`, errors.ErrMalformedInput, ""},
		{"data trailing content", kind.StructuredData, `{"a":1} x`, errors.ErrMalformedInput, ""},
		{"data truncated", kind.StructuredData, `[1, 2`, errors.ErrMalformedInput, ""},
		{"script ok", kind.Script, "const x = 1;", "", ""},
		{"script arrow", kind.Script, "items.map(x => x * 2)", "", ""},
		{"script prose", kind.Script, "plain prose with no code", errors.ErrKindMismatch, errors.ReasonNoScriptMarkers},
		{"script unterminated", kind.Script, `x = "abc`, errors.ErrMalformedInput, ""},
		{"jsx component", kind.ScriptWithMarkup, "<App />", "", ""},
		{"jsx lowercase only", kind.ScriptWithMarkup, "<div>hello</div>", errors.ErrKindMismatch, errors.ReasonNoScriptMarkers},
		{"plain script rejects capital tag marker", kind.Script, "a < App", errors.ErrKindMismatch, errors.ReasonNoScriptMarkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in, tt.kind)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			se, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, se.Code)
			assert.True(t, se.IsValidation())
			if tt.reason != "" {
				assert.Equal(t, tt.reason, se.Message)
			}
		})
	}
}

func TestValidate_DataReportsOffset(t *testing.T) {
	err := Validate(`{"a": tru}`, kind.StructuredData)
	se, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrMalformedInput, se.Code)
	assert.Greater(t, se.Offset, 0)
	assert.Contains(t, se.Message, "offset")
}

func TestMinify_SizeNeverGrows(t *testing.T) {
	inputs := map[kind.Kind][]string{
		kind.Markup:           {"<div>\n  <!-- c -->\n  <span> a </span> <span>b</span>\n</div>"},
		kind.Stylesheet:       {"/* header */\nbody {\n  margin: 0;\n  padding: 0 ;\n}\n"},
		kind.Script:           {"// comment\nfunction add(a, b) {\n  return a + b; /* sum */\n}\n"},
		kind.ScriptWithMarkup: {"export default function A() {\n  return (\n    <p>\n      hi\n    </p>\n  );\n}\n"},
	}
	for k, texts := range inputs {
		for _, in := range texts {
			out, err := Minify(in, k)
			require.NoError(t, err)
			assert.Less(t, len(out), len(in), "%s: %q", k, out)
		}
	}
}
