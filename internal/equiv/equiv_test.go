package equiv

import (
	"testing"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/minify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_MinifiedOutput(t *testing.T) {
	inputs := []struct {
		kind kind.Kind
		text string
	}{
		{kind.Markup, "<!DOCTYPE html>\n<html>\n  <body>\n    <!-- nav -->\n    <p class=\"x\">Hello   <b>world</b></p>\n    <pre>  keep\n  this </pre>\n  </body>\n</html>\n"},
		{kind.Markup, "<p>a<!-- c -->b</p><script>  if (a < b) {}  </script>"},
		{kind.Stylesheet, "/* c */\n.a > .b , .c {\n  color : red ;\n  margin: 0 auto;\n}\n@media screen and (min-width: 10px) { .d { top: 0 } }"},
		{kind.StructuredData, "{\n  \"a\": [1, 2.50, {\"b\": null}],\n  \"c\": \"x y\"\n}"},
		{kind.Script, "// header\nfunction f(a, b) {\n  const re = /\\/\\*/g; /* block */\n  return a +\n    +b\n}\nlet s = `x ${ f(1, 2) } y`\n"},
		{kind.ScriptWithMarkup, "export const A = () => (\n  <div className=\"a\">\n    Hi {name}\n    <B x={1} />\n  </div>\n)\n"},
	}

	for _, in := range inputs {
		t.Run(in.kind.String(), func(t *testing.T) {
			out, err := minify.Minify(in.text, in.kind)
			require.NoError(t, err)
			assert.NoError(t, Check(in.text, out, in.kind))
		})
	}
}

func TestCheck_DetectsChanges(t *testing.T) {
	tests := []struct {
		name     string
		kind     kind.Kind
		original string
		minified string
	}{
		{"markup text", kind.Markup, "<p>a b</p>", "<p>ab</p>"},
		{"markup attribute", kind.Markup, `<p id="a">x</p>`, `<p id="b">x</p>`},
		{"markup pre whitespace", kind.Markup, "<pre> a </pre>", "<pre>a</pre>"},
		{"stylesheet merged tokens", kind.Stylesheet, "a{margin:1px 2px}", "a{margin:1px2px}"},
		{"data value", kind.StructuredData, `{"a":1}`, `{"a":2}`},
		{"data order of arrays", kind.StructuredData, `[1,2]`, `[2,1]`},
		{"script merged keyword", kind.Script, "return x", "returnx"},
		{"script merged operators", kind.Script, "a + +b", "a++b"},
		{"jsx text", kind.ScriptWithMarkup, "x = <p>a b</p>", "x = <p>ab</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.original, tt.minified, tt.kind)
			require.Error(t, err)
			var mismatch *MismatchError
			assert.ErrorAs(t, err, &mismatch)
		})
	}
}

func TestCheck_IgnoresWhitespaceAndComments(t *testing.T) {
	assert.NoError(t, Check("<p>\n  a\n  b\n</p>", "<p>a b</p>", kind.Markup))
	assert.NoError(t, Check("<p>a<!-- x --></p>", "<p>a</p>", kind.Markup))
	assert.NoError(t, Check("a { b: c } /* x */", "a{b:c}", kind.Stylesheet))
	assert.NoError(t, Check(`{"a": 1, "a": 2}`, `{"a":1,"a":2}`, kind.StructuredData))
	assert.NoError(t, Check("x = <p>\n  a\n  b\n</p>", "x=<p>a b</p>", kind.ScriptWithMarkup))
}

func TestCheck_UnreadableInput(t *testing.T) {
	err := Check(`{"a": 1}`, `{"a": `, kind.StructuredData)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading minified")

	err = Check(`x = "a"`, `x = "a`, kind.Script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading minified")
}

func TestMismatchError_Message(t *testing.T) {
	err := Check("return x", "returnx", kind.Script)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 0, mismatch.Index)
	assert.Contains(t, err.Error(), "JavaScript output differs at event 0")
}
