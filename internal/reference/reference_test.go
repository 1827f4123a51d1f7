package reference

import (
	"testing"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinify(t *testing.T) {
	tests := []struct {
		kind kind.Kind
		in   string
		want string
	}{
		{kind.StructuredData, `{"a": 1, "b": [1, 2]}`, `{"a":1,"b":[1,2]}`},
		{kind.Stylesheet, ".a { color: red; }", ".a{color:red}"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := Minify(tt.in, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinify_Unsupported(t *testing.T) {
	_, err := Minify("<App />", kind.ScriptWithMarkup)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, Supported(kind.ScriptWithMarkup))
	assert.True(t, Supported(kind.Script))
}

func TestCompare(t *testing.T) {
	c := Compare(kind.Stylesheet, ".a { color: red; }", ".a{color:red;}")
	assert.Empty(t, c.Error)
	assert.Equal(t, 14, c.OursBytes)
	assert.Equal(t, 13, c.ReferenceBytes)
	assert.Equal(t, 1, c.Delta())

	c = Compare(kind.ScriptWithMarkup, "<App />", "<App/>")
	assert.NotEmpty(t, c.Error)
	assert.Equal(t, 6, c.OursBytes)
}
