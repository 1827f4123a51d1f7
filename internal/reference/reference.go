// Package reference runs a third-party minifier over the same input so its
// output size can be compared with ours.
package reference

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/HartBrook/shrink/internal/kind"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

// ErrUnsupported is returned for kinds the reference minifier cannot read.
var ErrUnsupported = stderrors.New("no reference minifier for this kind")

var (
	minifier *minify.M
	once     sync.Once
)

func getMinifier() *minify.M {
	once.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", html.Minify)
		minifier.AddFunc("text/css", css.Minify)
		minifier.AddFunc("application/javascript", js.Minify)
		minifier.AddFunc("application/json", json.Minify)
	})
	return minifier
}

// Supported reports whether k has a reference minifier.
func Supported(k kind.Kind) bool {
	switch k {
	case kind.Markup, kind.Stylesheet, kind.StructuredData, kind.Script:
		return true
	}
	return false
}

// Minify runs the reference minifier for k.
func Minify(text string, k kind.Kind) (string, error) {
	if !Supported(k) {
		return "", fmt.Errorf("%s: %w", k.DisplayName(), ErrUnsupported)
	}
	info := kind.Lookup(k)
	out, err := getMinifier().String(info.MediaType, text)
	if err != nil {
		return "", fmt.Errorf("reference %s minifier: %w", k.DisplayName(), err)
	}
	return out, nil
}

// Comparison holds the sizes of our output and the reference output.
type Comparison struct {
	Kind           kind.Kind `json:"kind"`
	OursBytes      int       `json:"ours_bytes"`
	ReferenceBytes int       `json:"reference_bytes"`
	// Error is set when the reference minifier failed or is unavailable.
	Error string `json:"error,omitempty"`
}

// Delta returns how many bytes larger our output is than the reference.
func (c Comparison) Delta() int {
	return c.OursBytes - c.ReferenceBytes
}

// Compare minifies original with the reference and records both sizes.
func Compare(k kind.Kind, original, ours string) Comparison {
	c := Comparison{Kind: k, OursBytes: len(ours)}
	ref, err := Minify(original, k)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	c.ReferenceBytes = len(ref)
	return c
}
