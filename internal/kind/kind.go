// Package kind defines the closed set of content kinds shrink understands.
package kind

import (
	"path/filepath"
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the declared category of an input text.
type Kind int

const (
	// Unknown is the zero value and never valid for processing.
	Unknown Kind = iota
	Markup
	Stylesheet
	StructuredData
	Script
	ScriptWithMarkup
)

// Info describes a supported content kind.
type Info struct {
	Kind        Kind
	ID          string   // "html", "css", "json", "js", "jsx"
	Name        string   // "markup", "stylesheet", ...
	DisplayName string   // "HTML", "CSS", ...
	Suffixes    []string // Accepted file-name suffixes, first is canonical
	MediaType   string
	Aliases     []string
}

// Supported lists every content kind in declaration order.
var Supported = []Info{
	{
		Kind: Markup, ID: "html", Name: "markup", DisplayName: "HTML",
		Suffixes: []string{".html", ".htm"}, MediaType: "text/html",
		Aliases: []string{"htm", "text/html"},
	},
	{
		Kind: Stylesheet, ID: "css", Name: "stylesheet", DisplayName: "CSS",
		Suffixes: []string{".css"}, MediaType: "text/css",
		Aliases: []string{"style", "text/css"},
	},
	{
		Kind: StructuredData, ID: "json", Name: "structured-data", DisplayName: "JSON",
		Suffixes: []string{".json"}, MediaType: "application/json",
		Aliases: []string{"data", "application/json"},
	},
	{
		Kind: Script, ID: "js", Name: "script", DisplayName: "JavaScript",
		Suffixes: []string{".js"}, MediaType: "application/javascript",
		Aliases: []string{"javascript", "ecmascript", "text/javascript", "application/javascript"},
	},
	{
		Kind: ScriptWithMarkup, ID: "jsx", Name: "script-with-markup", DisplayName: "JSX",
		Suffixes: []string{".jsx"}, MediaType: "text/jsx",
		Aliases: []string{"react", "text/jsx"},
	},
}

// foldCase lower-cases s for comparison. Casers are stateful, so each call
// gets its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// All returns every supported kind.
func All() []Kind {
	kinds := make([]Kind, 0, len(Supported))
	for _, info := range Supported {
		kinds = append(kinds, info.Kind)
	}
	return kinds
}

// Lookup returns the Info for k, or nil if k is not a supported kind.
func Lookup(k Kind) *Info {
	for i := range Supported {
		if Supported[i].Kind == k {
			return &Supported[i]
		}
	}
	return nil
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return Lookup(k) != nil
}

// String returns the short ID of the kind.
func (k Kind) String() string {
	if info := Lookup(k); info != nil {
		return info.ID
	}
	return "unknown"
}

// DisplayName returns the human-readable name of the kind.
func (k Kind) DisplayName() string {
	if info := Lookup(k); info != nil {
		return info.DisplayName
	}
	return cases.Title(language.English).String(k.String())
}

// Suffixes returns the accepted file-name suffixes for the kind.
func (k Kind) Suffixes() []string {
	if info := Lookup(k); info != nil {
		return info.Suffixes
	}
	return nil
}

// IsScript reports whether the kind is lexed with the script scanner.
func (k Kind) IsScript() bool {
	return k == Script || k == ScriptWithMarkup
}

// Parse resolves a kind from its ID, long name, alias or media type.
// Matching is case-insensitive.
func Parse(name string) (Kind, error) {
	needle := foldCase(strings.TrimSpace(name))
	if needle == "" {
		return Unknown, errors.UnknownKind(name)
	}
	for _, info := range Supported {
		if needle == info.ID || needle == info.Name || needle == foldCase(info.DisplayName) {
			return info.Kind, nil
		}
		for _, alias := range info.Aliases {
			if needle == alias {
				return info.Kind, nil
			}
		}
	}
	return Unknown, errors.UnknownKind(name)
}

// FromPath detects the kind from a file name suffix.
func FromPath(path string) (Kind, error) {
	ext := foldCase(filepath.Ext(path))
	if ext != "" {
		for _, info := range Supported {
			for _, suffix := range info.Suffixes {
				if ext == suffix {
					return info.Kind, nil
				}
			}
		}
	}
	return Unknown, errors.New(errors.ErrUnknownKind,
		"cannot detect content kind from file name: "+filepath.Base(path),
		"Pass --kind explicitly (html, css, json, js, jsx)")
}

// Accepts reports whether the file name carries one of the kind's suffixes.
func (k Kind) Accepts(path string) bool {
	ext := foldCase(filepath.Ext(path))
	for _, suffix := range k.Suffixes() {
		if ext == suffix {
			return true
		}
	}
	return false
}

// MinifiedName returns the conventional output name for a minified file:
// "app.js" becomes "app.min.js". Names that already carry ".min" are
// returned unchanged.
func MinifiedName(name string) string {
	dir, base := filepath.Split(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if strings.HasSuffix(stem, ".min") {
		return name
	}
	if stem == "" {
		return dir + base + ".min"
	}
	return dir + stem + ".min" + ext
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.UnknownKind(k.String())
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
