package minify

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
)

// member is one key/value pair of an object, kept in source order.
type member struct {
	key   rawString
	value any
}

// object keeps members in source order, duplicates included.
type object []member

type array []any

// rawString is a string token exactly as it appears in the source, quotes
// and escapes included.
type rawString string

type dataStrategy struct{}

func (dataStrategy) Kind() kind.Kind { return kind.StructuredData }

func (dataStrategy) Validate(text string) error {
	_, err := parseData(text)
	return err
}

func (dataStrategy) Minify(text string) (string, error) {
	v, err := parseData(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	buf.Grow(len(text))
	enc := dataEncoder{buf: &buf}
	if err := enc.value(v); err != nil {
		return "", errors.Internal("re-encoding structured data", err)
	}
	return buf.String(), nil
}

// parseData parses text strictly into an ordered tree. Numbers and strings
// are kept as their source text.
func parseData(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	p := dataParser{dec: dec, src: text}
	v, err := p.value()
	if err != nil {
		return nil, p.malformed(err)
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, p.malformed(err)
		}
		return nil, errors.MalformedInput(
			fmt.Sprintf("unexpected trailing content %v", tok), int(dec.InputOffset()))
	}
	return v, nil
}

type dataParser struct {
	dec *json.Decoder
	src string
}

// token reads the next token. A string token is returned as its rawString
// source text.
func (p *dataParser) token() (json.Token, error) {
	before := p.dec.InputOffset()
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}
	if _, ok := tok.(string); ok {
		// Only whitespace and separators come before the opening quote.
		raw := p.src[before:p.dec.InputOffset()]
		return rawString(raw[strings.IndexByte(raw, '"'):]), nil
	}
	return tok, nil
}

func (p *dataParser) value() (any, error) {
	tok, err := p.token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := object{}
		for p.dec.More() {
			keyTok, err := p.token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(rawString)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", keyTok)
			}
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: v})
		}
		if _, err := p.dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := array{}
		for p.dec.More() {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := p.dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected %q", rune(delim))
}

// malformed turns a decoder error into MALFORMED_INPUT with the parser
// message and the offset it stopped at.
func (p *dataParser) malformed(err error) error {
	var syntax *json.SyntaxError
	switch {
	case stderrors.As(err, &syntax):
		return errors.MalformedInput(syntax.Error(), int(syntax.Offset))
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.MalformedInput("unexpected end of input", len(p.src))
	}
	return errors.MalformedInput(err.Error(), int(p.dec.InputOffset()))
}

type dataEncoder struct {
	buf *bytes.Buffer
}

func (e dataEncoder) value(v any) error {
	switch t := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		if t {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case json.Number:
		e.buf.WriteString(t.String())
	case rawString:
		e.buf.WriteString(string(t))
	case array:
		e.buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(item); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	case object:
		e.buf.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.buf.WriteString(string(m.key))
			e.buf.WriteByte(':')
			if err := e.value(m.value); err != nil {
				return err
			}
		}
		e.buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected value of type %T", v)
	}
	return nil
}
