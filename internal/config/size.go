package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// ByteSize is a size in bytes. In YAML it may be written as a plain number
// of bytes or as a human-readable string such as "1MiB" or "512 kB".
type ByteSize int64

// ParseByteSize parses a human-readable size.
func ParseByteSize(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return ByteSize(n), nil
}

// Bytes returns the size as an int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// String formats the size with binary units, e.g. "1.0 MiB".
func (b ByteSize) String() string {
	if b < 0 {
		return fmt.Sprintf("%d B", int64(b))
	}
	return humanize.IBytes(uint64(b))
}

// UnmarshalYAML accepts both integer and string scalars.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a number or a string like 1MiB", node.Line)
	}

	var n int64
	if node.Tag == "!!int" {
		if err := node.Decode(&n); err != nil {
			return err
		}
		*b = ByteSize(n)
		return nil
	}

	size, err := ParseByteSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = size
	return nil
}

// MarshalYAML writes the size in its human-readable form when that form
// parses back to the same value, and as a plain number otherwise.
func (b ByteSize) MarshalYAML() (any, error) {
	s := b.String()
	if back, err := ParseByteSize(s); err == nil && back == b {
		return s, nil
	}
	return int64(b), nil
}
