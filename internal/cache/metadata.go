// Package cache stores minification results on disk, keyed by a hash of the
// kind and the input text.
package cache

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Metadata describes one cached result.
type Metadata struct {
	Key           string    `json:"key"`
	Kind          string    `json:"kind"`
	Source        string    `json:"source,omitempty"` // file path or repo reference
	OriginalBytes int       `json:"original_bytes"`
	MinifiedBytes int       `json:"minified_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsStale returns true if the entry is at or older than the TTL.
func (m *Metadata) IsStale(ttl time.Duration) bool {
	return time.Since(m.CreatedAt) >= ttl
}

// Age returns a human-readable age such as "3 hours ago".
func (m *Metadata) Age() string {
	if time.Since(m.CreatedAt) < time.Minute {
		return "just now"
	}
	return humanize.Time(m.CreatedAt)
}

// Size returns the original and minified sizes in readable units.
func (m *Metadata) Size() string {
	return humanize.Bytes(uint64(m.OriginalBytes)) + " → " + humanize.Bytes(uint64(m.MinifiedBytes))
}
