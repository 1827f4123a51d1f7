package engine

import (
	"math"

	"github.com/HartBrook/shrink/internal/kind"
)

// Report is the result of minifying one text.
type Report struct {
	Kind              kind.Kind `json:"kind"`
	MinifiedText      string    `json:"minified_text"`
	OriginalSizeBytes int       `json:"original_size_bytes"`
	MinifiedSizeBytes int       `json:"minified_size_bytes"`
	// ReductionPercent may be negative when the output grew.
	ReductionPercent int `json:"reduction_percent"`
}

// SavedBytes returns how many bytes minification removed.
func (r Report) SavedBytes() int {
	return r.OriginalSizeBytes - r.MinifiedSizeBytes
}

// BuildReport measures original and minified in UTF-8 bytes.
func BuildReport(k kind.Kind, original, minified string) Report {
	return Report{
		Kind:              k,
		MinifiedText:      minified,
		OriginalSizeBytes: len(original),
		MinifiedSizeBytes: len(minified),
		ReductionPercent:  ReductionPercent(len(original), len(minified)),
	}
}

// ReductionPercent returns round(100 * (original - minified) / original), or
// 0 when original is 0.
func ReductionPercent(original, minified int) int {
	if original == 0 {
		return 0
	}
	return int(math.Round(100 * float64(original-minified) / float64(original)))
}
