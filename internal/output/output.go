// Package output renders batch results as a table, JSON or GitHub Actions
// annotations.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/HartBrook/shrink/internal/batch"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Format specifies the output format for results.
type Format string

const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatGitHub Format = "github"
)

// Formatter formats batch results for output.
type Formatter struct {
	Writer io.Writer
	Format Format
	// IsTTY selects aligned, truncated table output. When false the table is
	// written as tab-separated values.
	IsTTY bool
	Width int
}

// NewFormatter creates a new result formatter.
func NewFormatter(w io.Writer, format Format) *Formatter {
	return &Formatter{
		Writer: w,
		Format: format,
		Width:  80,
	}
}

// FormatResults writes results in the configured format.
func (f *Formatter) FormatResults(results []batch.Result) error {
	switch f.Format {
	case FormatJSON:
		return f.formatJSON(results)
	case FormatGitHub:
		return f.formatGitHub(results)
	default:
		return f.formatTable(results)
	}
}

func (f *Formatter) formatTable(results []batch.Result) error {
	successIcon := color.New(color.FgGreen).Sprint("✓")
	failIcon := color.New(color.FgRed).Sprint("✗")
	dimColor := color.New(color.Faint)

	tp := tableprinter.New(f.Writer, f.IsTTY, f.Width)
	validating := isValidation(results)
	if validating {
		tp.AddHeader([]string{"", "INPUT", "KIND", "RESULT"})
	} else {
		tp.AddHeader([]string{"", "INPUT", "KIND", "SIZE", "SAVED", "NOTE"})
	}

	for i := range results {
		res := &results[i]
		icon := successIcon
		if !res.OK() {
			icon = failIcon
		}
		tp.AddField(icon)
		tp.AddField(res.Name)
		tp.AddField(res.Kind.String())

		switch {
		case validating:
			tp.AddField(describeFailure(res), tableprinter.WithTruncate(nil))
		case res.Err != nil:
			tp.AddField("")
			tp.AddField("")
			tp.AddField(describeFailure(res), tableprinter.WithTruncate(nil))
		default:
			r := res.Report
			tp.AddField(humanize.Bytes(uint64(r.OriginalSizeBytes)) + " → " + humanize.Bytes(uint64(r.MinifiedSizeBytes)))
			tp.AddField(fmt.Sprintf("%d%%", r.ReductionPercent))
			tp.AddField(note(res), tableprinter.WithColor(func(s string) string { return dimColor.Sprint(s) }))
		}
		tp.EndRow()
	}

	if err := tp.Render(); err != nil {
		return err
	}

	s := batch.Summarize(results)
	statusColor := color.New(color.FgGreen)
	if s.Failed > 0 {
		statusColor = color.New(color.FgRed)
	}

	fmt.Fprintln(f.Writer)
	if validating {
		fmt.Fprintf(f.Writer, "%s %d/%d valid\n", statusColor.Sprint("Results:"), s.Total-s.Failed, s.Total)
	} else {
		fmt.Fprintf(f.Writer, "%s %d/%d minified, %s saved (%d%%)\n",
			statusColor.Sprint("Results:"),
			s.Total-s.Failed,
			s.Total,
			humanize.Bytes(uint64(max(s.OriginalBytes-s.MinifiedBytes, 0))),
			s.ReductionPercent(),
		)
	}
	if s.Failed > 0 {
		fmt.Fprintf(f.Writer, "  %d failure(s)\n", s.Failed)
	}
	return nil
}

func isValidation(results []batch.Result) bool {
	for i := range results {
		if results[i].Validation != nil {
			return true
		}
	}
	return false
}

func note(res *batch.Result) string {
	var parts []string
	if res.Cached {
		parts = append(parts, "cached")
	}
	if c := res.Comparison; c != nil {
		if c.Error != "" {
			parts = append(parts, "reference: "+c.Error)
		} else {
			parts = append(parts, fmt.Sprintf("reference %s (%+d B)", humanize.Bytes(uint64(c.ReferenceBytes)), c.Delta()))
		}
	}
	return strings.Join(parts, ", ")
}

// describeFailure returns a one-line description of why res failed, or
// "valid" for a passing validation.
func describeFailure(res *batch.Result) string {
	code, reason, _ := failure(res)
	switch {
	case code == "" && reason == "":
		return "valid"
	case code == "":
		return reason
	}
	return string(code) + ": " + reason
}

func failure(res *batch.Result) (errors.ErrorCode, string, int) {
	if res.Err != nil {
		if se, ok := errors.As(res.Err); ok {
			return se.Code, se.Error(), se.Offset
		}
		return "", res.Err.Error(), -1
	}
	if v := res.Validation; v != nil && !v.Valid {
		return v.Code, v.Reason, v.Offset
	}
	return "", "", -1
}

// JSONOutput represents the JSON output format.
type JSONOutput struct {
	Summary struct {
		Total            int `json:"total"`
		Failed           int `json:"failed"`
		Cached           int `json:"cached"`
		OriginalBytes    int `json:"original_bytes"`
		MinifiedBytes    int `json:"minified_bytes"`
		ReductionPercent int `json:"reduction_percent"`
	} `json:"summary"`
	Results []JSONResult `json:"results"`
}

// JSONResult represents a single input's result in JSON.
type JSONResult struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	OK     bool   `json:"ok"`
	Cached bool   `json:"cached,omitempty"`
	// Report fields, present for minification runs.
	MinifiedText      *string `json:"minified_text,omitempty"`
	OriginalSizeBytes *int    `json:"original_size_bytes,omitempty"`
	MinifiedSizeBytes *int    `json:"minified_size_bytes,omitempty"`
	SavedBytes        *int    `json:"saved_bytes,omitempty"`
	ReductionPercent  *int    `json:"reduction_percent,omitempty"`
	ReferenceBytes    *int    `json:"reference_bytes,omitempty"`
	// Failure fields.
	Code   errors.ErrorCode `json:"code,omitempty"`
	Reason string           `json:"reason,omitempty"`
	Offset *int             `json:"offset,omitempty"`

	// DurationMS is the processing time in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

func (f *Formatter) formatJSON(results []batch.Result) error {
	output := JSONOutput{Results: []JSONResult{}}

	for i := range results {
		res := &results[i]
		jr := JSONResult{
			Name:       res.Name,
			Kind:       res.Kind.String(),
			OK:         res.OK(),
			Cached:     res.Cached,
			DurationMS: res.Duration.Milliseconds(),
		}
		if r := res.Report; r != nil {
			saved := r.SavedBytes()
			jr.SavedBytes = &saved
			jr.MinifiedText = &r.MinifiedText
			jr.OriginalSizeBytes = &r.OriginalSizeBytes
			jr.MinifiedSizeBytes = &r.MinifiedSizeBytes
			jr.ReductionPercent = &r.ReductionPercent
		}
		if c := res.Comparison; c != nil && c.Error == "" {
			jr.ReferenceBytes = &c.ReferenceBytes
		}
		if code, reason, offset := failure(res); code != "" || reason != "" {
			jr.Code = code
			jr.Reason = reason
			if offset >= 0 {
				jr.Offset = &offset
			}
		}
		output.Results = append(output.Results, jr)
	}

	s := batch.Summarize(results)
	output.Summary.Total = s.Total
	output.Summary.Failed = s.Failed
	output.Summary.Cached = s.Cached
	output.Summary.OriginalBytes = s.OriginalBytes
	output.Summary.MinifiedBytes = s.MinifiedBytes
	output.Summary.ReductionPercent = s.ReductionPercent()

	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatGitHub outputs results in GitHub Actions annotation format.
func (f *Formatter) formatGitHub(results []batch.Result) error {
	for i := range results {
		res := &results[i]
		if res.OK() {
			continue
		}
		fmt.Fprintf(f.Writer, "::error file=%s,title=%s::%s\n",
			res.Name,
			res.Kind.DisplayName(),
			strings.ReplaceAll(describeFailure(res), "\n", " "),
		)
	}

	s := batch.Summarize(results)
	if s.Failed > 0 {
		fmt.Fprintf(f.Writer, "::error::%d/%d inputs failed\n", s.Failed, s.Total)
	} else {
		fmt.Fprintf(f.Writer, "::notice::All %d inputs passed, %s saved\n",
			s.Total, humanize.Bytes(uint64(max(s.OriginalBytes-s.MinifiedBytes, 0))))
	}
	return nil
}
