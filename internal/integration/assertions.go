package integration

import (
	"strings"
	"testing"

	"github.com/HartBrook/shrink/internal/errors"
)

// Asserter checks a fixture outcome.
type Asserter struct {
	t       *testing.T
	outcome *Outcome
}

// NewAsserter creates an asserter for the given outcome.
func NewAsserter(t *testing.T, outcome *Outcome) *Asserter {
	return &Asserter{t: t, outcome: outcome}
}

// Output returns the minified text, or "" when minification failed.
func (a *Asserter) Output() string {
	if r := a.outcome.Result.Report; r != nil {
		return r.MinifiedText
	}
	return ""
}

// RunAssertions runs all assertions from a fixture definition.
func (a *Asserter) RunAssertions(assertions FixtureAssertions) {
	a.t.Helper()

	v := a.outcome.Validation
	res := a.outcome.Result

	if v.Valid != assertions.Valid {
		a.t.Fatalf("expected valid=%v, got %v (%s: %s)", assertions.Valid, v.Valid, v.Code, v.Reason)
	}

	if !assertions.Valid {
		a.checkFailure(assertions)
		return
	}

	if res.Err != nil {
		a.t.Fatalf("valid input failed to minify: %v", res.Err)
	}
	output := a.Output()

	if assertions.Output != nil && output != *assertions.Output {
		a.t.Errorf("expected output %q, got %q", *assertions.Output, output)
	}
	if assertions.ReductionPercent != nil && res.Report.ReductionPercent != *assertions.ReductionPercent {
		a.t.Errorf("expected reduction %d%%, got %d%%", *assertions.ReductionPercent, res.Report.ReductionPercent)
	}

	// Check contains
	for _, text := range assertions.Contains {
		if !strings.Contains(output, text) {
			a.t.Errorf("expected output to contain %q, but not found", text)
		}
	}

	// Check not contains
	for _, text := range assertions.NotContains {
		if strings.Contains(output, text) {
			a.t.Errorf("expected output NOT to contain %q, but found", text)
		}
	}

	a.checkInvariants()
}

func (a *Asserter) checkFailure(assertions FixtureAssertions) {
	a.t.Helper()

	v := a.outcome.Validation
	if string(v.Code) != assertions.Code {
		a.t.Errorf("expected code %s, got %s", assertions.Code, v.Code)
	}
	if assertions.Reason != "" && v.Reason != assertions.Reason {
		a.t.Errorf("expected reason %q, got %q", assertions.Reason, v.Reason)
	}
	if assertions.Offset != nil && v.Offset != *assertions.Offset {
		a.t.Errorf("expected offset %d, got %d", *assertions.Offset, v.Offset)
	}

	// Minifying must fail the same way.
	if got := errors.CodeOf(a.outcome.Result.Err); string(got) != assertions.Code {
		a.t.Errorf("expected minify to fail with %s, got %v", assertions.Code, a.outcome.Result.Err)
	}
	if a.outcome.Result.Report != nil {
		a.t.Error("expected no report for invalid input")
	}
}

// checkInvariants verifies properties every successful run must have.
func (a *Asserter) checkInvariants() {
	a.t.Helper()

	r := a.outcome.Result.Report
	if r.MinifiedSizeBytes > r.OriginalSizeBytes {
		a.t.Errorf("output grew from %d to %d bytes", r.OriginalSizeBytes, r.MinifiedSizeBytes)
	}
	if r.MinifiedSizeBytes != len(r.MinifiedText) {
		a.t.Errorf("reported size %d does not match output length %d", r.MinifiedSizeBytes, len(r.MinifiedText))
	}

	rerun := a.outcome.Rerun
	if !rerun.Cached {
		a.t.Error("expected the second run to be served from cache")
	}
	if rerun.Report == nil || *rerun.Report != *r {
		a.t.Errorf("cached report differs from the first run")
	}
}
