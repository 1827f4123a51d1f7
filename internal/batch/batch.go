// Package batch minifies or validates many inputs in parallel with one
// shared engine.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/HartBrook/shrink/internal/cache"
	"github.com/HartBrook/shrink/internal/engine"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/reference"
)

// Input is one text to process. Err carries a failure from reading the
// input; such inputs are reported without being processed.
type Input struct {
	Name string
	Kind kind.Kind
	Text string
	Err  error
}

// Result is the outcome for one Input, at the same index as its input.
type Result struct {
	Name       string
	Kind       kind.Kind
	Report     *engine.Report
	Validation *engine.ValidationResult
	Comparison *reference.Comparison
	Cached     bool
	Err        error
	Duration   time.Duration
}

// OK reports whether the input was processed without error and, for
// validation runs, was valid.
func (r *Result) OK() bool {
	if r.Err != nil {
		return false
	}
	return r.Validation == nil || r.Validation.Valid
}

// Mode selects what the runner does with each input.
type Mode int

const (
	ModeMinify Mode = iota
	ModeValidate
)

// Options controls a Runner.
type Options struct {
	Mode Mode
	// Jobs bounds the number of inputs processed at once. Values below 1
	// mean GOMAXPROCS.
	Jobs int
	// Cache, when set, serves and stores minification results.
	Cache    *cache.Cache
	CacheTTL time.Duration
	// Compare also runs the reference minifier on each input.
	Compare bool
	Logger  *slog.Logger
}

// Runner processes inputs with a bounded worker pool.
type Runner struct {
	engine *engine.Engine
	opts   Options
	logger *slog.Logger
}

// New creates a Runner.
func New(e *engine.Engine, opts Options) *Runner {
	if opts.Jobs < 1 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{engine: e, opts: opts, logger: logger}
}

// Run processes inputs and returns one result per input, in input order.
// Cancelling ctx stops dispatch; inputs never dispatched get ctx's error.
func (r *Runner) Run(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))
	jobs := make(chan int, r.opts.Jobs*2)

	var wg sync.WaitGroup
	for range min(r.opts.Jobs, len(inputs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.process(inputs[i])
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(inputs); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(inputs); i++ {
		results[i] = Result{Name: inputs[i].Name, Kind: inputs[i].Kind, Err: ctx.Err()}
	}
	return results
}

func (r *Runner) process(in Input) (res Result) {
	start := time.Now()
	res = Result{Name: in.Name, Kind: in.Kind}
	defer func() {
		res.Duration = time.Since(start)
		r.logger.Debug("processed", "input", in.Name, "ok", res.OK(), "duration", res.Duration)
	}()

	if in.Err != nil {
		res.Err = in.Err
		return res
	}

	if r.opts.Mode == ModeValidate {
		v := r.engine.Validate(in.Text, in.Kind)
		res.Validation = &v
		return res
	}

	key := cache.Key(in.Kind, in.Text)
	if r.opts.Cache != nil {
		if out, _, ok := r.opts.Cache.Lookup(key, r.opts.CacheTTL); ok {
			report := engine.BuildReport(in.Kind, in.Text, out)
			res.Report = &report
			res.Cached = true
			r.logger.Debug("cache hit", "input", in.Name, "key", key[:12])
		}
	}

	if res.Report == nil {
		report, err := r.engine.Process(in.Text, in.Kind)
		if err != nil {
			res.Err = err
			return res
		}
		res.Report = report
		if r.opts.Cache != nil {
			meta := &cache.Metadata{
				Kind:          in.Kind.String(),
				Source:        in.Name,
				OriginalBytes: report.OriginalSizeBytes,
				MinifiedBytes: report.MinifiedSizeBytes,
			}
			if err := r.opts.Cache.Write(key, report.MinifiedText, meta); err != nil {
				r.logger.Warn("failed to write result cache", "input", in.Name, "error", err)
			}
		}
	}

	if r.opts.Compare {
		c := reference.Compare(in.Kind, in.Text, res.Report.MinifiedText)
		res.Comparison = &c
	}
	return res
}

// Summary totals a set of results.
type Summary struct {
	Total         int
	Failed        int
	Cached        int
	OriginalBytes int
	MinifiedBytes int
}

// Summarize totals results.
func Summarize(results []Result) Summary {
	var s Summary
	for i := range results {
		res := &results[i]
		s.Total++
		if !res.OK() {
			s.Failed++
		}
		if res.Cached {
			s.Cached++
		}
		if res.Report != nil {
			s.OriginalBytes += res.Report.OriginalSizeBytes
			s.MinifiedBytes += res.Report.MinifiedSizeBytes
		}
	}
	return s
}

// ReductionPercent returns the overall reduction across all reports.
func (s Summary) ReductionPercent() int {
	return engine.ReductionPercent(s.OriginalBytes, s.MinifiedBytes)
}
