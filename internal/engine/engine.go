// Package engine is the single entry point to the core: it validates text
// against its declared kind and, when valid, minifies it and builds the
// report.
package engine

import (
	"log/slog"
	"strings"

	"github.com/HartBrook/shrink/internal/equiv"
	"github.com/HartBrook/shrink/internal/errors"
	"github.com/HartBrook/shrink/internal/kind"
	"github.com/HartBrook/shrink/internal/minify"
)

// DefaultMaxInputBytes is the size ceiling applied when none is configured.
const DefaultMaxInputBytes int64 = 1 << 20

// ValidationResult is the outcome of validating one text.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Reason string           `json:"reason,omitempty"`
	Code   errors.ErrorCode `json:"code,omitempty"`
	// Offset is the byte offset of a malformed region, or -1.
	Offset int `json:"offset"`
}

// Err returns the failure as a *errors.ShrinkError, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &errors.ShrinkError{Code: r.Code, Message: r.Reason, Offset: r.Offset}
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputBytes sets the size ceiling. Values below 1 keep the default.
func WithMaxInputBytes(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxInputBytes = n
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithVerify makes Process check every minified text for equivalence with
// its input before returning it.
func WithVerify(verify bool) Option {
	return func(e *Engine) {
		e.verify = verify
	}
}

// Engine validates and minifies text. Its configuration is fixed at
// construction, so one Engine may serve any number of goroutines.
type Engine struct {
	maxInputBytes int64
	logger        *slog.Logger
	verify        bool
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxInputBytes: DefaultMaxInputBytes,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxInputBytes returns the configured size ceiling.
func (e *Engine) MaxInputBytes() int64 {
	return e.maxInputBytes
}

// Validate checks text against k. Checks run in order: size ceiling, empty
// input, then the kind's own rules.
func (e *Engine) Validate(text string, k kind.Kind) ValidationResult {
	if err := e.check(text, k); err != nil {
		return resultFrom(err)
	}
	return ValidationResult{Valid: true, Offset: -1}
}

// Process validates text and returns the minification report. Validation
// failures are returned as *errors.ShrinkError.
func (e *Engine) Process(text string, k kind.Kind) (*Report, error) {
	if err := e.check(text, k); err != nil {
		e.logger.Debug("validation failed", "kind", k, "code", errors.CodeOf(err), "error", err)
		return nil, err
	}

	minified, err := minify.Minify(text, k)
	if err != nil {
		return nil, err
	}

	if e.verify {
		if err := equiv.Check(text, minified, k); err != nil {
			e.logger.Error("minified output failed equivalence check", "kind", k, "error", err)
			return nil, errors.Internal("minified output is not equivalent to the input", err)
		}
	}

	report := BuildReport(k, text, minified)
	e.logger.Debug("minified",
		"kind", k,
		"original_bytes", report.OriginalSizeBytes,
		"minified_bytes", report.MinifiedSizeBytes,
		"reduction_percent", report.ReductionPercent)
	return &report, nil
}

func (e *Engine) check(text string, k kind.Kind) error {
	if !k.Valid() {
		return errors.UnknownKind(k.String())
	}
	if size := int64(len(text)); size > e.maxInputBytes {
		return errors.OversizedInput(size, e.maxInputBytes)
	}
	if strings.TrimSpace(text) == "" {
		return errors.EmptyInput()
	}
	return minify.Validate(text, k)
}

func resultFrom(err error) ValidationResult {
	se, ok := errors.As(err)
	if !ok {
		se = errors.Internal("validation failed", err)
	}
	return ValidationResult{
		Valid:  false,
		Reason: se.Message,
		Code:   se.Code,
		Offset: se.Offset,
	}
}

// Validate checks text against k with the default configuration.
func Validate(text string, k kind.Kind) ValidationResult {
	return New().Validate(text, k)
}

// Process minifies text with the default configuration.
func Process(text string, k kind.Kind) (*Report, error) {
	return New().Process(text, k)
}
