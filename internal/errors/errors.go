// Package errors provides typed errors for shrink.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies the type of error.
type ErrorCode string

// Validation failures reported by the core.
const (
	ErrEmptyInput     ErrorCode = "EMPTY_INPUT"
	ErrOversizedInput ErrorCode = "OVERSIZED_INPUT"
	ErrMalformedInput ErrorCode = "MALFORMED_INPUT"
	ErrKindMismatch   ErrorCode = "KIND_MISMATCH"
)

// Failures raised by callers of the core.
const (
	ErrUnknownKind       ErrorCode = "UNKNOWN_KIND"
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrConfigNotFound    ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid     ErrorCode = "CONFIG_INVALID"
	ErrGitHubAuthFailed  ErrorCode = "GITHUB_AUTH_FAILED"
	ErrGitHubFetchFailed ErrorCode = "GITHUB_FETCH_FAILED"
	ErrInvalidRepo       ErrorCode = "INVALID_REPO"
	ErrCacheNotFound     ErrorCode = "CACHE_NOT_FOUND"
	ErrInternal          ErrorCode = "INTERNAL"
)

// Reasons reported for the fixed validation failures.
const (
	ReasonEmptyInput      = "empty input"
	ReasonOversizedInput  = "input exceeds size limit"
	ReasonUnbalanced      = "unbalanced braces"
	ReasonNoMarkupTags    = "no markup tags found"
	ReasonNoStyleRules    = "no stylesheet rules found"
	ReasonNoScriptMarkers = "no script syntax markers found"
)

// ShrinkError represents a typed error with user-friendly hints.
type ShrinkError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
	// Offset is the byte offset the failure refers to, or -1 when the
	// failure is not tied to a position in the input.
	Offset int
}

func (e *ShrinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ShrinkError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether the error is one of the four validation
// failures the core can return.
func (e *ShrinkError) IsValidation() bool {
	switch e.Code {
	case ErrEmptyInput, ErrOversizedInput, ErrMalformedInput, ErrKindMismatch:
		return true
	}
	return false
}

// New creates a new ShrinkError.
func New(code ErrorCode, message, hint string) *ShrinkError {
	return &ShrinkError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Offset:  -1,
	}
}

// Wrap creates a new ShrinkError wrapping an existing error.
func Wrap(code ErrorCode, message, hint string, cause error) *ShrinkError {
	return &ShrinkError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Cause:   cause,
		Offset:  -1,
	}
}

// As extracts a *ShrinkError from err's chain.
func As(err error) (*ShrinkError, bool) {
	var se *ShrinkError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first ShrinkError in err's chain, or the
// empty code when there is none.
func CodeOf(err error) ErrorCode {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// EmptyInput returns the failure for empty or whitespace-only text.
func EmptyInput() *ShrinkError {
	return New(ErrEmptyInput, ReasonEmptyInput, "Provide some text to minify")
}

// OversizedInput returns the failure for text above the size ceiling.
func OversizedInput(size, limit int64) *ShrinkError {
	return &ShrinkError{
		Code:    ErrOversizedInput,
		Message: ReasonOversizedInput,
		Hint:    fmt.Sprintf("Input is %d bytes, the limit is %d bytes (see limits.max_input_size or --max-size)", size, limit),
		Offset:  -1,
	}
}

// MalformedInput returns the failure for text that cannot be tokenized or
// parsed consistently.
func MalformedInput(reason string, offset int) *ShrinkError {
	msg := reason
	if offset >= 0 {
		msg = fmt.Sprintf("%s (at offset %d)", reason, offset)
	}
	return &ShrinkError{
		Code:    ErrMalformedInput,
		Message: msg,
		Hint:    "Check the input for unterminated strings, comments or brackets",
		Offset:  offset,
	}
}

// KindMismatch returns the failure for text lacking the markers of its
// declared kind.
func KindMismatch(reason, kind string) *ShrinkError {
	return &ShrinkError{
		Code:    ErrKindMismatch,
		Message: reason,
		Hint:    fmt.Sprintf("The text does not look like %s; check the declared kind", kind),
		Offset:  -1,
	}
}

// UnknownKind returns an error for an unrecognised content kind name.
func UnknownKind(name string) *ShrinkError {
	return New(ErrUnknownKind,
		fmt.Sprintf("unknown content kind: %s", name),
		"Run `shrink kinds` to list supported kinds")
}

// CacheNotFound returns an error for a missing cache entry.
func CacheNotFound(key string) *ShrinkError {
	return New(ErrCacheNotFound,
		fmt.Sprintf("no cached result for %s", key),
		"The entry is written the next time the input is minified")
}

// Internal returns an error for a broken invariant inside the core.
func Internal(message string, cause error) *ShrinkError {
	return Wrap(ErrInternal, message, "This is a bug in shrink; please report it with the input", cause)
}

// ConfigNotFound returns an error for missing config file.
func ConfigNotFound(path string) *ShrinkError {
	return New(ErrConfigNotFound,
		fmt.Sprintf("config file not found: %s", path),
		"Run `shrink config init` to create a configuration")
}

// ConfigInvalid returns an error for invalid config.
func ConfigInvalid(reason string) *ShrinkError {
	return New(ErrConfigInvalid,
		fmt.Sprintf("invalid config: %s", reason),
		"Check your config file at ~/.config/shrink/config.yaml")
}

// GitHubAuthFailed returns an error for authentication failures.
func GitHubAuthFailed(cause error) *ShrinkError {
	return Wrap(ErrGitHubAuthFailed,
		"GitHub authentication failed; --repo and --path inputs need a token",
		"Run `gh auth login` or set SHRINK_GITHUB_TOKEN, or pass the file locally or on stdin",
		cause)
}

// GitHubFetchFailed returns an error for fetch failures.
func GitHubFetchFailed(repo string, cause error) *ShrinkError {
	return Wrap(ErrGitHubFetchFailed,
		fmt.Sprintf("failed to fetch from %s", repo),
		"Check that the repository and path exist and you have access",
		cause)
}

// InvalidRepo returns an error for malformed repo strings.
func InvalidRepo(repo string) *ShrinkError {
	return New(ErrInvalidRepo,
		fmt.Sprintf("invalid repository format: %s", repo),
		"Use format: github.com/owner/repo or owner/repo")
}
