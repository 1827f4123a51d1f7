package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyInput(t *testing.T) {
	err := EmptyInput()

	assert.Equal(t, ErrEmptyInput, err.Code)
	assert.Equal(t, "empty input", err.Error())
	assert.Equal(t, -1, err.Offset)
	assert.True(t, err.IsValidation())
}

func TestOversizedInput(t *testing.T) {
	err := OversizedInput(2<<20, 1<<20)

	assert.Equal(t, ErrOversizedInput, err.Code)
	assert.Equal(t, "input exceeds size limit", err.Error())
	assert.Contains(t, err.Hint, "2097152")
	assert.Contains(t, err.Hint, "1048576")
}

func TestMalformedInput(t *testing.T) {
	t.Run("with offset", func(t *testing.T) {
		err := MalformedInput("unterminated string literal", 12)
		assert.Equal(t, ErrMalformedInput, err.Code)
		assert.Equal(t, "unterminated string literal (at offset 12)", err.Error())
		assert.Equal(t, 12, err.Offset)
	})

	t.Run("without offset", func(t *testing.T) {
		err := MalformedInput(ReasonUnbalanced, -1)
		assert.Equal(t, "unbalanced braces", err.Error())
	})
}

func TestKindMismatch(t *testing.T) {
	err := KindMismatch(ReasonNoScriptMarkers, "JavaScript")

	assert.Equal(t, ErrKindMismatch, err.Code)
	assert.Equal(t, "no script syntax markers found", err.Error())
	assert.Contains(t, err.Hint, "JavaScript")
}

func TestIsValidation(t *testing.T) {
	assert.True(t, MalformedInput("x", 0).IsValidation())
	assert.True(t, KindMismatch("x", "CSS").IsValidation())
	assert.False(t, UnknownKind("rust").IsValidation())
	assert.False(t, ConfigInvalid("bad").IsValidation())
	assert.False(t, Internal("oops", nil).IsValidation())
}

func TestShrinkError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := &ShrinkError{
			Code:    ErrInternal,
			Message: "test message",
		}
		assert.Equal(t, "test message", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := &ShrinkError{
			Code:    ErrInternal,
			Message: "test message",
			Cause:   cause,
		}
		assert.Equal(t, "test message: root cause", err.Error())
	})
}

func TestAsAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("processing app.js: %w", EmptyInput())

	se, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrEmptyInput, se.Code)
	assert.Equal(t, ErrEmptyInput, CodeOf(wrapped))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestNew(t *testing.T) {
	err := New(ErrInternal, "test message", "test hint")

	assert.Equal(t, ErrInternal, err.Code)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test hint", err.Hint)
	assert.Nil(t, err.Cause)
	assert.Equal(t, -1, err.Offset)
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrGitHubFetchFailed, "wrapper message", "wrapper hint", cause)

	assert.Equal(t, ErrGitHubFetchFailed, err.Code)
	assert.Equal(t, "wrapper message", err.Message)
	assert.Equal(t, "wrapper hint", err.Hint)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestGitHubErrors(t *testing.T) {
	cause := errors.New("401")

	auth := GitHubAuthFailed(cause)
	assert.Equal(t, ErrGitHubAuthFailed, auth.Code)
	assert.Contains(t, auth.Hint, "SHRINK_GITHUB_TOKEN")

	fetch := GitHubFetchFailed("acme/site", cause)
	assert.Contains(t, fetch.Error(), "acme/site")
	assert.ErrorIs(t, fetch, cause)

	repo := InvalidRepo("nope")
	assert.Equal(t, ErrInvalidRepo, repo.Code)
	assert.Contains(t, repo.Hint, "owner/repo")
}
