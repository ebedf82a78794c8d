package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_New_Retryable(t *testing.T) {
	assert.True(t, New(ErrCodeTimeout, "timed out").Retryable)
	assert.False(t, New(ErrCodePrecondition, "nope").Retryable)
	assert.False(t, New(ErrCodeEncoding, "bad").Retryable)
}

func TestAppError_Error_Format(t *testing.T) {
	err := Precondition("The JSON-RPC endpoint not set.")
	assert.Equal(t, "PRECONDITION_FAILED: The JSON-RPC endpoint not set.", err.Error())

	wrapped := Encoding("Invalid JSON-RPC payload.", fmt.Errorf("unsupported value: NaN"))
	assert.Contains(t, wrapped.Error(), "cause: unsupported value: NaN")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Encoding("bad", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestAppError_Is_MatchesSentinelByCode(t *testing.T) {
	err := fmt.Errorf("run: %w", Timeout("ssh"))

	assert.True(t, stderrors.Is(err, Sentinel(ErrCodeTimeout)))
	assert.False(t, stderrors.Is(err, Sentinel(ErrCodeProcess)))
}

func TestAppError_Is_IgnoresNonSentinelTargets(t *testing.T) {
	err := Timeout("ssh")
	assert.False(t, stderrors.Is(err, Timeout("scp")))
}

func TestInvalidInput_Details(t *testing.T) {
	err := InvalidInput("destination", "must not end with a slash")
	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, "destination", err.Details["field"])

	noField := InvalidInput("", "bad")
	_, ok := noField.Details["field"]
	assert.False(t, ok)
}

func TestResourceUnavailable_Details(t *testing.T) {
	err := ResourceUnavailable("/tmp/x", "The source file does not exist.")
	assert.Equal(t, ErrCodeResourceUnavailable, err.Code)
	assert.Equal(t, "/tmp/x", err.Details["path"])
}

func TestProcessFailed_KeepsStderr(t *testing.T) {
	err := ProcessFailed("scp failed", "Permission denied")
	assert.Equal(t, "Permission denied", err.Details["stderr"])
	assert.True(t, err.Retryable)

	quiet := ProcessFailed("scp failed", "")
	assert.Nil(t, quiet.Details)
}

func TestWithDetails_Merge(t *testing.T) {
	err := Protocol("bad").WithDetails(map[string]any{"status": 500})
	err.WithDetail("body", "ERR")
	assert.Equal(t, 500, err.Details["status"])
	assert.Equal(t, "ERR", err.Details["body"])
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Protocol("inner"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "inner", appErr.Message)

	_, ok = AsAppError(fmt.Errorf("plain"))
	assert.False(t, ok)
	assert.True(t, IsAppError(wrapped))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ResourceUnavailable("/x", "missing"))
	assert.True(t, HasCode(err, ErrCodeResourceUnavailable))
	assert.False(t, HasCode(err, ErrCodeProcess))
	assert.False(t, HasCode(nil, ErrCodeProcess))
}
