package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("load: %w", NewModuleNotFoundError("argus.site.settings.missing", "docker.api.dockerdev"))

	assert.True(t, stderrors.Is(err, ErrModuleNotFound))
	assert.False(t, stderrors.Is(err, ErrModuleLoadFailed))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeModuleNotFound, stdErr.Code)
	assert.Contains(t, stdErr.Details, "required by: docker.api.dockerdev")
	assert.Equal(t, "argus.site.settings.missing", stdErr.Metadata["module"])
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("bad bool")
	err := NewModuleLoadFailedError("argus.site.settings.dev", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrModuleLoadFailed)
	assert.Contains(t, err.Error(), "MODULE_LOAD_FAILED")
	assert.Contains(t, err.Error(), "bad bool")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewBackendUnreachableError("redis", stderrors.New("refused"))))
	assert.True(t, IsRetryable(NewCheckTimeoutError("database")))
	assert.False(t, IsRetryable(NewUnknownSettingError("NOPE")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeModuleNotFound, "MODULE"},
		{ErrCodeOverlayInvalid, "OVERLAY"},
		{ErrCodeInvalidPluginIdentifier, "VALIDATION"},
		{ErrCodeCatalogLoadFailed, "CATALOG"},
		{ErrCodeBackendUnreachable, "BACKEND"},
		{ErrorCode("SMTP_TIMEOUT"), "TIMEOUT"},
		{ErrorCode("SOMETHING_ELSE"), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCategory(tt.code))
		})
	}
}

func TestNewOverlayInvalidError_ListsProblems(t *testing.T) {
	err := NewOverlayInvalidError("overlay.yaml", []string{"a is bad", "b is bad"})
	assert.Equal(t, "path: overlay.yaml, problems: a is bad; b is bad", err.Details)
	assert.Equal(t, []string{"a is bad", "b is bad"}, err.Metadata["problems"])
}
