// Package errors provides standardized error handling for settings resolution
// and readiness checks.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Module resolution
const (
	ErrCodeModuleNotFound   ErrorCode = "MODULE_NOT_FOUND"
	ErrCodeModuleLoadFailed ErrorCode = "MODULE_LOAD_FAILED"
	ErrCodeModuleInvalid    ErrorCode = "MODULE_INVALID"
)

// Overlays and validation
const (
	ErrCodeOverlayReadFailed       ErrorCode = "OVERLAY_READ_FAILED"
	ErrCodeOverlayInvalid          ErrorCode = "OVERLAY_INVALID"
	ErrCodeSettingsInvalid         ErrorCode = "SETTINGS_INVALID"
	ErrCodeInvalidPluginIdentifier ErrorCode = "INVALID_PLUGIN_IDENTIFIER"
	ErrCodeUnknownSetting          ErrorCode = "UNKNOWN_SETTING"
	ErrCodeCatalogLoadFailed       ErrorCode = "CATALOG_LOAD_FAILED"
)

// Backends
const (
	ErrCodeBackendUnreachable ErrorCode = "BACKEND_UNREACHABLE"
	ErrCodeCheckTimeout       ErrorCode = "CHECK_TIMEOUT"
)

// Sentinels for errors.Is. A StandardError matches the sentinel carrying its code.
var (
	ErrModuleNotFound          = &StandardError{Code: ErrCodeModuleNotFound}
	ErrModuleLoadFailed        = &StandardError{Code: ErrCodeModuleLoadFailed}
	ErrModuleInvalid           = &StandardError{Code: ErrCodeModuleInvalid}
	ErrOverlayReadFailed       = &StandardError{Code: ErrCodeOverlayReadFailed}
	ErrOverlayInvalid          = &StandardError{Code: ErrCodeOverlayInvalid}
	ErrSettingsInvalid         = &StandardError{Code: ErrCodeSettingsInvalid}
	ErrInvalidPluginIdentifier = &StandardError{Code: ErrCodeInvalidPluginIdentifier}
	ErrUnknownSetting          = &StandardError{Code: ErrCodeUnknownSetting}
	ErrCatalogLoadFailed       = &StandardError{Code: ErrCodeCatalogLoadFailed}
	ErrBackendUnreachable      = &StandardError{Code: ErrCodeBackendUnreachable}
	ErrCheckTimeout            = &StandardError{Code: ErrCodeCheckTimeout}
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Err       error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// Is matches any StandardError with the same code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ==========================
// 2. Error Constructors
// ==========================

// NewModuleNotFoundError creates a non-retryable error for an unknown settings module.
// requiredBy is the module that named the missing one as its base, if any.
func NewModuleNotFoundError(path, requiredBy string) *StandardError {
	details := fmt.Sprintf("module: %s", path)
	if requiredBy != "" {
		details = fmt.Sprintf("module: %s, required by: %s", path, requiredBy)
	}
	return &StandardError{
		Code:      ErrCodeModuleNotFound,
		Message:   "Settings module not found",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"module": path},
		Timestamp: time.Now().UTC(),
	}
}

// NewModuleLoadFailedError wraps a failure raised while applying a module.
func NewModuleLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModuleLoadFailed,
		Message:   "Settings module failed to load",
		Details:   fmt.Sprintf("module: %s, error: %s", path, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"module": path},
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewModuleInvalidError rejects a module definition at registration.
func NewModuleInvalidError(path, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModuleInvalid,
		Message:   "Invalid settings module definition",
		Details:   fmt.Sprintf("module: %s, %s", path, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewOverlayReadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOverlayReadFailed,
		Message:   "Failed to read overlay file",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

func NewOverlayInvalidError(path string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOverlayInvalid,
		Message:   "Overlay file does not match the settings schema",
		Details:   fmt.Sprintf("path: %s, problems: %s", path, strings.Join(problems, "; ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"problems": problems},
		Timestamp: time.Now().UTC(),
	}
}

func NewSettingsInvalidError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSettingsInvalid,
		Message:   "Settings failed validation",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Metadata:  map[string]interface{}{"problems": problems},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidPluginIdentifierError(identifier, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPluginIdentifier,
		Message:   "Invalid media plugin identifier",
		Details:   fmt.Sprintf("identifier: %q, %s", identifier, reason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownSettingError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownSetting,
		Message:   "Unknown setting",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCatalogLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Failed to load media catalog",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

// NewBackendUnreachableError creates a retryable error for a backend probe.
func NewBackendUnreachableError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnreachable,
		Message:   "Backend unreachable",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"backend": backend},
		Timestamp: time.Now().UTC(),
		Err:       err,
	}
}

func NewCheckTimeoutError(check string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCheckTimeout,
		Message:   "Check timed out",
		Details:   fmt.Sprintf("check: %s", check),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err to the first StandardError in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeModuleNotFound, ErrCodeModuleLoadFailed, ErrCodeModuleInvalid:
		return "MODULE"
	case ErrCodeOverlayReadFailed, ErrCodeOverlayInvalid:
		return "OVERLAY"
	case ErrCodeSettingsInvalid, ErrCodeInvalidPluginIdentifier, ErrCodeUnknownSetting:
		return "VALIDATION"
	case ErrCodeCatalogLoadFailed:
		return "CATALOG"
	case ErrCodeBackendUnreachable, ErrCodeCheckTimeout:
		return "BACKEND"
	}
	if strings.HasSuffix(string(code), "_TIMEOUT") {
		return "TIMEOUT"
	}
	return "UNKNOWN"
}
