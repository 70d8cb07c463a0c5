package mobile

import (
	"errors"
	"fmt"

	"github.com/cyface-de/energy-settings/internal/guidance"
	"github.com/cyface-de/energy-settings/internal/settings"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity int

const (
	// SeverityDebug is informational, logged in debug mode only.
	SeverityDebug ErrorSeverity = iota
	// SeverityWarning is non-critical, the library keeps working.
	SeverityWarning
	// SeverityCritical is a serious issue the app should handle.
	SeverityCritical
	// SeverityFatal means the library cannot operate until Init succeeds.
	SeverityFatal
)

// Error codes for categorization.
const (
	ErrCodeNotInitialized    = "NOT_INITIALIZED"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeDiskError         = "DISK_ERROR"
	ErrCodeCorruptedSettings = "CORRUPTED_SETTINGS"
	ErrCodeMigrationFailed   = "MIGRATION_FAILED"
	ErrCodeUnknownDialog     = "UNKNOWN_DIALOG"
	ErrCodePresenterError    = "PRESENTER_ERROR"
)

// SDKError represents a structured error with severity and code.
type SDKError struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Severity ErrorSeverity `json:"severity"`
}

// Error implements the error interface.
func (e *SDKError) Error() string {
	return e.Message
}

// errPresenter marks failures reported by the native DialogPresenter.
var errPresenter = errors.New("dialog presenter failed")

// newWarningError creates a warning-level error.
func newWarningError(code, message string) *SDKError {
	return &SDKError{Code: code, Message: message, Severity: SeverityWarning}
}

// newCriticalError creates a critical-level error.
func newCriticalError(code, message string) *SDKError {
	return &SDKError{Code: code, Message: message, Severity: SeverityCritical}
}

// newFatalError creates a fatal-level error.
func newFatalError(code, message string) *SDKError {
	return &SDKError{Code: code, Message: message, Severity: SeverityFatal}
}

// classifyError maps errors from the core packages to an SDKError.
// A migration without a step is fatal: the settings cannot be used until
// the library is fixed.
func classifyError(err error) *SDKError {
	if err == nil {
		return nil
	}

	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return sdkErr
	}

	var migrationErr *settings.MigrationError
	switch {
	case errors.As(err, &migrationErr):
		return newFatalError(ErrCodeMigrationFailed, err.Error())
	case errors.Is(err, settings.ErrClosed):
		return newFatalError(ErrCodeNotInitialized, err.Error())
	case errors.Is(err, settings.ErrCorrupted):
		return newCriticalError(ErrCodeCorruptedSettings, err.Error())
	case errors.Is(err, guidance.ErrUnknownDialog):
		return newWarningError(ErrCodeUnknownDialog, err.Error())
	case errors.Is(err, errPresenter):
		return newWarningError(ErrCodePresenterError, err.Error())
	default:
		return newCriticalError(ErrCodeDiskError, err.Error())
	}
}

// wrapError returns empty string for nil, error message otherwise.
// Used by exported functions that return string instead of error.
func wrapError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// debugLog formats a debug message for the platform log sink.
func debugLog(format string, args ...interface{}) {
	packageLogger().Debug(fmt.Sprintf(format, args...))
}
