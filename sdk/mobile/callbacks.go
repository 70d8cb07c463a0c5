package mobile

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
)

// ErrorCallback is invoked when critical errors occur in the library.
// This interface is gomobile-compatible (single method with basic types).
//
// Parameters:
//   - code: Error code (e.g., "CORRUPTED_SETTINGS", "MIGRATION_FAILED")
//   - message: Human-readable error message
//   - severity: 0=debug, 1=warning, 2=critical, 3=fatal
type ErrorCallback interface {
	OnError(code string, message string, severity int)
}

// LogSink receives formatted log lines, e.g. to forward them to Logcat.
type LogSink interface {
	Log(line string)
}

// Platform answers the OS queries behind the checks. The Android wrapper
// implements it with PowerManager, ActivityManager, LocationManager and
// PackageManager.
type Platform interface {
	// IsPowerSaveMode returns PowerManager.isPowerSaveMode.
	IsPowerSaveMode() bool
	// LocationPowerSaveMode returns PowerManager.getLocationPowerSaveMode.
	LocationPowerSaveMode() int
	// IsBackgroundRestricted returns ActivityManager.isBackgroundRestricted.
	IsBackgroundRestricted() bool
	// IsGnssEnabled returns whether the GPS location provider is enabled.
	IsGnssEnabled() bool
	// CanLaunch reports whether the intent in targetJSON resolves to an activity.
	CanLaunch(targetJSON string) bool
	// AppVersion returns the app's version name.
	AppVersion() (string, error)
}

// DialogPresenter shows a dialog described by dialogJSON. Button presses
// are reported back with OnDialogAction.
type DialogPresenter interface {
	Present(dialogJSON string) error
}

// LegacyPreferences reads the SharedPreferences used by earlier versions.
type LegacyPreferences interface {
	Contains(key string) bool
	GetBoolean(key string, defValue bool) bool
}

var (
	errorCallbacksMu sync.RWMutex
	errorCallbacks   []ErrorCallback
)

// RegisterErrorCallback adds a callback for critical error notifications.
// Native wrappers call this with platform-specific callback implementations.
// Multiple callbacks can be registered; all will be notified.
func RegisterErrorCallback(callback ErrorCallback) {
	if callback == nil {
		return
	}
	errorCallbacksMu.Lock()
	defer errorCallbacksMu.Unlock()
	errorCallbacks = append(errorCallbacks, callback)
}

// UnregisterErrorCallbacks clears all registered callbacks.
func UnregisterErrorCallbacks() {
	errorCallbacksMu.Lock()
	defer errorCallbacksMu.Unlock()
	errorCallbacks = nil
}

// notifyErrorCallbacks dispatches an error to all registered callbacks.
// Only called for Warning+ severity (not Debug).
// Callbacks are invoked asynchronously to avoid blocking the caller.
func notifyErrorCallbacks(err *SDKError) {
	if err == nil || err.Severity < SeverityWarning {
		return
	}

	errorCallbacksMu.RLock()
	callbacks := make([]ErrorCallback, len(errorCallbacks))
	copy(callbacks, errorCallbacks)
	errorCallbacksMu.RUnlock()

	for _, cb := range callbacks {
		// Fire and forget - don't block on callbacks
		go cb.OnError(err.Code, err.Message, int(err.Severity))
	}
}

// logError logs errors based on severity and debug mode,
// and notifies callbacks for warning+ errors.
func logError(err *SDKError, debugMode bool) {
	if err == nil {
		return
	}

	// Debug severity only logged in debug mode
	if err.Severity == SeverityDebug && !debugMode {
		return
	}

	logger := packageLogger()
	switch err.Severity {
	case SeverityDebug:
		logger.Debug(err.Message, "code", err.Code)
	case SeverityWarning:
		logger.Warn(err.Message, "code", err.Code)
		notifyErrorCallbacks(err)
	case SeverityCritical, SeverityFatal:
		logger.Error(err.Message, "code", err.Code, "severity", int(err.Severity))
		notifyErrorCallbacks(err)
	}
}

var (
	logMu   sync.RWMutex
	logSink LogSink
)

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(sinkWriter{}, &slog.HandlerOptions{Level: logLevel}))
)

// RegisterLogSink routes log output to sink. A nil sink discards logs.
func RegisterLogSink(sink LogSink) {
	logMu.Lock()
	defer logMu.Unlock()
	logSink = sink
}

// packageLogger returns the logger shared by the bridge and the core packages.
func packageLogger() *slog.Logger {
	return logger
}

// setDebugLogging switches the log level between debug and info.
func setDebugLogging(enabled bool) {
	if enabled {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelInfo)
}

// sinkWriter forwards each line written by the slog handler to the sink.
type sinkWriter struct{}

func (sinkWriter) Write(p []byte) (int, error) {
	logMu.RLock()
	sink := logSink
	logMu.RUnlock()

	if sink != nil {
		for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
			sink.Log(strings.TrimSpace(string(line)))
		}
	}
	return len(p), nil
}
