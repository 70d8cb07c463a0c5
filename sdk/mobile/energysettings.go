// Package mobile provides the Go core for the energy settings Android library.
//
// This package is designed to be compiled with gomobile bind to produce an
// .aar library. All exported functions use only gomobile-compatible types:
// string, int, bool and error, plus the callback interfaces in callbacks.go.
//
// Complex data (config, dialogs, feedback emails, intent targets) passes as
// JSON strings through the bridge layer. The Kotlin wrapper turns dialogs
// into AlertDialogs and intent targets into Intents.
package mobile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/guidance"
	"github.com/cyface-de/energy-settings/internal/observability"
	"github.com/cyface-de/energy-settings/internal/settings"
)

// sdkInstance is the package-level singleton.
var (
	sdkMu    sync.RWMutex
	instance *sdk
)

// sdk holds the initialized library state.
type sdk struct {
	config *Config
	guide  *guidance.Guide
	store  *settings.Store
	obs    *observability.Module

	mu        sync.RWMutex
	debugMode bool
}

// Init initializes the library with a JSON configuration string, the
// platform accessors and, optionally, the SharedPreferences of earlier
// library versions to import the "don't show again" choice from.
// Returns empty string on success, or an error message on failure.
// Must be called before any other function. Calling it again with a valid
// configuration closes the previous instance before the new backend opens.
//
// Example config JSON:
//
//	{"data_path": "/data/user/0/de.cyface.app", "package_name": "de.cyface.app",
//	 "sdk_int": 33, "manufacturer": "samsung", "model": "SM-G991B"}
func Init(configJSON string, platform Platform, legacy LegacyPreferences) string {
	cfg, err := parseConfig(configJSON)
	if err != nil {
		sdkErr := newFatalError(ErrCodeInvalidConfig, err.Error())
		notifyErrorCallbacks(sdkErr)
		return sdkErr.Error()
	}
	if platform == nil {
		sdkErr := newFatalError(ErrCodeInvalidConfig, "platform is required")
		notifyErrorCallbacks(sdkErr)
		return sdkErr.Error()
	}

	setDebugLogging(cfg.DebugMode)
	logger := packageLogger()

	sdkMu.Lock()
	defer sdkMu.Unlock()

	// The previous store works on the same files and must be closed before
	// the new backend reads them.
	if instance != nil {
		if err := instance.close(); err != nil {
			logError(classifyError(err), cfg.DebugMode)
		}
		instance = nil
	}

	obs, metrics, err := openMetrics(cfg)
	if err != nil {
		sdkErr := newFatalError(ErrCodeInvalidConfig, err.Error())
		notifyErrorCallbacks(sdkErr)
		return sdkErr.Error()
	}

	backend, err := openBackend(cfg)
	if err != nil {
		shutdownMetrics(obs)
		sdkErr := newFatalError(ErrCodeDiskError, err.Error())
		notifyErrorCallbacks(sdkErr)
		return sdkErr.Error()
	}

	var source settings.LegacySource
	if legacy != nil {
		source = legacyAdapter{prefs: legacy}
	}
	store := settings.NewStore(backend,
		settings.WithLogger(logger),
		settings.WithMetrics(metrics),
		settings.WithMigrations(settings.DefaultMigrations(source, logger)...),
	)

	state := platformState{platform: platform}
	guide, err := guidance.New(guidance.Config{
		Device: cfg.deviceContext(),
		State:  state,
		Environment: &dialog.Environment{
			PackageName: cfg.PackageName,
			AppVersion:  platform.AppVersion,
			CanLaunch:   state.canLaunch,
		},
		Store:   store,
		Strings: localizer(cfg.AppName),
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		store.Close()
		shutdownMetrics(obs)
		sdkErr := newFatalError(ErrCodeInvalidConfig, err.Error())
		notifyErrorCallbacks(sdkErr)
		return sdkErr.Error()
	}

	instance = &sdk{
		config:    cfg,
		guide:     guide,
		store:     store,
		obs:       obs,
		debugMode: cfg.DebugMode,
	}

	if cfg.DebugMode {
		debugLog("initialized for %s on %s (API %d), backend %s",
			cfg.PackageName, cfg.Manufacturer, cfg.SDKInt, cfg.StoreBackend)
	}

	return ""
}

// openMetrics sets up a private metrics registry if the config asks for one.
// Both results are nil otherwise, which disables recording.
func openMetrics(cfg *Config) (*observability.Module, *observability.Metrics, error) {
	if !cfg.EnableMetrics {
		return nil, nil, nil
	}
	obs, err := observability.New("energy-settings")
	if err != nil {
		return nil, nil, err
	}
	metrics, err := observability.NewMetrics(obs.Meter())
	if err != nil {
		shutdownMetrics(obs)
		return nil, nil, err
	}
	return obs, metrics, nil
}

func shutdownMetrics(obs *observability.Module) {
	if obs != nil {
		obs.Shutdown(context.Background())
	}
}

// openBackend creates the configured settings backend.
func openBackend(cfg *Config) (settings.Backend, error) {
	switch cfg.StoreBackend {
	case StoreBackendSQLite:
		return settings.NewSQLiteBackend(settings.DatabasePath(cfg.DataPath))
	default:
		return settings.NewFileBackend(settings.DataStorePath(cfg.DataPath))
	}
}

// IsEnergySaferActive returns true if an energy saver mode which very likely
// stops GNSS is active. Returns false if the library is not initialized.
func IsEnergySaferActive() bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}
	return inst.guide.IsEnergySaferActive()
}

// IsBackgroundProcessingRestricted returns true if the user restricted
// background processing for the app (Android 9+).
func IsBackgroundProcessingRestricted() bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}
	return inst.guide.IsBackgroundProcessingRestricted()
}

// IsProblematicManufacturer returns true if the device vendor is known to
// kill background apps.
func IsProblematicManufacturer() bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}
	return inst.guide.IsProblematicManufacturer()
}

// IsGnssEnabled returns true if the GPS location provider is enabled.
func IsGnssEnabled() bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}
	return inst.guide.IsGNSSEnabled()
}

// ShowEnergySaferWarningDialog presents the energy saver warning if an energy
// saver mode is active. Returns true if the dialog was presented.
func ShowEnergySaferWarningDialog(presenter DialogPresenter) bool {
	return show("ShowEnergySaferWarningDialog", presenter, func(ctx context.Context, inst *sdk, p guidance.Presenter) (bool, error) {
		return inst.guide.ShowEnergySaferWarning(ctx, p)
	})
}

// ShowBackgroundProcessingWarningDialog presents the background restriction
// warning if background processing is restricted.
// Returns true if the dialog was presented.
func ShowBackgroundProcessingWarningDialog(presenter DialogPresenter) bool {
	return show("ShowBackgroundProcessingWarningDialog", presenter, func(ctx context.Context, inst *sdk, p guidance.Presenter) (bool, error) {
		return inst.guide.ShowBackgroundRestrictionWarning(ctx, p)
	})
}

// ShowProblematicManufacturerDialog presents the vendor warning on devices of
// problematic manufacturers. Unless force is set, nothing is shown once the
// user chose "don't show again". recipient receives feedback emails.
// Returns true if the dialog was presented.
func ShowProblematicManufacturerDialog(presenter DialogPresenter, force bool, recipient string) bool {
	return show("ShowProblematicManufacturerDialog", presenter, func(ctx context.Context, inst *sdk, p guidance.Presenter) (bool, error) {
		return inst.guide.ShowProblematicManufacturerWarning(ctx, p, force, recipient)
	})
}

// ShowGnssWarningDialog presents the location warning if GNSS is disabled.
// Returns true if the dialog was presented.
func ShowGnssWarningDialog(presenter DialogPresenter) bool {
	return show("ShowGnssWarningDialog", presenter, func(ctx context.Context, inst *sdk, p guidance.Presenter) (bool, error) {
		return inst.guide.ShowGNSSWarning(ctx, p)
	})
}

// ShowNoGuidanceNeededDialog presents the "no problems found" dialog which
// offers to send a feedback email to recipient.
// Returns true if the dialog was presented.
func ShowNoGuidanceNeededDialog(presenter DialogPresenter, recipient string) bool {
	return show("ShowNoGuidanceNeededDialog", presenter, func(ctx context.Context, inst *sdk, p guidance.Presenter) (bool, error) {
		return inst.guide.ShowNoGuidanceNeeded(ctx, p, recipient)
	})
}

// OnDialogAction reports a button press. action is one of "open_settings",
// "send_feedback" or "dont_show_again".
// Returns empty string on success, or an error message on failure.
func OnDialogAction(dialogID string, action string) string {
	inst := getInstance()
	if inst == nil {
		return notInitializedError()
	}

	if err := inst.guide.HandleAction(context.Background(), dialogID, dialog.Action(action)); err != nil {
		sdkErr := classifyError(err)
		logError(sdkErr, inst.isDebug())
		return sdkErr.Error()
	}

	if inst.isDebug() {
		debugLog("OnDialogAction: dialog=%s, action=%s", dialogID, action)
	}
	return ""
}

// DismissAllDialogs forgets all open dialogs, e.g. in Activity.onPause.
// Returns the number of dialogs dropped.
func DismissAllDialogs() int {
	inst := getInstance()
	if inst == nil {
		return 0
	}
	return inst.guide.DismissAll()
}

// ManufacturerWarningShown returns true if the user chose "don't show again"
// for the vendor warning. Returns false if the setting cannot be read.
func ManufacturerWarningShown() bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}

	shown, err := inst.store.ManufacturerWarningShown(context.Background())
	if err != nil {
		logError(classifyError(err), inst.isDebug())
		return false
	}
	return shown
}

// SetManufacturerWarningShown persists the "don't show again" choice.
// Returns empty string on success, or an error message on failure.
func SetManufacturerWarningShown(shown bool) string {
	inst := getInstance()
	if inst == nil {
		return notInitializedError()
	}

	if err := inst.store.SetManufacturerWarningShown(context.Background(), shown); err != nil {
		sdkErr := classifyError(err)
		logError(sdkErr, inst.isDebug())
		return sdkErr.Error()
	}
	return ""
}

// GenerateFeedbackEmail returns the feedback email template as JSON.
// extraText is the heading above the user's message.
// Returns empty string if the library is not initialized.
func GenerateFeedbackEmail(extraText string, recipient string) string {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return ""
	}

	emailJSON, err := serializeEmail(inst.guide.FeedbackEmail(extraText, recipient))
	if err != nil {
		logError(newCriticalError(ErrCodeInvalidJSON, err.Error()), inst.isDebug())
		return ""
	}
	return emailJSON
}

// IsInitialized returns true if the library has been initialized.
func IsInitialized() bool {
	return getInstance() != nil
}

// SetDebugMode toggles debug logging at runtime.
func SetDebugMode(enabled bool) {
	inst := getInstance()
	if inst == nil {
		return
	}

	inst.mu.Lock()
	inst.debugMode = enabled
	inst.mu.Unlock()
	setDebugLogging(enabled)
}

// WriteMetrics dumps the recorded metrics in the Prometheus text format to
// path. Requires "enable_metrics" in the Init config.
// Returns empty string on success, or an error message on failure.
func WriteMetrics(path string) string {
	inst := getInstance()
	if inst == nil {
		return notInitializedError()
	}
	if inst.obs == nil {
		sdkErr := newWarningError(ErrCodeInvalidConfig, "metrics are disabled, set enable_metrics in the config")
		logError(sdkErr, inst.isDebug())
		return sdkErr.Error()
	}

	if err := inst.obs.WriteTextfile(path); err != nil {
		sdkErr := newCriticalError(ErrCodeDiskError, err.Error())
		logError(sdkErr, inst.isDebug())
		return sdkErr.Error()
	}
	return ""
}

// Close releases the settings backend. The library must be initialized
// again before further use.
// Returns empty string on success, or an error message on failure.
func Close() string {
	sdkMu.Lock()
	defer sdkMu.Unlock()

	if instance == nil {
		return ""
	}
	err := instance.close()
	instance = nil
	return wrapError(err)
}

// close releases the store and the metrics provider.
func (s *sdk) close() error {
	err := s.store.Close()
	if s.obs != nil {
		err = errors.Join(err, s.obs.Shutdown(context.Background()))
	}
	return err
}

func (s *sdk) isDebug() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debugMode
}

// show runs a Show operation with the presenter adapted to the bridge.
// Failures are reported through the error callbacks, the caller only
// learns whether a dialog was presented.
func show(op string, presenter DialogPresenter, fn func(context.Context, *sdk, guidance.Presenter) (bool, error)) bool {
	inst := getInstance()
	if inst == nil {
		notInitializedError()
		return false
	}

	var p guidance.Presenter
	if presenter != nil {
		p = presenterAdapter{presenter: presenter}
	}

	shown, err := fn(context.Background(), inst, p)
	if err != nil {
		logError(classifyError(fmt.Errorf("%s: %w", op, err)), inst.isDebug())
		return false
	}

	if inst.isDebug() {
		debugLog("%s: shown=%t", op, shown)
	}
	return shown
}

// getInstance returns the singleton, or nil if not initialized.
func getInstance() *sdk {
	sdkMu.RLock()
	defer sdkMu.RUnlock()
	return instance
}

// notInitializedError returns and notifies about the not-initialized error.
func notInitializedError() string {
	sdkErr := newFatalError(ErrCodeNotInitialized, "energy settings not initialized: call Init() first")
	notifyErrorCallbacks(sdkErr)
	return sdkErr.Error()
}

// resetForTesting resets the package state for unit tests.
// This is not exported and not available via gomobile.
func resetForTesting() {
	sdkMu.Lock()
	if instance != nil {
		instance.close()
	}
	instance = nil
	sdkMu.Unlock()

	errorCallbacksMu.Lock()
	errorCallbacks = nil
	errorCallbacksMu.Unlock()

	RegisterLogSink(nil)
	setDebugLogging(false)
}
