// Package guidance decides which energy settings warnings a user needs and
// hands them to a presenter.
//
// A Guide combines the power checks, the manufacturer resolver and the
// settings store for one device. Presentation adapters (the gomobile bridge,
// settingsctl) only render dialogs and report button actions back.
package guidance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cyface-de/energy-settings/internal/device"
	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/manufacturer"
	"github.com/cyface-de/energy-settings/internal/observability"
	"github.com/cyface-de/energy-settings/internal/power"
	"github.com/cyface-de/energy-settings/internal/settings"
)

// Sentinel errors for the guidance package.
var (
	ErrUnknownDialog = errors.New("unknown dialog")
	ErrStoreRequired = errors.New("settings store is required")
	ErrStateRequired = errors.New("power state accessor is required")
)

// PowerState reads the OS state the checks depend on.
// Every method is a single read-only query.
type PowerState interface {
	IsPowerSaveMode() bool
	LocationPowerSaveMode() power.LocationMode
	IsBackgroundRestricted() bool
	IsGNSSEnabled() bool
}

// Presenter shows a dialog to the user.
type Presenter interface {
	Present(ctx context.Context, d dialog.Dialog) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, d dialog.Dialog) error

// Present implements Presenter.
func (f PresenterFunc) Present(ctx context.Context, d dialog.Dialog) error {
	return f(ctx, d)
}

// Config holds the collaborators of a Guide.
type Config struct {
	Device device.Context
	State  PowerState

	// Environment is passed to the dialog builder. Nil means the app context
	// is unavailable and dialogs degrade to text only.
	Environment *dialog.Environment

	// Store holds the "don't show again" choice. It must be the only Store
	// for its backing file in this process.
	Store *settings.Store

	// Resolver and Strings default to the built-in registry and English texts.
	Resolver *manufacturer.Resolver
	Strings  dialog.Localizer

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Guide runs the checks and shows the matching dialogs.
// Guide is safe for concurrent use by multiple goroutines.
type Guide struct {
	device  device.Context
	state   PowerState
	env     *dialog.Environment
	store   *settings.Store
	builder *dialog.Builder
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	pending map[string]dialog.Dialog
}

// New returns a Guide for cfg.
func New(cfg Config) (*Guide, error) {
	if cfg.Store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.State == nil {
		return nil, ErrStateRequired
	}
	if err := cfg.Device.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device context: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Guide{
		device:  cfg.Device,
		state:   cfg.State,
		env:     cfg.Environment,
		store:   cfg.Store,
		builder: dialog.NewBuilder(cfg.Device, cfg.Resolver, cfg.Strings, logger),
		logger:  logger,
		metrics: cfg.Metrics,
		pending: make(map[string]dialog.Dialog),
	}, nil
}

// IsEnergySaferActive reports whether an energy saver mode which very likely
// stops GNSS is active right now.
func (g *Guide) IsEnergySaferActive() bool {
	return power.EnergySaferActive(g.state.IsPowerSaveMode(), g.state.LocationPowerSaveMode(), g.device.SDKInt)
}

// IsBackgroundProcessingRestricted reports whether background processing is
// restricted for the app. Always false below Android 9 where the flag does not exist.
func (g *Guide) IsBackgroundProcessingRestricted() bool {
	if g.device.SDKInt < power.SDKP {
		return false
	}
	return power.BackgroundProcessingRestricted(g.state.IsBackgroundRestricted())
}

// IsProblematicManufacturer reports whether the device vendor ships an app killer.
func (g *Guide) IsProblematicManufacturer() bool {
	return manufacturer.IsProblematic(g.device.Manufacturer)
}

// IsGNSSEnabled reports whether the satellite positioning provider is enabled.
func (g *Guide) IsGNSSEnabled() bool {
	return power.GNSSEnabled(g.state.IsGNSSEnabled())
}

// ShowEnergySaferWarning shows the energy saver warning if the check holds.
// Returns true if the dialog was shown.
func (g *Guide) ShowEnergySaferWarning(ctx context.Context, p Presenter) (bool, error) {
	if !g.presentable(p, "ShowEnergySaferWarning") {
		return false, nil
	}
	if g.device.SDKInt < power.SDKP || !g.IsEnergySaferActive() {
		return false, nil
	}
	return true, g.present(ctx, p, g.builder.EnergySaferWarning())
}

// ShowBackgroundRestrictionWarning shows the background restriction warning
// if the check holds. Returns true if the dialog was shown.
func (g *Guide) ShowBackgroundRestrictionWarning(ctx context.Context, p Presenter) (bool, error) {
	if !g.presentable(p, "ShowBackgroundRestrictionWarning") {
		return false, nil
	}
	if !g.IsBackgroundProcessingRestricted() {
		return false, nil
	}
	return true, g.present(ctx, p, g.builder.BackgroundRestrictionWarning(g.env))
}

// ShowProblematicManufacturerWarning shows the vendor warning on problematic
// devices, unless the user chose "don't show again". force ignores that choice,
// e.g. when the user asked for guidance explicitly.
// Returns true if the dialog was shown.
func (g *Guide) ShowProblematicManufacturerWarning(ctx context.Context, p Presenter, force bool, recipient string) (bool, error) {
	if !g.presentable(p, "ShowProblematicManufacturerWarning") {
		return false, nil
	}
	if !g.IsProblematicManufacturer() {
		return false, nil
	}

	shown, err := g.store.ManufacturerWarningShown(ctx)
	if err != nil {
		return false, fmt.Errorf("load manufacturer warning preference: %w", err)
	}
	if shown && !force {
		return false, nil
	}
	return true, g.present(ctx, p, g.builder.ProblematicManufacturerWarning(g.env, recipient))
}

// ShowGNSSWarning shows the location warning if GNSS is disabled.
// Returns true if the dialog was shown.
func (g *Guide) ShowGNSSWarning(ctx context.Context, p Presenter) (bool, error) {
	if !g.presentable(p, "ShowGNSSWarning") {
		return false, nil
	}
	if g.IsGNSSEnabled() {
		return false, nil
	}
	return true, g.present(ctx, p, g.builder.GNSSDisabledWarning())
}

// ShowNoGuidanceNeeded shows the "no problems found" dialog. There is no
// check, it is shown whenever a presenter is available.
func (g *Guide) ShowNoGuidanceNeeded(ctx context.Context, p Presenter, recipient string) (bool, error) {
	if !g.presentable(p, "ShowNoGuidanceNeeded") {
		return false, nil
	}
	return true, g.present(ctx, p, g.builder.NoGuidanceNeeded(g.env, recipient))
}

// FeedbackEmail builds the feedback email template with extraText as the
// heading of the user's message.
func (g *Guide) FeedbackEmail(extraText, recipient string) dialog.FeedbackEmail {
	return g.builder.FeedbackEmail(g.env, extraText, recipient)
}

// HandleAction processes a button press reported by the presenter and closes
// the dialog. "Don't show again" on the manufacturer warning is persisted.
func (g *Guide) HandleAction(ctx context.Context, dialogID string, action dialog.Action) error {
	g.mu.Lock()
	d, ok := g.pending[dialogID]
	if ok {
		delete(g.pending, dialogID)
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDialog, dialogID)
	}
	g.metrics.DialogAction(ctx, string(action))

	if action != dialog.ActionDontShowAgain || d.Kind != dialog.KindProblematicManufacturerWarning {
		return nil
	}
	if err := g.store.SetManufacturerWarningShown(ctx, true); err != nil {
		return fmt.Errorf("save manufacturer warning preference: %w", err)
	}
	g.logger.Info("manufacturer warning disabled by user")
	return nil
}

// Pending returns the number of dialogs shown and not yet answered.
func (g *Guide) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// DismissAll forgets all open dialogs, e.g. when the app pauses and the user
// may change settings before it resumes. Returns the number of dialogs dropped.
func (g *Guide) DismissAll() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.pending)
	g.pending = make(map[string]dialog.Dialog)
	return n
}

// presentable logs and returns false when there is nothing to present on.
func (g *Guide) presentable(p Presenter, op string) bool {
	if p == nil {
		g.logger.Warn("aborted, presenter is nil", "op", op)
		return false
	}
	return true
}

func (g *Guide) present(ctx context.Context, p Presenter, d dialog.Dialog) error {
	g.mu.Lock()
	g.pending[d.ID] = d
	g.mu.Unlock()

	if err := p.Present(ctx, d); err != nil {
		g.mu.Lock()
		delete(g.pending, d.ID)
		g.mu.Unlock()
		return fmt.Errorf("present %s: %w", d.Kind, err)
	}

	g.metrics.DialogShown(ctx, string(d.Kind))
	g.logger.Debug("dialog shown", "kind", d.Kind, "dialog_id", d.ID)
	return nil
}
