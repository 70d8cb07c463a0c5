package mobile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/power"
)

// parseConfig unmarshals a JSON string into a validated Config.
func parseConfig(jsonStr string) (*Config, error) {
	return configFromJSON(jsonStr)
}

// serializeDialog marshals a dialog for the native presenter.
func serializeDialog(d dialog.Dialog) (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to serialize dialog: %w", err)
	}
	return string(data), nil
}

// serializeEmail marshals a feedback email template.
func serializeEmail(email dialog.FeedbackEmail) (string, error) {
	data, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to serialize feedback email: %w", err)
	}
	return string(data), nil
}

// localizer returns the English texts with the configured app name.
func localizer(appName string) dialog.Strings {
	s := make(dialog.Strings, len(dialog.English)+1)
	for id, text := range dialog.English {
		s[id] = text
	}
	s[dialog.AppName] = appName
	return s
}

// platformState adapts Platform to guidance.PowerState.
type platformState struct {
	platform Platform
}

func (p platformState) IsPowerSaveMode() bool {
	return p.platform.IsPowerSaveMode()
}

func (p platformState) LocationPowerSaveMode() power.LocationMode {
	return power.LocationMode(p.platform.LocationPowerSaveMode())
}

func (p platformState) IsBackgroundRestricted() bool {
	return p.platform.IsBackgroundRestricted()
}

func (p platformState) IsGNSSEnabled() bool {
	return p.platform.IsGnssEnabled()
}

// canLaunch serializes t and asks the platform. A target that cannot be
// serialized is treated as not launchable.
func (p platformState) canLaunch(t intent.Target) bool {
	targetJSON, err := t.MarshalString()
	if err != nil {
		debugLog("CanLaunch: %s", err.Error())
		return false
	}
	return p.platform.CanLaunch(targetJSON)
}

// presenterAdapter adapts DialogPresenter to guidance.Presenter.
type presenterAdapter struct {
	presenter DialogPresenter
}

func (a presenterAdapter) Present(_ context.Context, d dialog.Dialog) error {
	dialogJSON, err := serializeDialog(d)
	if err != nil {
		return err
	}
	if err := a.presenter.Present(dialogJSON); err != nil {
		return fmt.Errorf("%w: %v", errPresenter, err)
	}
	return nil
}

// legacyAdapter adapts LegacyPreferences to settings.LegacySource.
type legacyAdapter struct {
	prefs LegacyPreferences
}

func (a legacyAdapter) Bool(_ context.Context, key string) (bool, bool, error) {
	if !a.prefs.Contains(key) {
		return false, false, nil
	}
	return a.prefs.GetBoolean(key, false), true, nil
}
