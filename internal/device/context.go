// Package device holds the device and app facts the native wrapper reports
// once at start-up.
//
// They feed the problematic-manufacturer check, the SDK-level gates of the
// dialogs and the header of the feedback email template.
package device

import (
	"fmt"
	"log/slog"
	"strings"
)

// NotAvailable replaces values that could not be looked up.
const NotAvailable = "N/A"

// Context describes the device the library runs on.
// Fields are populated by the native wrapper from android.os.Build.
type Context struct {
	// Manufacturer is Build.MANUFACTURER (e.g. "HUAWEI").
	Manufacturer string `json:"manufacturer"`

	// Model is Build.MODEL (e.g. "P smart 2019").
	Model string `json:"model"`

	// Device is Build.DEVICE, the industrial design name.
	Device string `json:"device"`

	// OSRelease is Build.VERSION.RELEASE (e.g. "10").
	OSRelease string `json:"os_release"`

	// SDKInt is Build.VERSION.SDK_INT.
	SDKInt int `json:"sdk_int"`
}

// Validate checks the fields the checks depend on.
func (c Context) Validate() error {
	if c.SDKInt <= 0 {
		return fmt.Errorf("sdk_int must be positive, got %d", c.SDKInt)
	}
	return nil
}

// Description renders "manufacturer, model (device)".
func (c Context) Description() string {
	return fmt.Sprintf("%s, %s (%s)", c.Manufacturer, c.Model, c.Device)
}

// Android renders "release (API n)".
func (c Context) Android() string {
	return fmt.Sprintf("%s (API %d)", c.OSRelease, c.SDKInt)
}

// VersionLookup returns the installed app's version name.
type VersionLookup func() (string, error)

// AppVersion calls lookup and falls back to NotAvailable when the version
// cannot be identified. A failing lookup is never fatal.
func AppVersion(lookup VersionLookup, logger *slog.Logger) string {
	if lookup == nil {
		return NotAvailable
	}
	version, err := lookup()
	if err != nil {
		logger.Error("app version could not be identified", "error", err)
		return NotAvailable
	}
	if strings.TrimSpace(version) == "" {
		return NotAvailable
	}
	return version
}
