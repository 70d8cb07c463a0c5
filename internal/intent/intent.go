// Package intent describes settings screens the host platform can launch.
//
// A Target is handed to the native layer as-is. Nothing in the Go core inspects
// its fields beyond building and comparing them; the Android wrapper turns it
// into an android.content.Intent and asks the package manager whether it resolves.
package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Android settings actions used by the warning dialogs.
const (
	ActionBatterySaverSettings       = "android.settings.BATTERY_SAVER_SETTINGS"
	ActionApplicationDetailsSettings = "android.settings.APPLICATION_DETAILS_SETTINGS"
	ActionLocationSourceSettings     = "android.settings.LOCATION_SOURCE_SETTINGS"

	CategoryDefault = "android.intent.category.DEFAULT"
)

// Target is an opaque reference to a launchable platform component.
type Target struct {
	// Package and Class name an explicit component (e.g. a vendor settings activity).
	Package string `json:"package,omitempty"`
	Class   string `json:"class,omitempty"`

	// Action names an implicit intent action.
	Action string `json:"action,omitempty"`

	// Categories are added to the intent before resolution.
	Categories []string `json:"categories,omitempty"`

	// Data is the intent data URI (e.g. "package:de.cyface.app").
	Data string `json:"data,omitempty"`
}

// Component returns an explicit component target.
func Component(pkg, class string) Target {
	return Target{Package: pkg, Class: class}
}

// Action returns an implicit target for the given action and categories.
func Action(action string, categories ...string) Target {
	return Target{Action: action, Categories: categories}
}

// ApplicationDetails returns the app-info settings target for packageName.
func ApplicationDetails(packageName string) Target {
	return Target{
		Action: ActionApplicationDetailsSettings,
		Data:   "package:" + packageName,
	}
}

// Equal reports whether two targets reference the same component or action.
func (t Target) Equal(other Target) bool {
	if t.Package != other.Package || t.Class != other.Class ||
		t.Action != other.Action || t.Data != other.Data {
		return false
	}
	if len(t.Categories) != len(other.Categories) {
		return false
	}
	for i := range t.Categories {
		if t.Categories[i] != other.Categories[i] {
			return false
		}
	}
	return true
}

// String renders the target in a compact, log-friendly form.
func (t Target) String() string {
	var b strings.Builder
	if t.Package != "" || t.Class != "" {
		fmt.Fprintf(&b, "%s/%s", t.Package, t.Class)
	}
	if t.Action != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Action)
	}
	if len(t.Categories) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(t.Categories, ","))
	}
	if t.Data != "" {
		fmt.Fprintf(&b, " %s", t.Data)
	}
	return b.String()
}

// MarshalString serializes the target for the native bridge.
func (t Target) MarshalString() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal target: %w", err)
	}
	return string(data), nil
}

// Parse decodes a target previously produced by MarshalString.
func Parse(s string) (Target, error) {
	var t Target
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return Target{}, fmt.Errorf("invalid target JSON: %w", err)
	}
	if t.Action == "" && (t.Package == "" || t.Class == "") {
		return Target{}, fmt.Errorf("target needs an action or a package/class pair")
	}
	return t, nil
}
