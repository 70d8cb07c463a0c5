package settings

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// The predecessor SharedPreferences file and key.
// Don't change these, they describe data written by old releases.
const (
	LegacyPreferencesName        = "AppPreferences"
	LegacyManufacturerWarningKey = "de.cyface.energy_settings.manufacturer_warning_shown"
)

// LegacySource reads the flat key-value store used before the versioned record.
// It is only consulted by the legacy migration and never written to.
type LegacySource interface {
	// Bool returns the value stored under key. found is false when the
	// store or the key does not exist.
	Bool(ctx context.Context, key string) (value bool, found bool, err error)
}

// MapSource is a LegacySource over values the host already read, e.g. from
// SharedPreferences on the Kotlin side.
type MapSource map[string]bool

// Bool implements LegacySource.
func (m MapSource) Bool(_ context.Context, key string) (bool, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

// SharedPreferencesPath returns the path of the legacy preferences XML file
// inside an app data directory.
func SharedPreferencesPath(dataDir string) string {
	return filepath.Join(dataDir, "shared_prefs", LegacyPreferencesName+".xml")
}

// SharedPreferencesFile reads an Android SharedPreferences XML file, e.g. one
// pulled from a device for inspection.
type SharedPreferencesFile struct {
	path string
}

// NewSharedPreferencesFile returns a source for the XML file at path.
func NewSharedPreferencesFile(path string) *SharedPreferencesFile {
	return &SharedPreferencesFile{path: path}
}

// sharedPreferencesXML is the <map> root written by SharedPreferencesImpl.
type sharedPreferencesXML struct {
	XMLName  xml.Name       `xml:"map"`
	Booleans []preferenceKV `xml:"boolean"`
}

type preferenceKV struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Bool implements LegacySource. A missing file is reported as not found.
func (f *SharedPreferencesFile) Bool(ctx context.Context, key string) (bool, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, false, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("read shared preferences: %w", err)
	}

	var prefs sharedPreferencesXML
	if err := xml.Unmarshal(data, &prefs); err != nil {
		return false, false, fmt.Errorf("parse shared preferences %s: %w", f.path, err)
	}

	for _, kv := range prefs.Booleans {
		if kv.Name != key {
			continue
		}
		v, err := strconv.ParseBool(kv.Value)
		if err != nil {
			return false, false, fmt.Errorf("shared preference %q: %w", key, err)
		}
		return v, true, nil
	}
	return false, false, nil
}
