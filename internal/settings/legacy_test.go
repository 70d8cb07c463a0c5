package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sharedPrefsXML = `<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<map>
    <string name="de.cyface.app.some_string">value</string>
    <boolean name="de.cyface.energy_settings.manufacturer_warning_shown" value="true" />
    <boolean name="other_flag" value="false" />
</map>
`

func writePrefs(t *testing.T, dataDir, content string) string {
	t.Helper()
	path := SharedPreferencesPath(dataDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	return path
}

func TestSharedPreferencesFile_ReadsBoolean(t *testing.T) {
	path := writePrefs(t, t.TempDir(), sharedPrefsXML)
	src := NewSharedPreferencesFile(path)
	ctx := context.Background()

	v, found, err := src.Bool(ctx, LegacyManufacturerWarningKey)
	if err != nil {
		t.Fatalf("Bool: %v", err)
	}
	if !found || !v {
		t.Fatalf("expected true/found, got %v/%v", v, found)
	}

	v, found, err = src.Bool(ctx, "other_flag")
	if err != nil || !found || v {
		t.Fatalf("expected false/found, got %v/%v (err=%v)", v, found, err)
	}

	_, found, err = src.Bool(ctx, "missing")
	if err != nil || found {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}
}

func TestSharedPreferencesFile_MissingFile(t *testing.T) {
	src := NewSharedPreferencesFile(SharedPreferencesPath(t.TempDir()))
	_, found, err := src.Bool(context.Background(), LegacyManufacturerWarningKey)
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if found {
		t.Fatal("missing file must report not found")
	}
}

func TestSharedPreferencesFile_Malformed(t *testing.T) {
	path := writePrefs(t, t.TempDir(), "<map><boolean name=")
	if _, _, err := NewSharedPreferencesFile(path).Bool(context.Background(), LegacyManufacturerWarningKey); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSharedPreferencesFile_LeftUntouchedByMigration(t *testing.T) {
	dataDir := t.TempDir()
	path := writePrefs(t, dataDir, sharedPrefsXML)

	store := newFileStore(t, DataStorePath(dataDir), NewSharedPreferencesFile(path))
	shown, err := store.ManufacturerWarningShown(context.Background())
	if err != nil {
		t.Fatalf("ManufacturerWarningShown: %v", err)
	}
	if !shown {
		t.Fatal("expected imported flag")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("legacy file must still exist: %v", err)
	}
	if string(data) != sharedPrefsXML {
		t.Fatal("legacy file must not be modified")
	}
}
