package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/settings"
)

// fakePlatform implements Platform for testing.
type fakePlatform struct {
	mu           sync.Mutex
	powerSave    bool
	locationMode int
	restricted   bool
	gnss         bool
	launchable   []intent.Target
	queried      []intent.Target
	versionErr   error
}

func (f *fakePlatform) IsPowerSaveMode() bool        { return f.powerSave }
func (f *fakePlatform) LocationPowerSaveMode() int   { return f.locationMode }
func (f *fakePlatform) IsBackgroundRestricted() bool { return f.restricted }
func (f *fakePlatform) IsGnssEnabled() bool          { return f.gnss }

func (f *fakePlatform) CanLaunch(targetJSON string) bool {
	t, err := intent.Parse(targetJSON)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, t)
	for _, l := range f.launchable {
		if l.Equal(t) {
			return true
		}
	}
	return false
}

func (f *fakePlatform) AppVersion() (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return "3.2.1", nil
}

func (f *fakePlatform) queries() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queried)
}

func testConfig(t *testing.T, manufacturer, backend string) string {
	t.Helper()
	cfg := Config{
		DataPath:     t.TempDir(),
		PackageName:  "de.cyface.app",
		SDKInt:       31,
		Manufacturer: manufacturer,
		Model:        "Model X",
		Device:       "devx",
		OSRelease:    "12",
		StoreBackend: backend,
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	return string(data)
}

func initForTest(t *testing.T, configJSON string, p Platform, legacy LegacyPreferences) {
	t.Helper()
	resetForTesting()
	t.Cleanup(resetForTesting)
	if errMsg := Init(configJSON, p, legacy); errMsg != "" {
		t.Fatalf("Init: %s", errMsg)
	}
}

func lastDialog(t *testing.T, p *stubPresenter) dialog.Dialog {
	t.Helper()
	if len(p.received) == 0 {
		t.Fatal("no dialog presented")
	}
	var d dialog.Dialog
	if err := json.Unmarshal([]byte(p.received[len(p.received)-1]), &d); err != nil {
		t.Fatalf("invalid dialog JSON: %v", err)
	}
	return d
}

func TestInit_InvalidConfig(t *testing.T) {
	resetForTesting()
	defer resetForTesting()

	cb := newMockCallback()
	RegisterErrorCallback(cb)

	errMsg := Init(`{"package_name": "de.cyface.app"}`, &fakePlatform{}, nil)
	if !strings.Contains(errMsg, "data_path is required") {
		t.Errorf("Init error = %q", errMsg)
	}
	if IsInitialized() {
		t.Error("initialized despite invalid config")
	}
	if !cb.waitForCalls(1, time.Second) {
		t.Fatal("callback not invoked")
	}
	if calls := cb.getCalls(); calls[0].Code != ErrCodeInvalidConfig || calls[0].Severity != int(SeverityFatal) {
		t.Errorf("unexpected callback %+v", calls[0])
	}
}

func TestInit_RequiresPlatform(t *testing.T) {
	resetForTesting()
	defer resetForTesting()

	if errMsg := Init(testConfig(t, "samsung", ""), nil, nil); errMsg == "" {
		t.Error("expected error without platform")
	}
}

func TestNotInitialized(t *testing.T) {
	resetForTesting()
	defer resetForTesting()

	cb := newMockCallback()
	RegisterErrorCallback(cb)

	if errMsg := OnDialogAction("x", "open_settings"); !strings.Contains(errMsg, "not initialized") {
		t.Errorf("OnDialogAction error = %q", errMsg)
	}
	if SetManufacturerWarningShown(true) == "" {
		t.Error("SetManufacturerWarningShown should fail")
	}
	if IsEnergySaferActive() || ManufacturerWarningShown() || ShowGnssWarningDialog(&stubPresenter{}) {
		t.Error("queries should return false when not initialized")
	}
	if GenerateFeedbackEmail("x", "y") != "" {
		t.Error("GenerateFeedbackEmail should return empty string")
	}
	if DismissAllDialogs() != 0 || Close() != "" {
		t.Error("DismissAllDialogs and Close should be no-ops")
	}

	if !cb.waitForCalls(1, time.Second) {
		t.Fatal("callback not invoked")
	}
	if calls := cb.getCalls(); calls[0].Code != ErrCodeNotInitialized {
		t.Errorf("Code = %q, want %q", calls[0].Code, ErrCodeNotInitialized)
	}
}

func TestPredicates(t *testing.T) {
	p := &fakePlatform{powerSave: true, locationMode: 1, restricted: true, gnss: false}
	initForTest(t, testConfig(t, "HUAWEI", ""), p, nil)

	if !IsEnergySaferActive() {
		t.Error("IsEnergySaferActive = false, want true")
	}
	if !IsBackgroundProcessingRestricted() {
		t.Error("IsBackgroundProcessingRestricted = false, want true")
	}
	if !IsProblematicManufacturer() {
		t.Error("IsProblematicManufacturer = false, want true")
	}
	if IsGnssEnabled() {
		t.Error("IsGnssEnabled = true, want false")
	}
}

func TestProblematicManufacturerFlow(t *testing.T) {
	target := intent.Component("com.samsung.android.sm", "com.samsung.android.sm.ui.battery.BatteryActivity")
	p := &fakePlatform{launchable: []intent.Target{target}}
	cfg := testConfig(t, "samsung", "")
	initForTest(t, cfg, p, nil)

	presenter := &stubPresenter{}
	if !ShowProblematicManufacturerDialog(presenter, false, "support@example.com") {
		t.Fatal("dialog not shown")
	}
	d := lastDialog(t, presenter)
	if d.Kind != dialog.KindProblematicManufacturerWarning {
		t.Errorf("Kind = %q", d.Kind)
	}
	if d.Positive == nil || d.Positive.Target == nil || !d.Positive.Target.Equal(target) {
		t.Errorf("positive button should open %s, got %+v", target, d.Positive)
	}
	if d.Negative == nil || d.Negative.Action != dialog.ActionDontShowAgain {
		t.Fatalf("negative button should be don't show again, got %+v", d.Negative)
	}

	if errMsg := OnDialogAction(d.ID, string(d.Negative.Action)); errMsg != "" {
		t.Fatalf("OnDialogAction: %s", errMsg)
	}
	if !ManufacturerWarningShown() {
		t.Error("flag not set after don't show again")
	}
	if ShowProblematicManufacturerDialog(presenter, false, "support@example.com") {
		t.Error("dialog shown again after don't show again")
	}
	if !ShowProblematicManufacturerDialog(presenter, true, "support@example.com") {
		t.Error("forced dialog not shown")
	}

	var c Config
	if err := json.Unmarshal([]byte(cfg), &c); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	if _, err := os.Stat(settings.DataStorePath(c.DataPath)); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestProblematicManufacturer_NotProblematic(t *testing.T) {
	p := &fakePlatform{}
	initForTest(t, testConfig(t, "Google", ""), p, nil)

	presenter := &stubPresenter{}
	if ShowProblematicManufacturerDialog(presenter, true, "support@example.com") {
		t.Error("dialog shown for unproblematic manufacturer")
	}
	if p.queries() != 0 {
		t.Errorf("platform queried %d times, want 0", p.queries())
	}
}

func TestLegacyImport(t *testing.T) {
	legacy := stubPrefs{settings.LegacyManufacturerWarningKey: true}
	initForTest(t, testConfig(t, "xiaomi", ""), &fakePlatform{}, legacy)

	if !ManufacturerWarningShown() {
		t.Error("legacy choice not imported")
	}
	if ShowProblematicManufacturerDialog(&stubPresenter{}, false, "") {
		t.Error("dialog shown although the legacy choice was don't show again")
	}
}

func TestSQLiteBackend_Persists(t *testing.T) {
	cfg := testConfig(t, "sony", StoreBackendSQLite)
	initForTest(t, cfg, &fakePlatform{}, nil)

	if errMsg := SetManufacturerWarningShown(true); errMsg != "" {
		t.Fatalf("SetManufacturerWarningShown: %s", errMsg)
	}
	if errMsg := Close(); errMsg != "" {
		t.Fatalf("Close: %s", errMsg)
	}
	if IsInitialized() {
		t.Error("still initialized after Close")
	}

	if errMsg := Init(cfg, &fakePlatform{}, nil); errMsg != "" {
		t.Fatalf("re-Init: %s", errMsg)
	}
	if !ManufacturerWarningShown() {
		t.Error("flag lost after reopening the database")
	}
}

func TestInit_ClosesPreviousInstance(t *testing.T) {
	for _, backend := range []string{StoreBackendFile, StoreBackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, "samsung", backend)
			initForTest(t, cfg, &fakePlatform{}, nil)
			previous := getInstance()

			if errMsg := Init(cfg, &fakePlatform{}, nil); errMsg != "" {
				t.Fatalf("re-Init: %s", errMsg)
			}
			if getInstance() == previous {
				t.Fatal("Init did not replace the instance")
			}

			ctx := context.Background()
			if err := previous.store.SetManufacturerWarningShown(ctx, true); !errors.Is(err, settings.ErrClosed) {
				t.Fatalf("write through replaced store: err = %v, want ErrClosed", err)
			}
			if ManufacturerWarningShown() {
				t.Error("replaced store changed the flag")
			}

			if errMsg := SetManufacturerWarningShown(true); errMsg != "" {
				t.Fatalf("SetManufacturerWarningShown: %s", errMsg)
			}
			if errMsg := Close(); errMsg != "" {
				t.Fatalf("Close: %s", errMsg)
			}
			if errMsg := Init(cfg, &fakePlatform{}, nil); errMsg != "" {
				t.Fatalf("Init after Close: %s", errMsg)
			}
			if !ManufacturerWarningShown() {
				t.Error("flag written by the live store was lost")
			}
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(testConfig(t, "Google", "")), &cfg); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	cfg.EnableMetrics = true
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	initForTest(t, string(data), &fakePlatform{gnss: false}, nil)

	if !ShowGnssWarningDialog(&stubPresenter{}) {
		t.Fatal("GNSS warning not shown")
	}
	if errMsg := SetManufacturerWarningShown(true); errMsg != "" {
		t.Fatalf("SetManufacturerWarningShown: %s", errMsg)
	}

	path := filepath.Join(t.TempDir(), "energy_settings.prom")
	if errMsg := WriteMetrics(path); errMsg != "" {
		t.Fatalf("WriteMetrics: %s", errMsg)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, name := range []string{"dialogs_shown", "store_writes"} {
		if !strings.Contains(string(out), name) {
			t.Errorf("metrics miss %s:\n%s", name, out)
		}
	}
}

func TestWriteMetrics_Disabled(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{}, nil)

	cb := newMockCallback()
	RegisterErrorCallback(cb)

	path := filepath.Join(t.TempDir(), "energy_settings.prom")
	if errMsg := WriteMetrics(path); !strings.Contains(errMsg, "enable_metrics") {
		t.Errorf("WriteMetrics error = %q", errMsg)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("metrics file written while disabled: %v", err)
	}
	if !cb.waitForCalls(1, time.Second) {
		t.Fatal("callback not invoked")
	}
	if calls := cb.getCalls(); calls[0].Code != ErrCodeInvalidConfig || calls[0].Severity != int(SeverityWarning) {
		t.Errorf("unexpected callback %+v", calls[0])
	}
}

func TestShowDialogs(t *testing.T) {
	p := &fakePlatform{powerSave: true, locationMode: 2, restricted: true, gnss: false}
	initForTest(t, testConfig(t, "Google", ""), p, nil)

	presenter := &stubPresenter{}
	checks := []struct {
		name string
		show func() bool
		kind dialog.Kind
	}{
		{"energy safer", func() bool { return ShowEnergySaferWarningDialog(presenter) }, dialog.KindEnergySaferWarning},
		{"background", func() bool { return ShowBackgroundProcessingWarningDialog(presenter) }, dialog.KindBackgroundRestrictionWarning},
		{"gnss", func() bool { return ShowGnssWarningDialog(presenter) }, dialog.KindGNSSDisabledWarning},
		{"no guidance", func() bool { return ShowNoGuidanceNeededDialog(presenter, "support@example.com") }, dialog.KindNoGuidanceNeeded},
	}
	for _, c := range checks {
		if !c.show() {
			t.Errorf("%s: dialog not shown", c.name)
			continue
		}
		if got := lastDialog(t, presenter).Kind; got != c.kind {
			t.Errorf("%s: Kind = %q, want %q", c.name, got, c.kind)
		}
	}

	if n := DismissAllDialogs(); n != len(checks) {
		t.Errorf("DismissAllDialogs = %d, want %d", n, len(checks))
	}
	if ShowGnssWarningDialog(nil) {
		t.Error("dialog shown without presenter")
	}
}

func TestPresenterFailure(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{gnss: false}, nil)

	cb := newMockCallback()
	RegisterErrorCallback(cb)

	if ShowGnssWarningDialog(&stubPresenter{err: errors.New("activity finishing")}) {
		t.Error("failed presentation reported as shown")
	}
	if !cb.waitForCalls(1, time.Second) {
		t.Fatal("callback not invoked")
	}
	if calls := cb.getCalls(); calls[0].Code != ErrCodePresenterError {
		t.Errorf("Code = %q, want %q", calls[0].Code, ErrCodePresenterError)
	}
}

func TestOnDialogAction_UnknownDialog(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{}, nil)

	cb := newMockCallback()
	RegisterErrorCallback(cb)

	if errMsg := OnDialogAction("does-not-exist", "open_settings"); !strings.Contains(errMsg, "unknown dialog") {
		t.Errorf("OnDialogAction error = %q", errMsg)
	}
	if !cb.waitForCalls(1, time.Second) {
		t.Fatal("callback not invoked")
	}
	if calls := cb.getCalls(); calls[0].Code != ErrCodeUnknownDialog {
		t.Errorf("Code = %q, want %q", calls[0].Code, ErrCodeUnknownDialog)
	}
}

func TestGenerateFeedbackEmail(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{}, nil)

	out := GenerateFeedbackEmail("What happened?", "support@example.com")
	var email dialog.FeedbackEmail
	if err := json.Unmarshal([]byte(out), &email); err != nil {
		t.Fatalf("invalid email JSON %q: %v", out, err)
	}
	if email.Subject != "Cyface "+dialog.English[dialog.FeedbackEmailSubject]+" (3.2.1-31)" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if !strings.Contains(email.Body, "Google, Model X (devx)") {
		t.Errorf("Body = %q", email.Body)
	}
	if !strings.HasSuffix(email.Body, "What happened?:\n\n\n") {
		t.Errorf("Body = %q", email.Body)
	}
}

func TestGenerateFeedbackEmail_UnknownVersion(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{versionErr: errors.New("name not found")}, nil)

	var email dialog.FeedbackEmail
	if err := json.Unmarshal([]byte(GenerateFeedbackEmail("x", "y")), &email); err != nil {
		t.Fatalf("invalid email JSON: %v", err)
	}
	if !strings.Contains(email.Subject, "(N/A-31)") {
		t.Errorf("Subject = %q", email.Subject)
	}
}

func TestSetDebugMode(t *testing.T) {
	initForTest(t, testConfig(t, "Google", ""), &fakePlatform{}, nil)

	sink := &mockSink{}
	RegisterLogSink(sink)

	SetDebugMode(true)
	ShowGnssWarningDialog(&stubPresenter{})
	if !strings.Contains(sink.joined(), "ShowGnssWarningDialog") {
		t.Errorf("expected debug output, got %q", sink.joined())
	}
}
