package mobile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/power"
)

type stubPresenter struct {
	received []string
	err      error
}

func (s *stubPresenter) Present(dialogJSON string) error {
	if s.err != nil {
		return s.err
	}
	s.received = append(s.received, dialogJSON)
	return nil
}

type stubPrefs map[string]bool

func (s stubPrefs) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

func (s stubPrefs) GetBoolean(key string, defValue bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return defValue
}

func TestSerializeDialog(t *testing.T) {
	target := intent.Action(intent.ActionLocationSourceSettings)
	d := dialog.Dialog{
		ID:       "abc",
		Kind:     dialog.KindGNSSDisabledWarning,
		Title:    dialog.GNSSDisabledWarningTitle,
		Message:  dialog.GNSSDisabledWarning,
		Positive: &dialog.Button{Label: dialog.ButtonOpenSettings, Action: dialog.ActionOpenSettings, Target: &target},
	}

	out, err := serializeDialog(d)
	if err != nil {
		t.Fatalf("serializeDialog: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["id"] != "abc" || decoded["kind"] != "gnss_disabled_warning" {
		t.Errorf("unexpected JSON %s", out)
	}
	if _, ok := decoded["negative"]; ok {
		t.Error("missing negative button should be omitted")
	}
	positive, ok := decoded["positive"].(map[string]interface{})
	if !ok {
		t.Fatalf("positive button missing in %s", out)
	}
	tgt, ok := positive["target"].(map[string]interface{})
	if !ok || tgt["action"] != intent.ActionLocationSourceSettings {
		t.Errorf("unexpected target %v", positive["target"])
	}
}

func TestLocalizer_AppName(t *testing.T) {
	loc := localizer("Cyface Digural")
	if got := loc.String(dialog.AppName); got != "Cyface Digural" {
		t.Errorf("app name = %q, want %q", got, "Cyface Digural")
	}
	if got := loc.String(dialog.FeedbackEmailSubject); got != dialog.English[dialog.FeedbackEmailSubject] {
		t.Errorf("subject text = %q", got)
	}
	if dialog.English[dialog.AppName] == "Cyface Digural" {
		t.Error("localizer modified the shared English texts")
	}
}

func TestPlatformState(t *testing.T) {
	p := &fakePlatform{powerSave: true, locationMode: 2, restricted: true, gnss: true}
	state := platformState{platform: p}

	if !state.IsPowerSaveMode() || !state.IsBackgroundRestricted() || !state.IsGNSSEnabled() {
		t.Error("flags not passed through")
	}
	if state.LocationPowerSaveMode() != power.LocationModeAllDisabledWhenScreenOff {
		t.Errorf("location mode = %v", state.LocationPowerSaveMode())
	}

	want := intent.Component("com.miui.securitycenter", "com.miui.permcenter.autostart.AutoStartManagementActivity")
	p.launchable = []intent.Target{want}
	if !state.canLaunch(want) {
		t.Error("expected launchable target")
	}
	if state.canLaunch(intent.Action(intent.ActionBatterySaverSettings)) {
		t.Error("unexpected launchable target")
	}
}

func TestPresenterAdapter(t *testing.T) {
	stub := &stubPresenter{}
	a := presenterAdapter{presenter: stub}
	if err := a.Present(context.Background(), dialog.Dialog{ID: "x", Kind: dialog.KindNoGuidanceNeeded}); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if len(stub.received) != 1 {
		t.Fatalf("expected 1 dialog, got %d", len(stub.received))
	}

	stub.err = errors.New("activity finishing")
	err := a.Present(context.Background(), dialog.Dialog{ID: "y"})
	if !errors.Is(err, errPresenter) {
		t.Errorf("expected errPresenter, got %v", err)
	}
}

func TestLegacyAdapter(t *testing.T) {
	a := legacyAdapter{prefs: stubPrefs{"set": true}}

	v, found, err := a.Bool(context.Background(), "set")
	if err != nil || !found || !v {
		t.Errorf("Bool(set) = %v, %v, %v", v, found, err)
	}
	_, found, err = a.Bool(context.Background(), "missing")
	if err != nil || found {
		t.Errorf("Bool(missing) found=%v err=%v", found, err)
	}
}
