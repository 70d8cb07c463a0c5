package device

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestContextFormatting(t *testing.T) {
	c := Context{
		Manufacturer: "HUAWEI",
		Model:        "POT-LX1",
		Device:       "HWPOT-H",
		OSRelease:    "10",
		SDKInt:       29,
	}
	if got := c.Description(); got != "HUAWEI, POT-LX1 (HWPOT-H)" {
		t.Errorf("Description() = %q", got)
	}
	if got := c.Android(); got != "10 (API 29)" {
		t.Errorf("Android() = %q", got)
	}
}

func TestContextValidate(t *testing.T) {
	if err := (Context{}).Validate(); err == nil {
		t.Fatal("zero sdk_int must be rejected")
	}
	if err := (Context{SDKInt: 21}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAppVersion(t *testing.T) {
	logger := discardLogger()

	tests := []struct {
		name   string
		lookup VersionLookup
		want   string
	}{
		{"ok", func() (string, error) { return "3.2.1", nil }, "3.2.1"},
		{"error", func() (string, error) { return "", errors.New("name not found") }, NotAvailable},
		{"empty", func() (string, error) { return "  ", nil }, NotAvailable},
		{"nil", nil, NotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppVersion(tt.lookup, logger); got != tt.want {
				t.Fatalf("AppVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
