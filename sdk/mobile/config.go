package mobile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cyface-de/energy-settings/internal/device"
)

// Config holds the library configuration.
// All fields use gomobile-compatible types (string, int, bool).
// JSON tags enable initialization from serialized config strings.
type Config struct {
	// DataPath is the app's data directory, Context.getDataDir (required).
	DataPath string `json:"data_path"`

	// PackageName is the app's package, used for its app-info screen (required).
	PackageName string `json:"package_name"`

	// SDKInt is Build.VERSION.SDK_INT (required).
	SDKInt int `json:"sdk_int"`

	// Manufacturer is Build.MANUFACTURER.
	Manufacturer string `json:"manufacturer,omitempty"`

	// Model is Build.MODEL.
	Model string `json:"model,omitempty"`

	// Device is Build.DEVICE.
	Device string `json:"device,omitempty"`

	// OSRelease is Build.VERSION.RELEASE.
	OSRelease string `json:"os_release,omitempty"`

	// AppName is the name shown in feedback email subjects (default: "Cyface").
	AppName string `json:"app_name,omitempty"`

	// StoreBackend selects where the settings record lives: "file" keeps the
	// DataStore file layout, "sqlite" a database under databases/ (default: "file").
	StoreBackend string `json:"store_backend,omitempty"`

	// DebugMode enables verbose logging (default: false).
	DebugMode bool `json:"debug_mode,omitempty"`

	// EnableMetrics records store and dialog counters which WriteMetrics
	// dumps in the Prometheus text format (default: false).
	EnableMetrics bool `json:"enable_metrics,omitempty"`
}

// Store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendSQLite = "sqlite"
)

// Default configuration values.
const (
	DefaultAppName      = "Cyface"
	DefaultStoreBackend = StoreBackendFile
)

// validate checks that required fields are set and values are valid.
// Returns empty string on success, error message on failure.
func (c *Config) validate() string {
	if strings.TrimSpace(c.DataPath) == "" {
		return "data_path is required"
	}
	if strings.TrimSpace(c.PackageName) == "" {
		return "package_name is required"
	}
	if c.SDKInt <= 0 {
		return "sdk_int must be positive"
	}

	switch c.StoreBackend {
	case "", StoreBackendFile, StoreBackendSQLite:
	default:
		return fmt.Sprintf("store_backend must be %q or %q, got %q", StoreBackendFile, StoreBackendSQLite, c.StoreBackend)
	}

	return ""
}

// applyDefaults fills in default values for unset optional fields.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.AppName) == "" {
		c.AppName = DefaultAppName
	}
	if c.StoreBackend == "" {
		c.StoreBackend = DefaultStoreBackend
	}
}

// deviceContext returns the device description used by checks and feedback.
func (c *Config) deviceContext() device.Context {
	return device.Context{
		Manufacturer: c.Manufacturer,
		Model:        c.Model,
		Device:       c.Device,
		OSRelease:    c.OSRelease,
		SDKInt:       c.SDKInt,
	}
}

// configFromJSON parses a JSON config string and returns a validated Config.
func configFromJSON(jsonStr string) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return nil, fmt.Errorf("invalid config JSON: %w", err)
	}

	if errMsg := cfg.validate(); errMsg != "" {
		return nil, fmt.Errorf("config validation failed: %s", errMsg)
	}

	cfg.applyDefaults()
	return &cfg, nil
}
