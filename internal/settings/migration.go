package settings

import (
	"context"
	"fmt"
	"log/slog"
)

// Migration upgrades a record. A Store runs each migration for as long as
// ShouldMigrate reports true, so every Migrate call must make progress.
type Migration interface {
	// ShouldMigrate reports whether Migrate must run for current.
	ShouldMigrate(ctx context.Context, current Record) (bool, error)

	// Migrate returns the upgraded record.
	Migrate(ctx context.Context, current Record) (Record, error)

	// CleanUp runs once after all migrations succeeded and the result was persisted.
	CleanUp(ctx context.Context) error
}

// DefaultMigrations returns the chain used by the library: the import from
// the legacy preferences (when legacy is not nil) followed by the schema steps.
func DefaultMigrations(legacy LegacySource, logger *slog.Logger) []Migration {
	var ms []Migration
	if legacy != nil {
		ms = append(ms, &legacyMigration{source: legacy, logger: logger})
	}
	return append(ms, newVersionMigration(CurrentVersion, logger))
}

// legacyMigration imports the flag from the predecessor SharedPreferences.
//
// It writes version 1 directly, the schema the last SharedPreferences release
// corresponds to, so the version steps continue from there instead of
// replacing the imported value with the 0 -> 1 defaults.
type legacyMigration struct {
	source LegacySource
	logger *slog.Logger
}

// legacyVersion is the schema version a record imported from the legacy store starts at.
const legacyVersion int32 = 1

func (m *legacyMigration) ShouldMigrate(ctx context.Context, current Record) (bool, error) {
	if current.Version != 0 {
		return false, nil
	}
	_, found, err := m.source.Bool(ctx, LegacyManufacturerWarningKey)
	if err != nil {
		return false, fmt.Errorf("check legacy preferences: %w", err)
	}
	return found, nil
}

func (m *legacyMigration) Migrate(ctx context.Context, current Record) (Record, error) {
	shown, _, err := m.source.Bool(ctx, LegacyManufacturerWarningKey)
	if err != nil {
		return current, fmt.Errorf("read legacy preferences: %w", err)
	}
	m.logger.Info("migrating settings from shared preferences",
		"to_version", legacyVersion,
		"manufacturer_warning_shown", shown,
	)
	current.Version = legacyVersion
	current.ManufacturerWarningShown = shown
	return current, nil
}

// CleanUp leaves the legacy store untouched. It is superseded, not deleted.
func (m *legacyMigration) CleanUp(context.Context) error {
	return nil
}

// versionMigration moves a record one schema version per Migrate call until
// it reaches target.
type versionMigration struct {
	target int32
	logger *slog.Logger
}

func newVersionMigration(target int32, logger *slog.Logger) *versionMigration {
	return &versionMigration{target: target, logger: logger}
}

// ShouldMigrate is true for every record below the target version. When no
// file existed before the record is at 0, so this also replaces protobuf zero
// values with real defaults.
func (m *versionMigration) ShouldMigrate(_ context.Context, current Record) (bool, error) {
	return current.Version < m.target, nil
}

func (m *versionMigration) Migrate(_ context.Context, current Record) (Record, error) {
	from := current.Version
	to := from + 1
	m.logger.Info("migrating settings", "from_version", from, "to_version", to)

	switch from {
	case 0:
		return Record{
			Version:                  to,
			ManufacturerWarningShown: false,
		}, nil
	default:
		return current, &MigrationError{Version: from, Err: ErrNoMigrationStep}
	}
}

func (m *versionMigration) CleanUp(context.Context) error {
	return nil
}
