package settings

import (
	"errors"
	"fmt"
)

// Sentinel errors for the settings package.
var (
	// ErrNotFound is returned by a Backend when nothing was persisted yet.
	ErrNotFound = errors.New("settings record not found")

	// ErrCorrupted means the persisted bytes are not a valid record. The
	// record is not replaced by defaults, that would drop a user preference.
	ErrCorrupted = errors.New("settings record is corrupted")

	// ErrNoMigrationStep means the chain has no step for a version. The
	// chain must be fixed, resetting the record would lose user settings.
	ErrNoMigrationStep = errors.New("no migration code for version")

	// ErrClosed is returned by a Store after Close.
	ErrClosed = errors.New("settings store is closed")

	// ErrMigrationStalled means a migration asked to run but returned its input.
	ErrMigrationStalled = errors.New("migration made no progress")
)

// MigrationError reports a failed migration step.
type MigrationError struct {
	// Version is the schema version of the record the step started from.
	Version int32
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate settings from version %d: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
