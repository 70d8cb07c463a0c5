package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Backend stores the encoded record durably.
//
// Write must be atomic: a write that fails or is abandoned halfway leaves
// the previous bytes in place.
type Backend interface {
	// Read returns the persisted bytes, or ErrNotFound.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the persisted bytes.
	Write(ctx context.Context, data []byte) error
}

// DataStorePath returns where Android's DataStore keeps the record inside
// an app data directory (Context.dataStoreFile).
func DataStorePath(dataDir string) string {
	return filepath.Join(dataDir, "files", "datastore", FileName)
}

// FileBackend keeps the record in a single file.
//
// Only one FileBackend (and one Store on top of it) may exist per file in a
// process, and only one process may write the file. Neither is checked.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the file at path. The file and its
// directory are created on first write.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("settings file path must not be empty")
	}
	return &FileBackend{path: path}, nil
}

// Path returns the backing file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Read implements Backend.
func (b *FileBackend) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	return data, nil
}

// Write implements Backend. The bytes go to a temporary file in the same
// directory which is synced and then renamed over the old file.
func (b *FileBackend) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	committed = true

	// The rename only survives a crash once the directory entry is synced.
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("sync settings dir: %w", err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}
