package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Register the pure-Go SQLite driver. This does NOT require CGO.
	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps the record as a blob row in a SQLite database, for
// hosts that already ship a database and do not want another file.
//
// It uses modernc.org/sqlite (pure Go, no CGO) for gomobile cross-compilation.
// The schema is migrated on open.
type SQLiteBackend struct {
	db   *sql.DB
	path string
	name string
}

// DatabaseName is the SQLite file used by SQLiteBackend inside an app's
// databases directory.
const DatabaseName = "energy_settings.db"

// DatabasePath returns where an app keeps the settings database.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "databases", DatabaseName)
}

// NewSQLiteBackend opens (or creates) the database at dbPath with WAL mode
// and a busy timeout, and applies schema migrations.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for concurrent access, 5s busy timeout for lock contention.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runSchemaMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run schema migrations: %w", err)
	}

	return &SQLiteBackend{
		db:   db,
		path: dbPath,
		name: FileName,
	}, nil
}

// Read implements Backend.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT data FROM datastore WHERE name = ?",
		b.name,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read settings row: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// Write implements Backend. The row is replaced in a single statement, so
// SQLite's journal keeps the old bytes if the write does not complete.
func (b *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO datastore (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		b.name, data, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("write settings row: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
