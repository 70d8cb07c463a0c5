package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/cyface-de/energy-settings/internal/observability"
)

// Store is the handle to the persisted settings record.
//
// The record is read and migrated on first access; later reads are served
// from memory. Updates are serialized: every UpdateData call sees the result
// of all updates that completed before it.
//
// Create exactly one Store per backing file and process, and write the file
// from one process only. Both are preconditions of the caller, not checked here.
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	backend    Backend
	migrations []Migration
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu     sync.Mutex
	data   *Record
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithMigrations replaces the migration chain. The default is
// DefaultMigrations(nil, logger), i.e. the schema steps only.
func WithMigrations(ms ...Migration) Option {
	return func(s *Store) {
		s.migrations = ms
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables metric recording.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore returns a Store on top of backend.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.migrations == nil {
		s.migrations = DefaultMigrations(nil, s.logger)
	}
	return s
}

// Data returns the current record, migrating it first if this is the first
// access in this process.
func (s *Store) Data(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrClosed
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return Record{}, err
	}
	return *s.data, nil
}

// UpdateData applies fn to the current record and persists the result.
// Nothing is written when fn returns an error or an unchanged record.
// If the write fails the previous record stays current.
func (s *Store) UpdateData(ctx context.Context, fn func(Record) (Record, error)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrClosed
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return Record{}, err
	}

	current := *s.data
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if next == current {
		return current, nil
	}

	if err := s.write(ctx, next); err != nil {
		return current, err
	}
	s.data = &next
	return next, nil
}

// ManufacturerWarningShown reports whether the user chose "don't show again"
// on the problematic-manufacturer warning.
func (s *Store) ManufacturerWarningShown(ctx context.Context) (bool, error) {
	r, err := s.Data(ctx)
	if err != nil {
		return false, err
	}
	return r.ManufacturerWarningShown, nil
}

// SetManufacturerWarningShown saves the "don't show again" choice.
func (s *Store) SetManufacturerWarningShown(ctx context.Context, shown bool) error {
	_, err := s.UpdateData(ctx, func(r Record) (Record, error) {
		r.ManufacturerWarningShown = shown
		return r, nil
	})
	return err
}

// Close waits for running updates, then closes the backend if it holds
// resources. Later calls on the Store return ErrClosed. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ensureLoaded reads and migrates the record once. A failed attempt is not
// cached, the next access tries again. Callers hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.data != nil {
		return nil
	}

	loaded, err := s.read(ctx)
	if err != nil {
		s.metrics.StoreFailed(ctx, "read")
		return err
	}

	migrated, applied, err := s.migrate(ctx, loaded)
	if err != nil {
		s.metrics.StoreFailed(ctx, "migrate")
		return err
	}

	if migrated != loaded {
		if err := s.write(ctx, migrated); err != nil {
			return err
		}
	}

	for _, m := range applied {
		if err := m.CleanUp(ctx); err != nil {
			s.logger.Warn("settings migration clean-up failed", "error", err)
		}
	}

	s.data = &migrated
	return nil
}

func (s *Store) read(ctx context.Context) (Record, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read settings: %w", err)
	}

	r, err := Unmarshal(data)
	if err != nil {
		s.logger.Error("cannot read settings record", "error", err)
		return Record{}, err
	}
	return r, nil
}

// migrate runs the chain over r and returns the result and the migrations that ran.
func (s *Store) migrate(ctx context.Context, r Record) (Record, []Migration, error) {
	var applied []Migration
	for _, m := range s.migrations {
		ran := false
		for {
			ok, err := m.ShouldMigrate(ctx, r)
			if err != nil {
				return r, nil, err
			}
			if !ok {
				break
			}

			next, err := m.Migrate(ctx, r)
			if err != nil {
				s.logger.Error("settings migration failed", "from_version", r.Version, "error", err)
				return r, nil, err
			}
			if next == r {
				return r, nil, &MigrationError{Version: r.Version, Err: ErrMigrationStalled}
			}
			s.metrics.MigrationApplied(ctx, r.Version)
			r = next
			ran = true
		}
		if ran {
			applied = append(applied, m)
		}
	}
	return r, applied, nil
}

func (s *Store) write(ctx context.Context, r Record) error {
	if err := s.backend.Write(ctx, Marshal(r)); err != nil {
		s.metrics.StoreFailed(ctx, "write")
		return fmt.Errorf("write settings: %w", err)
	}
	s.metrics.StoreWritten(ctx)
	return nil
}
