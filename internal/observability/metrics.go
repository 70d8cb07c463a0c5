package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments of the library.
// Instruments are created once at startup and shared by the settings store
// and the dialog guide. A nil *Metrics records nothing.
type Metrics struct {
	// Settings store metrics
	MigrationsApplied otelmetric.Int64Counter
	StoreWrites       otelmetric.Int64Counter
	StoreErrors       otelmetric.Int64Counter

	// Dialog metrics
	DialogsShown  otelmetric.Int64Counter
	DialogActions otelmetric.Int64Counter
}

// NewMetrics creates all metric instruments from the given Meter.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	m.MigrationsApplied, err = meter.Int64Counter(
		"settings.migrations.applied",
		otelmetric.WithDescription("Settings record migration steps applied"),
	)
	if err != nil {
		return nil, err
	}

	m.StoreWrites, err = meter.Int64Counter(
		"settings.store.writes",
		otelmetric.WithDescription("Settings records persisted"),
	)
	if err != nil {
		return nil, err
	}

	m.StoreErrors, err = meter.Int64Counter(
		"settings.store.errors",
		otelmetric.WithDescription("Settings store failures by operation"),
	)
	if err != nil {
		return nil, err
	}

	m.DialogsShown, err = meter.Int64Counter(
		"dialogs.shown",
		otelmetric.WithDescription("Warning dialogs handed to the presenter"),
	)
	if err != nil {
		return nil, err
	}

	m.DialogActions, err = meter.Int64Counter(
		"dialogs.actions",
		otelmetric.WithDescription("Dialog button actions reported by the presenter"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// MigrationApplied counts one migration step starting at fromVersion.
func (m *Metrics) MigrationApplied(ctx context.Context, fromVersion int32) {
	if m == nil {
		return
	}
	m.MigrationsApplied.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.Int("from_version", int(fromVersion)),
	))
}

// StoreWritten counts one persisted record.
func (m *Metrics) StoreWritten(ctx context.Context) {
	if m == nil {
		return
	}
	m.StoreWrites.Add(ctx, 1)
}

// StoreFailed counts one failed store operation ("read", "migrate", "write").
func (m *Metrics) StoreFailed(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.StoreErrors.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("op", op)))
}

// DialogShown counts one dialog of the given kind.
func (m *Metrics) DialogShown(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.DialogsShown.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", kind)))
}

// DialogAction counts one button action of the given kind.
func (m *Metrics) DialogAction(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.DialogActions.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("action", action)))
}
