package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cyface-de/energy-settings/internal/device"
	"github.com/cyface-de/energy-settings/internal/dialog"
	"github.com/cyface-de/energy-settings/internal/guidance"
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/manufacturer"
	"github.com/cyface-de/energy-settings/internal/observability"
	"github.com/cyface-de/energy-settings/internal/power"
	"github.com/cyface-de/energy-settings/internal/settings"
)

// app carries what the subcommands share.
type app struct {
	cfg      Config
	logger   *slog.Logger
	noLegacy bool
	output   string

	obs     *observability.Module
	metrics *observability.Metrics
}

// newRootCommand returns the settingsctl command tree.
func newRootCommand(cfg Config, logger *slog.Logger) *cobra.Command {
	a := &app{cfg: cfg, logger: logger}

	cmd := &cobra.Command{
		Use:   "settingsctl",
		Short: "Inspect and edit energy settings of an app data directory",
		Long: `settingsctl works on an app data directory pulled from a device
(adb exec-out run-as <package> tar c .). It reads the settings record,
runs the migrations and dry-runs the warning dialogs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			obs, err := observability.New("settingsctl")
			if err != nil {
				return err
			}
			metrics, err := observability.NewMetrics(obs.Meter())
			if err != nil {
				return fmt.Errorf("create metrics: %w", err)
			}
			a.obs, a.metrics = obs, metrics
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.MetricsTextfile != "" {
				if err := a.obs.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
					return err
				}
				a.logger.Debug("metrics written", "path", a.cfg.MetricsTextfile)
			}
			return a.obs.Shutdown(cmd.Context())
		},
	}

	cmd.AddCommand(
		newShowCommand(a),
		newMigrateCommand(a),
		newSetWarningShownCommand(a),
		newResolveCommand(),
		newGuideCommand(a),
	)

	cmd.PersistentFlags().StringVar(&a.cfg.DataDir, "data-dir", cfg.DataDir, "app data directory")
	cmd.PersistentFlags().StringVar(&a.cfg.Backend, "backend", cfg.Backend, "record storage: file or sqlite")
	cmd.PersistentFlags().BoolVar(&a.noLegacy, "no-legacy", false, "ignore shared_prefs of earlier library versions")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "json", "record output format: json or yaml")

	return cmd
}

// openBackend opens the configured record storage.
func (a *app) openBackend() (settings.Backend, error) {
	switch a.cfg.Backend {
	case "file":
		b, err := settings.NewFileBackend(settings.DataStorePath(a.cfg.DataDir))
		if err != nil {
			return nil, err
		}
		a.logger.Debug("using settings file", "path", b.Path())
		return b, nil
	case "sqlite":
		return settings.NewSQLiteBackend(settings.DatabasePath(a.cfg.DataDir))
	default:
		return nil, fmt.Errorf("unknown backend %q", a.cfg.Backend)
	}
}

// openStore opens the settings store with the default migrations.
func (a *app) openStore() (*settings.Store, error) {
	backend, err := a.openBackend()
	if err != nil {
		return nil, err
	}

	var legacy settings.LegacySource
	if !a.noLegacy {
		legacy = settings.NewSharedPreferencesFile(settings.SharedPreferencesPath(a.cfg.DataDir))
	}

	return settings.NewStore(backend,
		settings.WithLogger(a.logger),
		settings.WithMetrics(a.metrics),
		settings.WithMigrations(settings.DefaultMigrations(legacy, a.logger)...),
	), nil
}

// recordView is the output of show, migrate and set-warning-shown.
type recordView struct {
	Version                  int32 `json:"version" yaml:"version"`
	ManufacturerWarningShown bool  `json:"manufacturer_warning_shown" yaml:"manufacturer_warning_shown"`
	Exists                   bool  `json:"exists" yaml:"exists"`
	MigrationPending         bool  `json:"migration_pending" yaml:"migration_pending"`
	LegacyWarningShown       *bool `json:"legacy_warning_shown,omitempty" yaml:"legacy_warning_shown,omitempty"`
}

// print writes v in the selected output format.
func (a *app) print(w io.Writer, v interface{}) error {
	var output []byte
	var err error
	switch a.output {
	case "yaml":
		output, err = yaml.Marshal(v)
	case "json":
		output, err = json.MarshalIndent(v, "", "  ")
		output = append(output, '\n')
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(output)
	return err
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings record without migrating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := a.openBackend()
			if err != nil {
				return err
			}
			defer closeBackend(backend, a.logger)

			var view recordView
			data, err := backend.Read(ctx)
			switch {
			case errors.Is(err, settings.ErrNotFound):
			case err != nil:
				return err
			default:
				rec, err := settings.Unmarshal(data)
				if err != nil {
					return err
				}
				view.Exists = true
				view.Version = rec.Version
				view.ManufacturerWarningShown = rec.ManufacturerWarningShown
			}
			view.MigrationPending = view.Version < settings.CurrentVersion

			if !a.noLegacy {
				prefs := settings.NewSharedPreferencesFile(settings.SharedPreferencesPath(a.cfg.DataDir))
				shown, found, err := prefs.Bool(ctx, settings.LegacyManufacturerWarningKey)
				if err != nil {
					return err
				}
				if found {
					view.LegacyWarningShown = &shown
				}
			}

			return a.print(cmd.OutOrStdout(), view)
		},
	}
}

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the settings record to the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Data(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), recordView{
				Version:                  rec.Version,
				ManufacturerWarningShown: rec.ManufacturerWarningShown,
				Exists:                   true,
			})
		},
	}
}

func newSetWarningShownCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "set-warning-shown <true|false>",
		Short:   "Set the manufacturer warning \"don't show again\" choice",
		Example: `settingsctl --data-dir ./de.cyface.app set-warning-shown false`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shown, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetManufacturerWarningShown(cmd.Context(), shown); err != nil {
				return err
			}
			rec, err := store.Data(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), recordView{
				Version:                  rec.Version,
				ManufacturerWarningShown: rec.ManufacturerWarningShown,
				Exists:                   true,
			})
		},
	}
}

func newResolveCommand() *cobra.Command {
	var sdkInt int
	var launchable []string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Dry-run the vendor settings screen resolution",
		Example: `settingsctl resolve --sdk 29 \
  --launchable com.huawei.systemmanager/.startupmgr.ui.StartupNormalAppListActivity`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			canLaunch := launchChecker(launchable)

			for i, e := range manufacturer.Registry {
				mark := " "
				switch {
				case !e.AppliesTo(sdkInt):
					mark = "-"
				case canLaunch(e.Target):
					mark = "x"
				}
				fmt.Fprintf(out, "%d [%s] %s\n", i, mark, e.Target)
			}

			resolved, ok := manufacturer.DefaultResolver().Resolve(sdkInt, canLaunch)
			if !ok {
				fmt.Fprintln(out, "no match: the dialog offers a feedback email")
				return nil
			}
			fmt.Fprintf(out, "resolved: %s\nmessage: %s\n", resolved.Target, dialog.English.String(resolved.Message))
			return nil
		},
	}

	cmd.Flags().IntVar(&sdkInt, "sdk", power.SDKQ, "Android API level")
	cmd.Flags().StringSliceVar(&launchable, "launchable", nil, "targets that resolve on the device: package/class or an action")

	return cmd
}

func newGuideCommand(a *app) *cobra.Command {
	var dev device.Context
	var state staticState
	var launchable []string
	var packageName, appVersion, recipient string
	var force, dontShowAgain bool

	cmd := &cobra.Command{
		Use:   "guide",
		Short: "Run all checks for a simulated device and print the dialogs",
		Example: `settingsctl --data-dir ./de.cyface.app guide --manufacturer samsung --sdk 31 \
  --power-save --location-mode 1 --gnss-disabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			presenter := &textPresenter{out: cmd.OutOrStdout(), loc: dialog.English}
			guide, err := guidance.New(guidance.Config{
				Device: dev,
				State:  state,
				Environment: &dialog.Environment{
					PackageName: packageName,
					AppVersion:  func() (string, error) { return appVersion, nil },
					CanLaunch:   launchChecker(launchable),
				},
				Store:   store,
				Logger:  a.logger,
				Metrics: a.metrics,
			})
			if err != nil {
				return err
			}

			shown, err := runChecks(ctx, guide, presenter, force, recipient)
			if err != nil {
				return err
			}
			if shown == 0 {
				if _, err := guide.ShowNoGuidanceNeeded(ctx, presenter, recipient); err != nil {
					return err
				}
			}

			if dontShowAgain && presenter.manufacturerDialogID != "" {
				return guide.HandleAction(ctx, presenter.manufacturerDialogID, dialog.ActionDontShowAgain)
			}
			guide.DismissAll()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&dev.Manufacturer, "manufacturer", "Google", "Build.MANUFACTURER")
	f.StringVar(&dev.Model, "model", "Pixel", "Build.MODEL")
	f.StringVar(&dev.Device, "device", "generic", "Build.DEVICE")
	f.StringVar(&dev.OSRelease, "os-release", "13", "Build.VERSION.RELEASE")
	f.IntVar(&dev.SDKInt, "sdk", 33, "Build.VERSION.SDK_INT")
	f.BoolVar(&state.powerSave, "power-save", false, "energy saver mode is on")
	f.IntVar(&state.locationMode, "location-mode", 0, "location power save mode (0-4)")
	f.BoolVar(&state.restricted, "background-restricted", false, "background processing is restricted")
	f.BoolVar(&state.gnssDisabled, "gnss-disabled", false, "GPS provider is disabled")
	f.StringSliceVar(&launchable, "launchable", nil, "targets that resolve on the device: package/class or an action")
	f.StringVar(&packageName, "package", "de.cyface.app", "app package name")
	f.StringVar(&appVersion, "app-version", device.NotAvailable, "app version name")
	f.StringVar(&recipient, "recipient", "support@example.com", "feedback email recipient")
	f.BoolVar(&force, "force", false, "show the manufacturer warning even after \"don't show again\"")
	f.BoolVar(&dontShowAgain, "dont-show-again", false, "answer the manufacturer warning with \"don't show again\"")

	return cmd
}

// runChecks shows every warning whose check holds and returns how many were shown.
func runChecks(ctx context.Context, g *guidance.Guide, p guidance.Presenter, force bool, recipient string) (int, error) {
	checks := []func() (bool, error){
		func() (bool, error) { return g.ShowEnergySaferWarning(ctx, p) },
		func() (bool, error) { return g.ShowBackgroundRestrictionWarning(ctx, p) },
		func() (bool, error) { return g.ShowProblematicManufacturerWarning(ctx, p, force, recipient) },
		func() (bool, error) { return g.ShowGNSSWarning(ctx, p) },
	}

	shown := 0
	for _, check := range checks {
		ok, err := check()
		if err != nil {
			return shown, err
		}
		if ok {
			shown++
		}
	}
	return shown, nil
}

// staticState is a guidance.PowerState from command line flags.
type staticState struct {
	powerSave    bool
	locationMode int
	restricted   bool
	gnssDisabled bool
}

func (s staticState) IsPowerSaveMode() bool { return s.powerSave }

func (s staticState) LocationPowerSaveMode() power.LocationMode {
	return power.LocationMode(s.locationMode)
}

func (s staticState) IsBackgroundRestricted() bool { return s.restricted }

func (s staticState) IsGNSSEnabled() bool { return !s.gnssDisabled }

// textPresenter renders dialogs as plain text.
type textPresenter struct {
	out io.Writer
	loc dialog.Localizer

	manufacturerDialogID string
}

func (p *textPresenter) Present(_ context.Context, d dialog.Dialog) error {
	if d.Kind == dialog.KindProblematicManufacturerWarning {
		p.manufacturerDialogID = d.ID
	}
	_, err := fmt.Fprintf(p.out, "== %s\n%s\n", d.Kind, d.Render(p.loc))
	return err
}

// launchChecker matches targets against "package/class" or action names.
// A class starting with "." is relative to the package, as in adb output.
func launchChecker(launchable []string) manufacturer.LaunchChecker {
	return func(t intent.Target) bool {
		for _, l := range launchable {
			pkg, class, ok := strings.Cut(l, "/")
			if !ok {
				if t.Action != "" && t.Action == l {
					return true
				}
				continue
			}
			if strings.HasPrefix(class, ".") {
				class = pkg + class
			}
			if t.Package == pkg && t.Class == class {
				return true
			}
		}
		return false
	}
}

func closeBackend(b settings.Backend, logger *slog.Logger) {
	if c, ok := b.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}
}
