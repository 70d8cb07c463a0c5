// Package dialog builds the warning dialogs of the energy settings library.
//
// A Dialog is a plain description (title, message, buttons with their
// actions) that a presentation adapter renders: the Android wrapper turns it
// into a MaterialDialog, settingsctl prints it. Texts are string resource ids;
// adapters without Android resources resolve them with a Localizer.
package dialog

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cyface-de/energy-settings/internal/device"
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/manufacturer"
)

// Kind identifies one of the library's dialogs.
type Kind string

const (
	KindEnergySaferWarning             Kind = "energy_safer_warning"
	KindBackgroundRestrictionWarning   Kind = "background_restriction_warning"
	KindProblematicManufacturerWarning Kind = "problematic_manufacturer_warning"
	KindGNSSDisabledWarning            Kind = "gnss_disabled_warning"
	KindNoGuidanceNeeded               Kind = "no_guidance_needed"
)

// Action is what a button does when pressed.
type Action string

const (
	// ActionOpenSettings launches Button.Target.
	ActionOpenSettings Action = "open_settings"
	// ActionSendFeedback opens an email app with Button.Email.
	ActionSendFeedback Action = "send_feedback"
	// ActionDontShowAgain is reported back so the choice gets persisted.
	ActionDontShowAgain Action = "dont_show_again"
)

// Button is a dialog button.
type Button struct {
	Label  string         `json:"label"`
	Action Action         `json:"action"`
	Target *intent.Target `json:"target,omitempty"`
	Email  *FeedbackEmail `json:"email,omitempty"`
}

// Dialog is a modal prompt with a primary and an optional secondary button.
type Dialog struct {
	// ID identifies this instance when the adapter reports a button action.
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Positive *Button `json:"positive,omitempty"`
	Negative *Button `json:"negative,omitempty"`
}

// Render formats the dialog as plain text using loc.
func (d Dialog) Render(loc Localizer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n", loc.String(d.Title), loc.String(d.Message))
	for _, btn := range []*Button{d.Positive, d.Negative} {
		if btn == nil {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] %s", loc.String(btn.Label), btn.Action)
		if btn.Target != nil {
			fmt.Fprintf(&b, " %s", btn.Target)
		}
		if btn.Email != nil {
			fmt.Fprintf(&b, " to %s", strings.Join(btn.Email.Recipients, ", "))
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// Environment is what dialog construction needs from the running app.
// A nil *Environment means the app context is gone; dialogs then degrade to
// text without remediation buttons.
type Environment struct {
	// PackageName is the app's package, used for its app-info settings screen.
	PackageName string

	// AppVersion looks up the installed version for the feedback template.
	AppVersion device.VersionLookup

	// CanLaunch asks the package manager whether a target resolves.
	CanLaunch manufacturer.LaunchChecker
}

// Builder creates dialogs for one device.
type Builder struct {
	device   device.Context
	resolver *manufacturer.Resolver
	strings  Localizer
	logger   *slog.Logger
	newID    func() string
}

// NewBuilder returns a Builder for dev. A nil resolver uses the built-in
// registry, a nil loc the English texts.
func NewBuilder(dev device.Context, resolver *manufacturer.Resolver, loc Localizer, logger *slog.Logger) *Builder {
	if resolver == nil {
		resolver = manufacturer.DefaultResolver()
	}
	if loc == nil {
		loc = English
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{
		device:   dev,
		resolver: resolver,
		strings:  loc,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// EnergySaferWarning asks the user to disable the energy saver mode.
func (b *Builder) EnergySaferWarning() Dialog {
	target := intent.Action(intent.ActionBatterySaverSettings)
	return Dialog{
		ID:       b.newID(),
		Kind:     KindEnergySaferWarning,
		Title:    EnergySaferWarningTitle,
		Message:  EnergySaferWarning,
		Positive: &Button{Label: ButtonOpenSettings, Action: ActionOpenSettings, Target: &target},
	}
}

// BackgroundRestrictionWarning asks the user to lift the background restriction.
func (b *Builder) BackgroundRestrictionWarning(env *Environment) Dialog {
	d := Dialog{
		ID:      b.newID(),
		Kind:    KindBackgroundRestrictionWarning,
		Title:   BackgroundRestrictionWarningTitle,
		Message: BackgroundRestrictionWarning,
	}
	if env == nil || env.PackageName == "" {
		b.logger.Warn("background restriction warning without settings button, package unknown")
		return d
	}
	target := intent.ApplicationDetails(env.PackageName)
	d.Positive = &Button{Label: ButtonOpenSettings, Action: ActionOpenSettings, Target: &target}
	return d
}

// GNSSDisabledWarning asks the user to enable location services.
func (b *Builder) GNSSDisabledWarning() Dialog {
	target := intent.Action(intent.ActionLocationSourceSettings)
	return Dialog{
		ID:       b.newID(),
		Kind:     KindGNSSDisabledWarning,
		Title:    GNSSDisabledWarningTitle,
		Message:  GNSSDisabledWarning,
		Positive: &Button{Label: ButtonOpenSettings, Action: ActionOpenSettings, Target: &target},
	}
}

// NoGuidanceNeeded tells the user nothing suspicious was found and offers a
// feedback email.
func (b *Builder) NoGuidanceNeeded(env *Environment, recipient string) Dialog {
	d := Dialog{
		ID:      b.newID(),
		Kind:    KindNoGuidanceNeeded,
		Title:   NoGuidanceNeededTitle,
		Message: NoGuidanceNeeded,
	}
	if env == nil {
		b.logger.Warn("no guidance needed dialog without feedback button, context is gone")
		return d
	}
	d.Positive = b.feedbackButton(env, recipient)
	return d
}

// ProblematicManufacturerWarning explains vendor-specific energy settings.
//
// When a known vendor settings screen resolves, the dialog opens it and shows
// the matching instructions. Otherwise it offers a feedback email next to a
// generic text (or the STAMINA text on Sony devices). The secondary button
// always lets the user turn off the automatic popup.
func (b *Builder) ProblematicManufacturerWarning(env *Environment, recipient string) Dialog {
	message := manufacturer.MessageGeneric
	if manufacturer.IsSony(b.device.Manufacturer) {
		message = manufacturer.MessageSonyStamina
	}

	d := Dialog{
		ID:       b.newID(),
		Kind:     KindProblematicManufacturerWarning,
		Title:    ProblematicManufacturerWarningTitle,
		Message:  message,
		Negative: &Button{Label: ButtonDoNotShowAgain, Action: ActionDontShowAgain},
	}

	if env == nil {
		b.logger.Warn("problematic manufacturer warning without remediation, context is gone")
		return d
	}

	if resolved, ok := b.resolver.Resolve(b.device.SDKInt, env.CanLaunch); ok {
		target := resolved.Target
		d.Message = resolved.Message
		d.Positive = &Button{Label: ButtonOpenSettings, Action: ActionOpenSettings, Target: &target}
		return d
	}

	d.Positive = b.feedbackButton(env, recipient)
	return d
}

// FeedbackEmail builds the feedback template for env.
func (b *Builder) FeedbackEmail(env *Environment, extraText, recipient string) FeedbackEmail {
	var lookup device.VersionLookup
	if env != nil {
		lookup = env.AppVersion
	}
	version := device.AppVersion(lookup, b.logger)
	return NewFeedbackEmail(b.strings, b.device, version, extraText, recipient)
}

func (b *Builder) feedbackButton(env *Environment, recipient string) *Button {
	email := b.FeedbackEmail(env, b.strings.String(FeedbackErrorDescription), recipient)
	return &Button{Label: ButtonHelp, Action: ActionSendFeedback, Email: &email}
}
