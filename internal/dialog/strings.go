package dialog

import "github.com/cyface-de/energy-settings/internal/manufacturer"

// String resource ids. The Android wrapper resolves them with
// Resources.getIdentifier, other adapters use a Localizer.
const (
	AppName = "app_name"

	EnergySaferWarningTitle = "dialog_energy_safer_warning_title"
	EnergySaferWarning      = "dialog_energy_safer_warning"

	BackgroundRestrictionWarningTitle = "dialog_background_processing_restriction_warning_title"
	BackgroundRestrictionWarning      = "dialog_background_processing_restriction_warning"

	ProblematicManufacturerWarningTitle = "dialog_problematic_manufacturer_warning_title"

	GNSSDisabledWarningTitle = "dialog_gps_disabled_warning_title"
	GNSSDisabledWarning      = "dialog_gps_disabled_warning"

	NoGuidanceNeededTitle = "dialog_no_guidance_needed_title"
	NoGuidanceNeeded      = "dialog_no_guidance_needed"

	ButtonOpenSettings   = "dialog_button_open_settings"
	ButtonHelp           = "dialog_button_help"
	ButtonDoNotShowAgain = "dialog_button_do_not_show_again"

	FeedbackErrorDescription = "feedback_error_description"
	FeedbackChooseEmailApp   = "feedback_choose_email_app"
	FeedbackEmailSubject     = "feedback_email_subject"
	FeedbackVersionText      = "feedback_version_text"
	FeedbackDeviceText       = "feedback_device_text"
	FeedbackAndroidText      = "feedback_android_text"
)

// Localizer returns the text for a string resource id.
type Localizer interface {
	String(id string) string
}

// Strings is a Localizer backed by a map. Unknown ids are returned unchanged.
type Strings map[string]string

// String implements Localizer.
func (s Strings) String(id string) string {
	if v, ok := s[id]; ok {
		return v
	}
	return id
}

// English holds the default texts.
var English = Strings{
	AppName: "Cyface",

	EnergySaferWarningTitle: "Energy saver mode",

	EnergySaferWarning: "The energy saver mode is active. It stops location tracking while the display is off. " +
		"Please disable it during your trips.",

	BackgroundRestrictionWarningTitle: "Background restriction",

	BackgroundRestrictionWarning: "Background activity is restricted for this app, so tracking stops in the background. " +
		"Please open the battery settings of this app and allow background activity.",

	ProblematicManufacturerWarningTitle: "Manufacturer energy settings",

	manufacturer.MessageGeneric: "Your device's manufacturer added energy settings which may stop tracking in the background. " +
		"Please allow this app to run in the background in your device's battery or app launch settings.",

	manufacturer.MessageSonyStamina: "The STAMINA mode on Sony devices may stop tracking in the background. " +
		"Please add this app to the exceptions of the STAMINA mode or disable it during your trips.",

	manufacturer.MessageHuaweiAppLaunch: "On the next screen, disable \"Manage automatically\" for this app " +
		"and enable \"Auto-launch\", \"Secondary launch\" and \"Run in background\".",

	manufacturer.MessageHuaweiProtectedApp: "On the next screen, mark this app as protected so it keeps running when the screen is off.",

	manufacturer.MessageSamsungDeviceCare: "On the next screen, add this app to the \"Unmonitored apps\" so it is never put to sleep.",

	manufacturer.MessageSamsungSmartManager: "On the next screen, disable the app optimization for this app.",

	manufacturer.MessageXiaomiPowerSettings: "On the next screen, choose \"No restrictions\" as battery saver setting for this app.",

	manufacturer.MessageXiaomiAutoStart: "On the next screen, enable \"Autostart\" for this app.",

	GNSSDisabledWarningTitle: "Location disabled",

	GNSSDisabledWarning: "Satellite positioning is disabled. Please enable location services to record your trips.",

	NoGuidanceNeededTitle: "No problems found",

	NoGuidanceNeeded: "We found no settings on your device which are known to stop tracking. " +
		"If tracking still stops, please send us an email.",

	ButtonOpenSettings:   "Open settings",
	ButtonHelp:           "Help",
	ButtonDoNotShowAgain: "Don't show again",

	FeedbackErrorDescription: "Please describe your problem",
	FeedbackChooseEmailApp:   "Choose an email app",
	FeedbackEmailSubject:     "Feedback",
	FeedbackVersionText:      "App version",
	FeedbackDeviceText:       "Device",
	FeedbackAndroidText:      "Android",
}
