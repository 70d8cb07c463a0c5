package manufacturer

import (
	"github.com/cyface-de/energy-settings/internal/intent"
	"github.com/cyface-de/energy-settings/internal/power"
)

// Message ids of the instructions shown next to a resolved vendor settings screen.
// The native layer maps them to localized string resources of the same name.
const (
	MessageHuaweiAppLaunch     = "dialog_manufacturer_warning_huawei_app_launch"
	MessageHuaweiProtectedApp  = "dialog_manufacturer_warning_huawei_protected_app"
	MessageSamsungDeviceCare   = "dialog_manufacturer_warning_samsung_device_care"
	MessageSamsungSmartManager = "dialog_manufacturer_warning_samsung_smart_manager"
	MessageXiaomiPowerSettings = "dialog_manufacturer_warning_xiaomi_power_settings"
	MessageXiaomiAutoStart     = "dialog_manufacturer_warning_xiaomi_auto_start"
	MessageGeneric             = "dialog_manufacturer_warning_generic"
	MessageSonyStamina         = "dialog_manufacturer_warning_sony_stamina"
)

// Entry is one known vendor settings screen.
type Entry struct {
	// Target is the screen to open.
	Target intent.Target

	// MinSDK is the first API level the entry applies to. Zero means no lower bound.
	MinSDK int

	// MaxSDK is the first API level the entry no longer applies to. Zero means no upper bound.
	MaxSDK int

	// Message is the id of the instructions for this screen.
	Message string
}

// AppliesTo reports whether sdkInt lies in [MinSDK, MaxSDK).
func (e Entry) AppliesTo(sdkInt int) bool {
	if e.MinSDK > 0 && sdkInt < e.MinSDK {
		return false
	}
	if e.MaxSDK > 0 && sdkInt >= e.MaxSDK {
		return false
	}
	return true
}

// Registry is the priority-ordered list of known vendor settings screens.
//
// Order is load-bearing: the resolver returns the first entry that launches,
// so a screen which replaces an older one on newer firmware must come first.
// Never turn this into a map.
var Registry = []Entry{
	// Huawei/Honor (EMUI), "App launch", EMUI 9+.
	// EMUI 10 resolves both StartupNormalAppListActivity and StartupAppControlActivity,
	// the latter crashes there even with the USE_COMPONENT permission.
	{
		Target:  intent.Component("com.huawei.systemmanager", "com.huawei.systemmanager.startupmgr.ui.StartupNormalAppListActivity"),
		Message: MessageHuaweiAppLaunch,
	},
	// Some Android 10 devices still picked this one, so it is cut off at Q.
	{
		Target:  intent.Component("com.huawei.systemmanager", "com.huawei.systemmanager.appcontrol.activity.StartupAppControlActivity"),
		MaxSDK:  power.SDKQ,
		Message: MessageHuaweiAppLaunch,
	},
	// "Protected apps", EMUI < 5, Android < 7.
	{
		Target:  intent.Component("com.huawei.systemmanager", "com.huawei.systemmanager.optimize.process.ProtectActivity"),
		Message: MessageHuaweiProtectedApp,
	},

	// Samsung, Android 7+ "Unmonitored apps" in Device care.
	{
		Target:  intent.Component("com.samsung.android.lool", "com.samsung.android.sm.ui.battery.BatteryActivity"),
		Message: MessageSamsungDeviceCare,
	},
	// Samsung, Android 5-6 Smart Manager.
	{
		Target:  intent.Component("com.samsung.android.sm", "com.samsung.android.sm.ui.battery.BatteryActivity"),
		Message: MessageSamsungSmartManager,
	},

	// Xiaomi (MIUI), tested on Redmi Note 5 with MIUI 10.
	{
		Target:  intent.Component("com.miui.securitycenter", "com.miui.powercenter.PowerSettings"),
		Message: MessageXiaomiPowerSettings,
	},
	{
		Target:  intent.Component("com.miui.securitycenter", "com.miui.permcenter.autostart.AutoStartManagementActivity"),
		Message: MessageXiaomiAutoStart,
	},
	{
		Target:  intent.Action("miui.intent.action.POWER_HIDE_MODE_APP_LIST", intent.CategoryDefault),
		Message: MessageXiaomiPowerSettings,
	},
	{
		Target:  intent.Action("miui.intent.action.OP_AUTO_START", intent.CategoryDefault),
		Message: MessageXiaomiAutoStart,
	},
}
