// Package power holds the checks for OS power-management states that
// suppress background location tracking.
//
// All checks are pure functions over values the native layer reads from
// PowerManager, ActivityManager and LocationManager.
package power

// Android API levels referenced by the checks.
const (
	SDKP = 28 // Android 9
	SDKQ = 29 // Android 10
)

// LocationMode mirrors PowerManager.getLocationPowerSaveMode().
type LocationMode int

// Values of PowerManager.LOCATION_MODE_*.
const (
	LocationModeNoChange                      LocationMode = 0
	LocationModeGPSDisabledWhenScreenOff      LocationMode = 1
	LocationModeAllDisabledWhenScreenOff      LocationMode = 2
	LocationModeForegroundOnly                LocationMode = 3
	LocationModeThrottleRequestsWhenScreenOff LocationMode = 4
)

// String returns the PowerManager constant name.
func (m LocationMode) String() string {
	switch m {
	case LocationModeNoChange:
		return "LOCATION_MODE_NO_CHANGE"
	case LocationModeGPSDisabledWhenScreenOff:
		return "LOCATION_MODE_GPS_DISABLED_WHEN_SCREEN_OFF"
	case LocationModeAllDisabledWhenScreenOff:
		return "LOCATION_MODE_ALL_DISABLED_WHEN_SCREEN_OFF"
	case LocationModeForegroundOnly:
		return "LOCATION_MODE_FOREGROUND_ONLY"
	case LocationModeThrottleRequestsWhenScreenOff:
		return "LOCATION_MODE_THROTTLE_REQUESTS_WHEN_SCREEN_OFF"
	default:
		return "LOCATION_MODE_UNKNOWN"
	}
}

// EnergySaferActive reports whether an energy saver mode is active that very
// likely stops GNSS while the display is off.
//
// Below Android 9 the power save flag alone decides: some vendors (e.g. Honor 8
// on Android 7) kill GPS in their own saver mode and there is no way to ask.
// From Android 9 on the location power save mode tells whether location is
// really suppressed.
func EnergySaferActive(powerSaveMode bool, mode LocationMode, sdkInt int) bool {
	if sdkInt < SDKP {
		return powerSaveMode
	}
	return powerSaveMode &&
		mode != LocationModeForegroundOnly &&
		mode != LocationModeNoChange
}

// BackgroundProcessingRestricted passes ActivityManager.isBackgroundRestricted
// through. The flag only exists from Android 9 on, so callers check SDKP first.
func BackgroundProcessingRestricted(backgroundRestricted bool) bool {
	return backgroundRestricted
}

// GNSSEnabled passes LocationManager.isProviderEnabled(GPS_PROVIDER) through.
func GNSSEnabled(providerEnabled bool) bool {
	return providerEnabled
}
