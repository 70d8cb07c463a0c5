// Package manufacturer identifies device vendors whose own power management is
// known to stop background location tracking, and finds the vendor settings
// screen where the user can exempt the app.
package manufacturer

import "strings"

// Lower-case values of android.os.Build.MANUFACTURER.
const (
	Huawei  = "huawei"
	Honor   = "honor" // sub brand of huawei
	Samsung = "samsung"
	Xiaomi  = "xiaomi"
	Sony    = "sony"
)

// problematic lists vendors with app killers known to stop tracking with their
// default settings. HTC, Oppo, Asus, Letv, Vivo, Meizu, Dewav and QMobile look
// just as restrictive but there are no reports from such devices yet.
var problematic = []string{Huawei, Honor, Samsung, Xiaomi, Sony}

// IsProblematic reports whether name belongs to a vendor with a known
// background-task killer. The comparison ignores case.
func IsProblematic(name string) bool {
	n := normalize(name)
	for _, p := range problematic {
		if n == p {
			return true
		}
	}
	return false
}

// IsSony reports whether name is a Sony device. Sony's STAMINA mode has no
// known settings activity, so the dialog explains it in text only.
func IsSony(name string) bool {
	return normalize(name) == Sony
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
