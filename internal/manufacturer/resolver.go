package manufacturer

import "github.com/cyface-de/energy-settings/internal/intent"

// LaunchChecker reports whether the platform can start target.
// Implementations must not fail for a well-formed target; anything that does
// not resolve is simply not launchable.
type LaunchChecker func(target intent.Target) bool

// Resolved is the vendor settings screen picked for this device.
type Resolved struct {
	Target  intent.Target
	Message string
}

// Resolver walks a registry in order and picks the first launchable screen.
type Resolver struct {
	entries []Entry
}

// NewResolver returns a Resolver over entries. The slice is used as given;
// its order decides which screen wins when several resolve.
func NewResolver(entries []Entry) *Resolver {
	return &Resolver{entries: entries}
}

// DefaultResolver returns a Resolver over the built-in Registry.
func DefaultResolver() *Resolver {
	return NewResolver(Registry)
}

// Resolve returns the first entry applicable to sdkInt for which canLaunch
// is true. The second result is false when nothing matches.
func (r *Resolver) Resolve(sdkInt int, canLaunch LaunchChecker) (Resolved, bool) {
	if canLaunch == nil {
		return Resolved{}, false
	}
	for _, e := range r.entries {
		if !e.AppliesTo(sdkInt) {
			continue
		}
		if canLaunch(e.Target) {
			return Resolved{Target: e.Target, Message: e.Message}, true
		}
	}
	return Resolved{}, false
}
