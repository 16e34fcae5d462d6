package media

import (
	"log"
	"sort"
)

// DefaultTransition is the safe fallback for unrecognized transition names.
const DefaultTransition = "fade"

// knownTransitions is the closed registry of supported transition effects.
// The names are ffmpeg xfade transition identifiers.
var knownTransitions = map[string]bool{
	"fade":        true,
	"fadeblack":   true,
	"fadewhite":   true,
	"dissolve":    true,
	"pixelize":    true,
	"wipeleft":    true,
	"wiperight":   true,
	"wipeup":      true,
	"wipedown":    true,
	"slideleft":   true,
	"slideright":  true,
	"slideup":     true,
	"slidedown":   true,
	"smoothleft":  true,
	"smoothright": true,
	"circleopen":  true,
	"circleclose": true,
	"radial":      true,
	"distance":    true,
}

// KnownTransitions returns the registry names, sorted.
func KnownTransitions() []string {
	names := make([]string, 0, len(knownTransitions))
	for name := range knownTransitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTransition maps a requested transition name onto the registry.
// Unknown names degrade to the default with a logged warning — a bad
// transition name must never fail a render.
func ResolveTransition(name string) string {
	if knownTransitions[name] {
		return name
	}
	log.Printf("[Merge] Unknown transition %q, falling back to %q", name, DefaultTransition)
	return DefaultTransition
}
