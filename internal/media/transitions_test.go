package media

import (
	"sort"
	"testing"
)

func TestResolveTransitionKnown(t *testing.T) {
	for _, name := range []string{"fade", "slideleft", "circleopen", "dissolve"} {
		if got := ResolveTransition(name); got != name {
			t.Errorf("ResolveTransition(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestResolveTransitionUnknownFallsBack(t *testing.T) {
	for _, name := range []string{"swirl", "explode", "", "FADE"} {
		if got := ResolveTransition(name); got != DefaultTransition {
			t.Errorf("ResolveTransition(%q) = %q, want %q", name, got, DefaultTransition)
		}
	}
}

func TestKnownTransitionsSorted(t *testing.T) {
	names := KnownTransitions()
	if len(names) == 0 {
		t.Fatal("no transitions registered")
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("transitions not sorted: %v", names)
	}
	if !knownTransitions[DefaultTransition] {
		t.Errorf("default transition %q not in registry", DefaultTransition)
	}
}
