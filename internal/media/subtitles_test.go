package media

import (
	"strings"
	"testing"
)

func TestResolveStylePreset(t *testing.T) {
	style, name := ResolveStylePreset("tiktok")
	if name != "tiktok" {
		t.Errorf("expected tiktok, got %q", name)
	}
	if style.Alignment != AlignCenter {
		t.Errorf("tiktok preset should be center aligned, got %q", style.Alignment)
	}
}

func TestResolveStylePresetUnknownFallsBack(t *testing.T) {
	style, name := ResolveStylePreset("neon-party")
	if name != DefaultStylePreset {
		t.Errorf("unknown preset resolved to %q, want %q", name, DefaultStylePreset)
	}
	if style.FontFamily == "" || style.FontSize == 0 {
		t.Errorf("fallback style is incomplete: %+v", style)
	}
}

func TestResolveStylePresetEmpty(t *testing.T) {
	_, name := ResolveStylePreset("")
	if name != DefaultStylePreset {
		t.Errorf("empty preset resolved to %q, want %q", name, DefaultStylePreset)
	}
}

func TestForceStyle(t *testing.T) {
	style := SubtitleStyle{
		FontFamily:     "Noto Sans",
		FontSize:       28,
		FontColor:      "#FFFFFF",
		OutlineWidth:   2,
		OutlineColor:   "#000000",
		Alignment:      AlignBottom,
		VerticalMargin: 40,
	}

	got := style.ForceStyle()
	for _, part := range []string{
		"FontName=Noto Sans",
		"FontSize=28",
		"PrimaryColour=&H00FFFFFF",
		"OutlineColour=&H00000000",
		"BorderStyle=1",
		"Outline=2",
		"Alignment=2",
		"MarginV=40",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("force_style missing %q: %s", part, got)
		}
	}
}

func TestAssColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		// RGB swaps to BGR in ASS colour order.
		{"#FF0000", "&H000000FF"},
		{"#00FF00", "&H0000FF00"},
		{"#0000FF", "&H00FF0000"},
		{"#9932CC", "&H00CC3299"},
		{"ffffff", "&H00FFFFFF"},
		// Unparseable input degrades to opaque white.
		{"", "&H00FFFFFF"},
		{"#FFF", "&H00FFFFFF"},
	}
	for _, tt := range tests {
		if got := assColor(tt.hex); got != tt.want {
			t.Errorf("assColor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}

func TestAssAlignment(t *testing.T) {
	if got := assAlignment(AlignTop); got != 8 {
		t.Errorf("top = %d, want 8", got)
	}
	if got := assAlignment(AlignCenter); got != 5 {
		t.Errorf("center = %d, want 5", got)
	}
	if got := assAlignment(AlignBottom); got != 2 {
		t.Errorf("bottom = %d, want 2", got)
	}
	if got := assAlignment(""); got != 2 {
		t.Errorf("unset alignment = %d, want bottom", got)
	}
}
