package media

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryOverridesMissingFile(t *testing.T) {
	if err := LoadRegistryOverrides(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("missing overrides file should not error: %v", err)
	}
}

func TestLoadRegistryOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := `platforms:
  - id: linkedin
    width: 1920
    height: 1080
    video_bitrate: 5M
    audio_bitrate: 128k
    audio_sample_rate: 44100
subtitle_presets:
  branded:
    font_family: Inter
    font_size: 30
    font_color: "#FFD700"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadRegistryOverrides(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer delete(platformProfiles, "linkedin")
	defer delete(stylePresets, "branded")

	profile, err := LookupPlatform("linkedin")
	if err != nil {
		t.Fatalf("override platform not registered: %v", err)
	}
	if profile.FPS != 30 {
		t.Errorf("fps should default to 30, got %d", profile.FPS)
	}

	style, name := ResolveStylePreset("branded")
	if name != "branded" {
		t.Fatalf("override preset not registered, resolved to %q", name)
	}
	if style.Alignment != AlignBottom {
		t.Errorf("alignment should default to bottom, got %q", style.Alignment)
	}
}

func TestLoadRegistryOverridesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "platforms: [\n"},
		{"platform missing dimensions", "platforms:\n  - id: broken\n"},
		{"preset missing font", "subtitle_presets:\n  broken:\n    font_size: 20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "overrides.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if err := LoadRegistryOverrides(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
