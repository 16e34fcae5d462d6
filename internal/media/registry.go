package media

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryOverrides are operator-supplied additions to the built-in closed
// registries. They are loaded once at startup from a YAML file; after that
// the registries are static, same as the built-ins.
type RegistryOverrides struct {
	Platforms       []PlatformProfile        `yaml:"platforms"`
	SubtitlePresets map[string]SubtitleStyle `yaml:"subtitle_presets"`
}

// LoadRegistryOverrides reads a YAML override file and merges it over the
// built-in registries. A missing file is not an error — overrides are
// optional.
func LoadRegistryOverrides(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read registry overrides: %w", err)
	}

	var overrides RegistryOverrides
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse registry overrides %s: %w", path, err)
	}

	for _, profile := range overrides.Platforms {
		if profile.ID == "" || profile.Width <= 0 || profile.Height <= 0 {
			return fmt.Errorf("registry overrides: platform profile needs id, width, height (got %+v)", profile)
		}
		if profile.FPS <= 0 {
			profile.FPS = 30
		}
		RegisterPlatformProfile(profile)
		log.Printf("[Registry] Registered platform profile %q (%dx%d)", profile.ID, profile.Width, profile.Height)
	}

	for name, style := range overrides.SubtitlePresets {
		if style.FontFamily == "" || style.FontSize <= 0 {
			return fmt.Errorf("registry overrides: subtitle preset %q needs font_family and font_size", name)
		}
		if style.Alignment == "" {
			style.Alignment = AlignBottom
		}
		RegisterStylePreset(name, style)
		log.Printf("[Registry] Registered subtitle preset %q", name)
	}

	return nil
}
