package media

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Subtitle styles
//
// A SubtitleStyle describes how burned-in captions look. Styles are resolved
// from a closed preset registry or supplied explicitly; the style is
// serialized to an ASS force_style override at the invocation boundary.
// ---------------------------------------------------------------------------

// Alignment of the subtitle block on the frame.
type Alignment string

const (
	AlignTop    Alignment = "top"
	AlignCenter Alignment = "center"
	AlignBottom Alignment = "bottom"
)

// DefaultStylePreset is the fallback for unrecognized preset names.
const DefaultStylePreset = "default"

type SubtitleStyle struct {
	FontFamily     string    `yaml:"font_family"`
	FontSize       int       `yaml:"font_size"`
	FontColor      string    `yaml:"font_color"` // "#RRGGBB"
	OutlineWidth   int       `yaml:"outline_width"`
	OutlineColor   string    `yaml:"outline_color"` // "#RRGGBB"
	Alignment      Alignment `yaml:"alignment"`
	VerticalMargin int       `yaml:"vertical_margin"`
}

// stylePresets is the closed registry of named subtitle looks. Per-platform
// presets mirror what each platform's native captioning tends toward.
var stylePresets = map[string]SubtitleStyle{
	"default": {
		FontFamily:     "Noto Sans",
		FontSize:       28,
		FontColor:      "#FFFFFF",
		OutlineWidth:   2,
		OutlineColor:   "#000000",
		Alignment:      AlignBottom,
		VerticalMargin: 40,
	},
	"youtube": {
		FontFamily:     "Roboto",
		FontSize:       26,
		FontColor:      "#FFFFFF",
		OutlineWidth:   2,
		OutlineColor:   "#000000",
		Alignment:      AlignBottom,
		VerticalMargin: 50,
	},
	"tiktok": {
		FontFamily:     "Noto Sans",
		FontSize:       34,
		FontColor:      "#FFFFFF",
		OutlineWidth:   4,
		OutlineColor:   "#9932CC",
		Alignment:      AlignCenter,
		VerticalMargin: 0,
	},
	"minimal": {
		FontFamily:     "Noto Sans",
		FontSize:       22,
		FontColor:      "#FFFFFF",
		OutlineWidth:   1,
		OutlineColor:   "#000000",
		Alignment:      AlignBottom,
		VerticalMargin: 30,
	},
}

// StylePresetNames returns the registered preset names, sorted.
func StylePresetNames() []string {
	names := make([]string, 0, len(stylePresets))
	for name := range stylePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterStylePreset adds or replaces a named preset. Called once at startup
// when operator overrides are configured; the registry is static afterwards.
func RegisterStylePreset(name string, style SubtitleStyle) {
	stylePresets[name] = style
}

// ResolveStylePreset maps a preset name onto the registry. Unknown names
// degrade to the default preset with a logged warning — a bad preset name
// must never fail a render. The empty name resolves silently.
func ResolveStylePreset(name string) (SubtitleStyle, string) {
	if name == "" {
		return stylePresets[DefaultStylePreset], DefaultStylePreset
	}
	if style, ok := stylePresets[name]; ok {
		return style, name
	}
	log.Printf("[Subtitles] Unknown style preset %q, falling back to %q", name, DefaultStylePreset)
	return stylePresets[DefaultStylePreset], DefaultStylePreset
}

// ForceStyle serializes the style to an ASS force_style override string.
func (s SubtitleStyle) ForceStyle() string {
	parts := []string{
		"FontName=" + s.FontFamily,
		fmt.Sprintf("FontSize=%d", s.FontSize),
		"PrimaryColour=" + assColor(s.FontColor),
		"OutlineColour=" + assColor(s.OutlineColor),
		"BorderStyle=1",
		fmt.Sprintf("Outline=%d", s.OutlineWidth),
		fmt.Sprintf("Alignment=%d", assAlignment(s.Alignment)),
		fmt.Sprintf("MarginV=%d", s.VerticalMargin),
	}
	return strings.Join(parts, ",")
}

// assAlignment maps the alignment enum onto ASS numpad positions
// (2 = bottom-center, 5 = middle-center, 8 = top-center).
func assAlignment(a Alignment) int {
	switch a {
	case AlignTop:
		return 8
	case AlignCenter:
		return 5
	default:
		return 2
	}
}

// assColor converts "#RRGGBB" to ASS &HAABBGGRR format (note: BGR, not RGB).
// Unparseable colors become opaque white rather than failing the render.
func assColor(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "&H00FFFFFF"
	}
	rr, gg, bb := hex[0:2], hex[2:4], hex[4:6]
	return "&H00" + strings.ToUpper(bb+gg+rr)
}

// ---------------------------------------------------------------------------
// Burner
// ---------------------------------------------------------------------------

// Burner permanently composites caption text onto video frames. The result
// has no selectable subtitle track — the text lives in the pixels.
type Burner struct {
	runner *Runner
}

func NewBurner(runner *Runner) *Burner {
	return &Burner{runner: runner}
}

// Burn validates the caption file, then re-encodes the video with the
// subtitles filter applied. The audio stream is copied unchanged.
func (b *Burner) Burn(ctx context.Context, videoPath, subtitlePath string, style SubtitleStyle, outputPath string) error {
	cues, err := ParseSRTFile(subtitlePath)
	if err != nil {
		return err
	}
	log.Printf("[Subtitles] Burning %d cues from %s", len(cues), subtitlePath)

	var graph Graph
	graph.Add(Subtitles("0:v", "v", subtitlePath, style.ForceStyle()))

	res := b.runner.RunFFmpeg(ctx,
		"-hide_banner", "-v", "error",
		"-i", videoPath,
		"-filter_complex", graph.String(),
		"-map", "[v]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"-y",
		outputPath,
	)
	if !res.OK() {
		return subprocessError(KindSubtitleRender, res, "subtitle burn-in failed")
	}

	log.Printf("[Subtitles] Burn-in complete in %.1fs", res.Duration.Seconds())
	return nil
}
