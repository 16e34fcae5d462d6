package media

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// PlatformProfile is a named bundle of distribution-channel encoding targets.
type PlatformProfile struct {
	ID              string `yaml:"id"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	FPS             int    `yaml:"fps"`
	VideoBitrate    string `yaml:"video_bitrate"`
	AudioBitrate    string `yaml:"audio_bitrate"`
	AudioSampleRate int    `yaml:"audio_sample_rate"`
	Description     string `yaml:"description"`
}

// platformProfiles is the closed registry of distribution targets. There is
// deliberately no default: a platform the registry does not know is a hard
// failure, because guessing a resolution produces a silently wrong video.
var platformProfiles = map[string]PlatformProfile{
	"youtube": {
		ID: "youtube", Width: 1920, Height: 1080, FPS: 30,
		VideoBitrate: "8M", AudioBitrate: "192k", AudioSampleRate: 48000,
		Description: "YouTube landscape 1080p",
	},
	"youtube_shorts": {
		ID: "youtube_shorts", Width: 1080, Height: 1920, FPS: 30,
		VideoBitrate: "6M", AudioBitrate: "192k", AudioSampleRate: 48000,
		Description: "YouTube Shorts vertical 1080x1920",
	},
	"tiktok": {
		ID: "tiktok", Width: 1080, Height: 1920, FPS: 30,
		VideoBitrate: "6M", AudioBitrate: "128k", AudioSampleRate: 44100,
		Description: "TikTok vertical 1080x1920",
	},
	"instagram_story": {
		ID: "instagram_story", Width: 1080, Height: 1920, FPS: 30,
		VideoBitrate: "5M", AudioBitrate: "128k", AudioSampleRate: 44100,
		Description: "Instagram Story vertical 1080x1920",
	},
	"instagram_reel": {
		ID: "instagram_reel", Width: 1080, Height: 1920, FPS: 30,
		VideoBitrate: "5M", AudioBitrate: "128k", AudioSampleRate: 44100,
		Description: "Instagram Reel vertical 1080x1920",
	},
	"facebook": {
		ID: "facebook", Width: 1280, Height: 720, FPS: 30,
		VideoBitrate: "4M", AudioBitrate: "128k", AudioSampleRate: 44100,
		Description: "Facebook feed 720p",
	},
}

// PlatformIDs returns the registered platform IDs, sorted.
func PlatformIDs() []string {
	ids := make([]string, 0, len(platformProfiles))
	for id := range platformProfiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RegisterPlatformProfile adds or replaces a profile. Called once at startup
// when operator overrides are configured; the registry is static afterwards.
func RegisterPlatformProfile(profile PlatformProfile) {
	platformProfiles[profile.ID] = profile
}

// LookupPlatform resolves a platform ID against the registry.
func LookupPlatform(id string) (PlatformProfile, error) {
	profile, ok := platformProfiles[id]
	if !ok {
		return PlatformProfile{}, newError(KindUnknownPlatform,
			"unknown platform %q (known: %v)", id, PlatformIDs())
	}
	return profile, nil
}

// Optimizer re-encodes a video for a distribution platform.
type Optimizer struct {
	runner *Runner
}

func NewOptimizer(runner *Runner) *Optimizer {
	return &Optimizer{runner: runner}
}

// Optimize scales the video to fit the platform's resolution preserving
// aspect ratio, pads to the exact target dimensions, and re-encodes video
// and audio at the profile's rates.
func (o *Optimizer) Optimize(ctx context.Context, videoPath, platformID, outputPath string) error {
	profile, err := LookupPlatform(platformID)
	if err != nil {
		return err
	}

	var graph Graph
	graph.Add(Scale("0:v", "scaled", profile.Width, profile.Height))
	graph.Add(Pad("scaled", "padded", profile.Width, profile.Height))
	graph.Add(SetSAR("padded", "sar"))
	graph.Add(FPS("sar", "v", profile.FPS))

	res := o.runner.RunFFmpeg(ctx,
		"-hide_banner", "-v", "error",
		"-i", videoPath,
		"-filter_complex", graph.String(),
		"-map", "[v]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-b:v", profile.VideoBitrate,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", profile.AudioBitrate,
		"-ar", fmt.Sprintf("%d", profile.AudioSampleRate),
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)
	if !res.OK() {
		return subprocessError(KindSubprocess, res, "platform optimization for %q failed", platformID)
	}

	log.Printf("[Optimize] Re-encoded for %s (%dx%d@%d) in %.1fs",
		profile.ID, profile.Width, profile.Height, profile.FPS, res.Duration.Seconds())
	return nil
}
