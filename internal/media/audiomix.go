package media

import (
	"context"
	"log"
)

// Mixer replaces a video's audio track with the narration, optionally
// blending in background music.
type Mixer struct {
	runner *Runner
}

func NewMixer(runner *Runner) *Mixer {
	return &Mixer{runner: runner}
}

// Mix writes outputPath with the video stream of videoPath copied untouched
// and the narration as its sole audio source.
//
// Without BGM the narration is mapped directly; output duration is bounded
// by the shorter stream ("shortest" semantics — narration is expected to be
// the authoritative length).
//
// With BGM the narration stays unattenuated and the music is scaled by
// bgmVolume, mixed with duration following the narration. A BGM track
// shorter than the narration simply ends early; it is not looped or
// time-stretched.
func (m *Mixer) Mix(ctx context.Context, videoPath, narrationPath, bgmPath string, bgmVolume float64, outputPath string) error {
	var args []string

	if bgmPath == "" {
		args = []string{
			"-hide_banner", "-v", "error",
			"-i", videoPath,
			"-i", narrationPath,
			"-map", "0:v",
			"-map", "1:a",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
			"-y",
			outputPath,
		}
	} else {
		var graph Graph
		graph.Add(Volume("1:a", "narration", 1.0))
		graph.Add(Volume("2:a", "music", bgmVolume))
		graph.Add(AMix("narration", "music", "aout", 2))

		args = []string{
			"-hide_banner", "-v", "error",
			"-i", videoPath,
			"-i", narrationPath,
			"-i", bgmPath,
			"-filter_complex", graph.String(),
			"-map", "0:v",
			"-map", "[aout]",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
			"-y",
			outputPath,
		}
		log.Printf("[AudioMix] Mixing narration with background music (volume=%.2f)", bgmVolume)
	}

	res := m.runner.RunFFmpeg(ctx, args...)
	if !res.OK() {
		return subprocessError(KindAudioMix, res, "audio mix failed")
	}

	log.Printf("[AudioMix] Audio mixed in %.1fs", res.Duration.Seconds())
	return nil
}
