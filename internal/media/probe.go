package media

import (
	"context"
	"strconv"
	"strings"
)

// VideoClip is one ordered input clip with its probed duration. Immutable
// once probed.
type VideoClip struct {
	Path     string
	Duration float64 // seconds
	Codec    string  // video codec name, e.g. "h264"
}

// Prober reads stream metadata through ffprobe.
type Prober struct {
	runner *Runner
}

func NewProber(runner *Runner) *Prober {
	return &Prober{runner: runner}
}

// ProbeClip reads the duration and video codec of a clip. Any unreadable
// field is a ClipProbeError — the pipeline cannot compute transition offsets
// or judge stream-copy compatibility without it.
func (p *Prober) ProbeClip(ctx context.Context, path string) (VideoClip, error) {
	duration, err := p.Duration(ctx, path)
	if err != nil {
		return VideoClip{}, err
	}

	res := p.runner.RunFFprobe(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if !res.OK() {
		return VideoClip{}, subprocessError(KindClipProbe, res, "ffprobe codec failed for %s", path)
	}

	codec := strings.TrimSpace(res.Stdout)
	if codec == "" {
		return VideoClip{}, newError(KindClipProbe, "no video stream in %s", path)
	}

	return VideoClip{Path: path, Duration: duration, Codec: codec}, nil
}

// Duration returns the container duration of a media file in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	res := p.runner.RunFFprobe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if !res.OK() {
		return 0, subprocessError(KindClipProbe, res, "ffprobe duration failed for %s", path)
	}

	durationSec, err := strconv.ParseFloat(strings.TrimSpace(res.Stdout), 64)
	if err != nil {
		return 0, wrapError(KindClipProbe, err, "unparseable duration for %s", path)
	}
	if durationSec <= 0 {
		return 0, newError(KindClipProbe, "non-positive duration %g for %s", durationSec, path)
	}

	return durationSec, nil
}
