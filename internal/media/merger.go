package media

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Merge methods — recorded into the stage metadata so callers can see which
// path was taken.
const (
	MergeMethodNone        = "none"
	MergeMethodConcat      = "concat"
	MergeMethodTransitions = "transitions"
)

// Merger combines N ordered clips into one video. With a valid transition
// list it builds a chained crossfade graph; otherwise it falls back to a
// lossless concat demuxer join.
type Merger struct {
	runner *Runner
}

func NewMerger(runner *Runner) *Merger {
	return &Merger{runner: runner}
}

// Merge combines clips into outputPath and returns the method used.
//
// Policy, not error: a transition list whose length is not len(clips)-1 is
// ignored and the clips are simply concatenated. A single clip is a no-op —
// the clip's own path is returned untouched.
func (m *Merger) Merge(ctx context.Context, clips []VideoClip, transitions []string, transitionDuration float64, outputPath string) (string, string, error) {
	if len(clips) == 0 {
		return "", "", newError(KindClipProbe, "no clips to merge")
	}

	switch MergeMethodFor(len(clips), len(transitions)) {
	case MergeMethodNone:
		return clips[0].Path, MergeMethodNone, nil

	case MergeMethodConcat:
		if len(transitions) > 0 {
			log.Printf("[Merge] Transition count mismatch (%d transitions for %d clips), falling back to concatenation",
				len(transitions), len(clips))
		}
		if err := m.concat(ctx, clips, outputPath); err != nil {
			return "", "", err
		}
		return outputPath, MergeMethodConcat, nil

	default:
		if err := m.crossfade(ctx, clips, transitions, transitionDuration, outputPath); err != nil {
			return "", "", err
		}
		return outputPath, MergeMethodTransitions, nil
	}
}

// MergeMethodFor decides how a clip set is merged: a single clip is a no-op,
// a transition list of exactly clipCount-1 entries gets the crossfade chain,
// anything else concatenates.
func MergeMethodFor(clipCount, transitionCount int) string {
	switch {
	case clipCount <= 1:
		return MergeMethodNone
	case transitionCount != clipCount-1:
		return MergeMethodConcat
	default:
		return MergeMethodTransitions
	}
}

// concat joins clips losslessly with the concat demuxer. Stream copy is only
// valid when every clip shares the same codec, so incompatible inputs are
// rejected up front as a probe failure rather than a cryptic demuxer error.
func (m *Merger) concat(ctx context.Context, clips []VideoClip, outputPath string) error {
	codec := clips[0].Codec
	for _, clip := range clips[1:] {
		if clip.Codec != codec {
			return newError(KindClipProbe,
				"clip %s codec %q incompatible with stream copy (first clip is %q)",
				clip.Path, clip.Codec, codec)
		}
	}

	listPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_concat.txt"
	f, err := os.Create(listPath)
	if err != nil {
		return wrapError(KindSubprocess, err, "failed to create concat list")
	}
	for _, clip := range clips {
		abs, err := filepath.Abs(clip.Path)
		if err != nil {
			abs = clip.Path
		}
		// Concat demuxer format; single quotes in paths are escaped.
		fmt.Fprintf(f, "file '%s'\n", strings.ReplaceAll(abs, "'", "'\\''"))
	}
	f.Close()
	defer os.Remove(listPath)

	res := m.runner.RunFFmpeg(ctx,
		"-hide_banner", "-v", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outputPath,
	)
	if !res.OK() {
		return subprocessError(KindSubprocess, res, "concat of %d clips failed", len(clips))
	}

	log.Printf("[Merge] Concatenated %d clips (stream copy) in %.1fs", len(clips), res.Duration.Seconds())
	return nil
}

// crossfade builds the chained xfade graph. Each transition node consumes the
// running merged stream and the next clip; offsets accumulate as the running
// sum of clip durations minus the per-transition overlap. Frame blending
// forces a re-encode — stream copy is not possible on this path.
func (m *Merger) crossfade(ctx context.Context, clips []VideoClip, transitions []string, transitionDuration float64, outputPath string) error {
	durations := make([]float64, len(clips))
	for i, clip := range clips {
		durations[i] = clip.Duration
	}
	offsets := TransitionOffsets(durations, transitionDuration)

	var graph Graph
	prev := "0:v"
	for i, name := range transitions {
		out := fmt.Sprintf("v%d", i+1)
		graph.Add(XFade(prev, fmt.Sprintf("%d:v", i+1), out, ResolveTransition(name), transitionDuration, offsets[i]))
		prev = out
	}

	args := []string{"-hide_banner", "-v", "error"}
	for _, clip := range clips {
		args = append(args, "-i", clip.Path)
	}
	args = append(args,
		"-filter_complex", graph.String(),
		"-map", "["+prev+"]",
		"-an", // narration replaces audio downstream; clip audio is dropped here
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-y",
		outputPath,
	)

	res := m.runner.RunFFmpeg(ctx, args...)
	if !res.OK() {
		return subprocessError(KindSubprocess, res, "crossfade merge of %d clips failed", len(clips))
	}

	log.Printf("[Merge] Merged %d clips with %d transitions in %.1fs", len(clips), len(transitions), res.Duration.Seconds())
	return nil
}

// TransitionOffsets computes the xfade start offsets for a transition chain:
//
//	offset[0] = d[0] - t
//	offset[i] = offset[i-1] + d[i] - t
//
// The offsets are strictly increasing whenever each clip is longer than the
// transition overlap.
func TransitionOffsets(durations []float64, transitionDuration float64) []float64 {
	if len(durations) < 2 {
		return nil
	}
	offsets := make([]float64, len(durations)-1)
	offsets[0] = durations[0] - transitionDuration
	for i := 1; i < len(offsets); i++ {
		offsets[i] = offsets[i-1] + durations[i] - transitionDuration
	}
	return offsets
}
