package renderer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobarin/renderpipe/internal/media"
	"github.com/bobarin/renderpipe/internal/models"
)

// touch creates an empty file so path-existence validation passes.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeStages struct {
	probeErr error
	mergeErr error
	mixErr   error
	burnErr  error
	optErr   error

	merged    bool
	mixed     bool
	burned    bool
	optimized bool

	burnStyle media.SubtitleStyle
}

func (f *fakeStages) ProbeClip(ctx context.Context, path string) (media.VideoClip, error) {
	if f.probeErr != nil {
		return media.VideoClip{}, f.probeErr
	}
	return media.VideoClip{Path: path, Duration: 5, Codec: "h264"}, nil
}

func (f *fakeStages) Merge(ctx context.Context, clips []media.VideoClip, transitions []string, transitionDuration float64, outputPath string) (string, string, error) {
	if f.mergeErr != nil {
		return "", "", f.mergeErr
	}
	f.merged = true
	if err := os.WriteFile(outputPath, []byte("merged"), 0644); err != nil {
		return "", "", err
	}
	return outputPath, media.MergeMethodTransitions, nil
}

func (f *fakeStages) Mix(ctx context.Context, videoPath, narrationPath, bgmPath string, bgmVolume float64, outputPath string) error {
	if f.mixErr != nil {
		return f.mixErr
	}
	f.mixed = true
	return os.WriteFile(outputPath, []byte("mixed"), 0644)
}

func (f *fakeStages) Burn(ctx context.Context, videoPath, subtitlePath string, style media.SubtitleStyle, outputPath string) error {
	if f.burnErr != nil {
		return f.burnErr
	}
	f.burned = true
	f.burnStyle = style
	return os.WriteFile(outputPath, []byte("subtitled"), 0644)
}

func (f *fakeStages) Optimize(ctx context.Context, videoPath, platformID, outputPath string) error {
	if f.optErr != nil {
		return f.optErr
	}
	f.optimized = true
	return os.WriteFile(outputPath, []byte("optimized"), 0644)
}

func newTestPipeline(t *testing.T, fakes *fakeStages) (*Pipeline, string) {
	t.Helper()
	workDir := filepath.Join(t.TempDir(), "work")
	outputDir := filepath.Join(t.TempDir(), "out")
	p, err := New(fakes, fakes, fakes, fakes, fakes, workDir, outputDir, 1)
	if err != nil {
		t.Fatal(err)
	}
	return p, workDir
}

func TestRenderSingleClipSkipsOptionalStages(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{}
	p, workDir := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{touch(t, inputs, "clip.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		OutputFilename:     "final.mp4",
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.RenderStatusSucceeded {
		t.Fatalf("status = %q", result.Status)
	}

	if fakes.merged {
		t.Error("merge should not run for a single clip")
	}
	if !fakes.mixed {
		t.Error("audio mix must always run")
	}
	if fakes.burned || fakes.optimized {
		t.Error("subtitles and optimize should be skipped")
	}

	merge := result.Steps[models.StageMergeClips]
	if !merge.Skipped || merge.Reason != "single clip" {
		t.Errorf("merge report = %+v", merge)
	}
	if !result.Steps[models.StageSubtitles].Skipped {
		t.Error("subtitles report should be skipped")
	}
	opt := result.Steps[models.StagePlatformOptimize]
	if !opt.Skipped || opt.Reason != "no platform specified" {
		t.Errorf("optimize report = %+v", opt)
	}

	// No platform: the mixed artifact is delivered verbatim.
	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(data) != "mixed" {
		t.Errorf("output content %q, want the audio-mix artifact", data)
	}
	if result.FileSizeBytes == 0 {
		t.Error("file size not recorded")
	}

	// Success deletes the per-job work directory.
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Errorf("work dir not cleaned up: %d entries", len(entries))
	}
}

func TestRenderFullPipeline(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{}
	p, _ := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips: []string{
			touch(t, inputs, "a.mp4"),
			touch(t, inputs, "b.mp4"),
			touch(t, inputs, "c.mp4"),
		},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		BGMPath:            touch(t, inputs, "music.mp3"),
		SubtitlePath:       touch(t, inputs, "captions.srt"),
		SubtitleStyle:      "tiktok",
		Transitions:        []string{"fade", "wipeleft"},
		Platform:           "tiktok",
		OutputFilename:     "final.mp4",
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !fakes.merged || !fakes.mixed || !fakes.burned || !fakes.optimized {
		t.Errorf("stage execution: merged=%v mixed=%v burned=%v optimized=%v",
			fakes.merged, fakes.mixed, fakes.burned, fakes.optimized)
	}

	if result.Steps[models.StageMergeClips].Method != media.MergeMethodTransitions {
		t.Errorf("merge method = %q", result.Steps[models.StageMergeClips].Method)
	}
	if result.Steps[models.StageAudioMix].Method != "narration+bgm" {
		t.Errorf("mix method = %q", result.Steps[models.StageAudioMix].Method)
	}
	if result.Steps[models.StageSubtitles].Style != "tiktok" {
		t.Errorf("subtitle style = %q", result.Steps[models.StageSubtitles].Style)
	}
	if fakes.burnStyle.Alignment != media.AlignCenter {
		t.Errorf("tiktok preset not resolved, got %+v", fakes.burnStyle)
	}
	if result.Steps[models.StagePlatformOptimize].Method != "tiktok" {
		t.Errorf("optimize method = %q", result.Steps[models.StagePlatformOptimize].Method)
	}
}

func TestRenderFailureAbortsAndKeepsIntermediates(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{mixErr: errors.New("amix blew up")}
	p, workDir := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{touch(t, inputs, "a.mp4"), touch(t, inputs, "b.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		SubtitlePath:       touch(t, inputs, "captions.srt"),
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}

	if result.Status != models.RenderStatusFailed {
		t.Errorf("status = %q", result.Status)
	}
	if result.ErrorStage != models.StageAudioMix {
		t.Errorf("error stage = %q, want audio_mix", result.ErrorStage)
	}
	if fakes.burned {
		t.Error("subtitles must not run after audio mix fails")
	}

	// Completed stage reports survive into the failure result.
	if result.Steps[models.StageMergeClips].Method != media.MergeMethodTransitions {
		t.Errorf("merge report lost: %+v", result.Steps)
	}

	// Intermediates are retained for inspection.
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 1 {
		t.Errorf("expected retained work dir, found %d entries", len(entries))
	}
}

func TestRenderUnknownPlatformFailsBeforeStages(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{}
	p, _ := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{touch(t, inputs, "a.mp4"), touch(t, inputs, "b.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		Platform:           "myspace",
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if media.KindOf(err) != media.KindUnknownPlatform {
		t.Errorf("kind = %q, want unknown_platform", media.KindOf(err))
	}
	if result.ErrorStage != models.StagePlatformOptimize {
		t.Errorf("error stage = %q", result.ErrorStage)
	}
	if fakes.merged || fakes.mixed {
		t.Error("no stage should run when the platform is unknown")
	}
}

func TestRenderMissingInputFails(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{}
	p, _ := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{filepath.Join(inputs, "missing.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.ErrorStage != "validation" {
		t.Errorf("error stage = %q, want validation", result.ErrorStage)
	}
	if fakes.mixed {
		t.Error("no stage should run when inputs are missing")
	}
}

func TestRenderProbeFailureReportsMergeStage(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{probeErr: errors.New("unreadable stream")}
	p, _ := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{touch(t, inputs, "a.mp4"), touch(t, inputs, "b.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.ErrorStage != models.StageMergeClips {
		t.Errorf("error stage = %q, want merge_clips", result.ErrorStage)
	}
}

func TestRenderOutputFilenameConfinedToOutputDir(t *testing.T) {
	inputs := t.TempDir()
	fakes := &fakeStages{}
	p, _ := newTestPipeline(t, fakes)

	req := &models.RenderRequest{
		VideoClips:         []string{touch(t, inputs, "clip.mp4")},
		AudioPath:          touch(t, inputs, "voice.mp3"),
		OutputFilename:     "../../escape.mp4",
		TransitionDuration: 0.5,
	}

	result, err := p.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Directory components in the requested filename are stripped; the
	// artifact always lands directly inside the configured output dir.
	if filepath.Dir(result.OutputPath) != p.outputDir {
		t.Errorf("output written outside output dir: %s", result.OutputPath)
	}
	if filepath.Base(result.OutputPath) != "escape.mp4" {
		t.Errorf("output name = %s", filepath.Base(result.OutputPath))
	}
	if _, err := os.Stat(filepath.Join(p.outputDir, "escape.mp4")); err != nil {
		t.Errorf("sanitized output missing: %v", err)
	}
}
