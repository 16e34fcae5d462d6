package renderer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bobarin/renderpipe/internal/media"
	"github.com/bobarin/renderpipe/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage interfaces — the pipeline depends on behavior, not on the concrete
// ffmpeg-backed types, so tests can substitute fakes.

type Prober interface {
	ProbeClip(ctx context.Context, path string) (media.VideoClip, error)
}

type Merger interface {
	Merge(ctx context.Context, clips []media.VideoClip, transitions []string, transitionDuration float64, outputPath string) (string, string, error)
}

type Mixer interface {
	Mix(ctx context.Context, videoPath, narrationPath, bgmPath string, bgmVolume float64, outputPath string) error
}

type Burner interface {
	Burn(ctx context.Context, videoPath, subtitlePath string, style media.SubtitleStyle, outputPath string) error
}

type Optimizer interface {
	Optimize(ctx context.Context, videoPath, platformID, outputPath string) error
}

// Pipeline sequences the four render stages. It is constructed once at
// process start and shared by all renders; per-request state lives entirely
// on the stack and in a per-request work directory, so concurrent renders
// never contend on anything but CPU and disk.
type Pipeline struct {
	prober    Prober
	merger    Merger
	mixer     Mixer
	burner    Burner
	optimizer Optimizer

	workDir   string
	outputDir string
	renderSem chan struct{} // bounds concurrent renders across the process
}

// New wires a pipeline from its stages. maxConcurrent bounds how many
// renders may execute simultaneously; callers beyond the bound block.
func New(prober Prober, merger Merger, mixer Mixer, burner Burner, optimizer Optimizer, workDir, outputDir string, maxConcurrent int) (*Pipeline, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	for _, dir := range []string{workDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &Pipeline{
		prober:    prober,
		merger:    merger,
		mixer:     mixer,
		burner:    burner,
		optimizer: optimizer,
		workDir:   workDir,
		outputDir: outputDir,
		renderSem: make(chan struct{}, maxConcurrent),
	}, nil
}

// Render consumes one request and produces exactly one result. Within the
// request, stages run strictly sequentially — each consumes the previous
// stage's output file. On failure the per-request work directory is left in
// place for post-mortem inspection; on success it is deleted.
func (p *Pipeline) Render(ctx context.Context, req *models.RenderRequest) (*models.RenderResult, error) {
	select {
	case p.renderSem <- struct{}{}:
	case <-ctx.Done():
		return failure("", ctx.Err()), ctx.Err()
	}
	defer func() { <-p.renderSem }()

	start := time.Now()
	steps := make(map[string]models.StageReport)

	fail := func(stage string, err error) (*models.RenderResult, error) {
		result := failure(stage, err)
		result.Steps = steps
		result.RenderTime = time.Since(start).Seconds()
		log.Printf("[Render] FAILED at %s after %.1fs: %v", stage, result.RenderTime, err)
		return result, err
	}

	// Pre-flight: every referenced path must exist before any stage runs,
	// and a requested platform must be in the registry — there is no point
	// rendering for minutes only to fail at the last stage.
	if err := p.validatePaths(req); err != nil {
		return fail("validation", err)
	}
	if req.Platform != "" {
		if _, err := media.LookupPlatform(req.Platform); err != nil {
			return fail(models.StagePlatformOptimize, err)
		}
	}

	jobDir := filepath.Join(p.workDir, uuid.New().String())
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fail("validation", fmt.Errorf("failed to create work dir: %w", err))
	}

	// filepath.Base strips any directory components an API caller smuggles
	// into the filename; the final artifact always lands inside outputDir.
	outputPath := filepath.Join(p.outputDir, filepath.Base(req.OutputFilename))
	if req.OutputFilename == "" {
		outputPath = filepath.Join(p.outputDir, fmt.Sprintf("render_%s.mp4", uuid.New().String()))
	}

	// Probe all clips up front — durations drive the transition offsets.
	clips, err := p.probeClips(ctx, req.VideoClips)
	if err != nil {
		return fail(models.StageMergeClips, err)
	}

	// ── Stage 1: merge ────────────────────────────────────────────────
	current := clips[0].Path
	if len(clips) == 1 {
		steps[models.StageMergeClips] = models.StageReport{Skipped: true, Reason: "single clip", Method: media.MergeMethodNone}
		log.Printf("[Render] Single clip, skipping merge")
	} else {
		stageStart := time.Now()
		merged, method, err := p.merger.Merge(ctx, clips, req.Transitions, req.TransitionDuration, filepath.Join(jobDir, "merged.mp4"))
		if err != nil {
			return fail(models.StageMergeClips, err)
		}
		current = merged
		steps[models.StageMergeClips] = models.StageReport{Method: method, Elapsed: time.Since(stageStart).Seconds()}
	}

	// ── Stage 2: audio mix (always runs — audio is mandatory) ─────────
	{
		stageStart := time.Now()
		bgmVolume := models.DefaultBGMVolume
		if req.BGMVolume != nil {
			bgmVolume = *req.BGMVolume
		}
		mixed := filepath.Join(jobDir, "mixed.mp4")
		if err := p.mixer.Mix(ctx, current, req.AudioPath, req.BGMPath, bgmVolume, mixed); err != nil {
			return fail(models.StageAudioMix, err)
		}
		current = mixed
		method := "narration"
		if req.BGMPath != "" {
			method = "narration+bgm"
		}
		steps[models.StageAudioMix] = models.StageReport{Method: method, Elapsed: time.Since(stageStart).Seconds()}
	}

	// ── Stage 3: subtitles (skipped when no caption file) ─────────────
	if req.SubtitlePath == "" {
		steps[models.StageSubtitles] = models.StageReport{Skipped: true, Reason: "no subtitle file"}
	} else {
		stageStart := time.Now()
		style, styleName := media.ResolveStylePreset(req.SubtitleStyle)
		burned := filepath.Join(jobDir, "subtitled.mp4")
		if err := p.burner.Burn(ctx, current, req.SubtitlePath, style, burned); err != nil {
			return fail(models.StageSubtitles, err)
		}
		current = burned
		steps[models.StageSubtitles] = models.StageReport{Style: styleName, Elapsed: time.Since(stageStart).Seconds()}
	}

	// ── Stage 4: platform optimize (skipped when no platform) ─────────
	if req.Platform == "" {
		if err := copyFile(current, outputPath); err != nil {
			return fail(models.StagePlatformOptimize, fmt.Errorf("failed to copy final artifact: %w", err))
		}
		steps[models.StagePlatformOptimize] = models.StageReport{Skipped: true, Reason: "no platform specified"}
	} else {
		stageStart := time.Now()
		if err := p.optimizer.Optimize(ctx, current, req.Platform, outputPath); err != nil {
			return fail(models.StagePlatformOptimize, err)
		}
		steps[models.StagePlatformOptimize] = models.StageReport{Method: req.Platform, Elapsed: time.Since(stageStart).Seconds()}
	}

	// Success: intermediates are no longer needed.
	if err := os.RemoveAll(jobDir); err != nil {
		log.Printf("[Render] Warning: failed to clean up work dir %s: %v", jobDir, err)
	}

	var fileSize int64
	if info, err := os.Stat(outputPath); err == nil {
		fileSize = info.Size()
	}

	result := &models.RenderResult{
		Status:        models.RenderStatusSucceeded,
		OutputPath:    outputPath,
		FileSizeBytes: fileSize,
		RenderTime:    time.Since(start).Seconds(),
		Steps:         steps,
	}
	log.Printf("[Render] Completed in %.1fs (%d bytes) -> %s", result.RenderTime, fileSize, outputPath)
	return result, nil
}

// validatePaths checks that every file the request references exists.
func (p *Pipeline) validatePaths(req *models.RenderRequest) error {
	paths := append([]string{}, req.VideoClips...)
	paths = append(paths, req.AudioPath)
	if req.SubtitlePath != "" {
		paths = append(paths, req.SubtitlePath)
	}
	if req.BGMPath != "" {
		paths = append(paths, req.BGMPath)
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input file not found: %s", path)
		}
	}
	return nil
}

// probeClips probes all input clips concurrently. Probing is cheap relative
// to rendering, but with many clips the round trips add up.
func (p *Pipeline) probeClips(ctx context.Context, paths []string) ([]media.VideoClip, error) {
	clips := make([]media.VideoClip, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			clip, err := p.prober.ProbeClip(gctx, path)
			if err != nil {
				return err
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return clips, nil
}

func failure(stage string, err error) *models.RenderResult {
	return &models.RenderResult{
		Status:       models.RenderStatusFailed,
		ErrorStage:   stage,
		ErrorMessage: err.Error(),
		Steps:        map[string]models.StageReport{},
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
