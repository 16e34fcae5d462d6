package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bobarin/renderpipe/internal/media"
	"github.com/bobarin/renderpipe/internal/models"
	"github.com/bobarin/renderpipe/internal/renderer"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var req models.RenderRequest
	var bgmVolume float64
	var workDir, outputDir, overridesPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run one render locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if overridesPath != "" {
				if err := media.LoadRegistryOverrides(overridesPath); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("bgm-volume") {
				req.BGMVolume = &bgmVolume
			}
			req.ApplyDefaults()
			if err := req.Validate(); err != nil {
				return err
			}

			runner := media.NewRunner(ffmpegPath, ffprobePath, time.Duration(timeoutMinutes)*time.Minute)
			pipeline, err := renderer.New(
				media.NewProber(runner),
				media.NewMerger(runner),
				media.NewMixer(runner),
				media.NewBurner(runner),
				media.NewOptimizer(runner),
				workDir,
				outputDir,
				1,
			)
			if err != nil {
				return err
			}

			result, renderErr := pipeline.Render(cmd.Context(), &req)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if renderErr != nil {
				return fmt.Errorf("render failed at %s", result.ErrorStage)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&req.VideoClips, "clip", nil, "Input clip path (repeatable, ordered)")
	cmd.Flags().StringVar(&req.AudioPath, "audio", "", "Narration audio path (required)")
	cmd.Flags().StringVar(&req.BGMPath, "bgm", "", "Background music path")
	cmd.Flags().Float64Var(&bgmVolume, "bgm-volume", models.DefaultBGMVolume, "Background music volume in [0,1]")
	cmd.Flags().StringVar(&req.SubtitlePath, "subtitles", "", "SRT caption file to burn in")
	cmd.Flags().StringVar(&req.SubtitleStyle, "style", "", "Subtitle style preset name")
	cmd.Flags().StringSliceVar(&req.Transitions, "transition", nil, "Transition between consecutive clips (repeatable)")
	cmd.Flags().Float64Var(&req.TransitionDuration, "transition-duration", 0, "Crossfade duration in seconds")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "Target platform profile")
	cmd.Flags().StringVar(&req.OutputFilename, "output", "", "Output filename")
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "Directory for intermediate files")
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory for the final video")
	cmd.Flags().StringVar(&overridesPath, "registry-overrides", "", "YAML file with extra platforms/presets")

	cmd.MarkFlagRequired("clip")
	cmd.MarkFlagRequired("audio")

	return cmd
}
