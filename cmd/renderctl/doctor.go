package main

import (
	"fmt"
	"time"

	"github.com/bobarin/renderpipe/internal/media"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the rendering toolchain is usable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			runner := media.NewRunner(ffmpegPath, ffprobePath, time.Duration(timeoutMinutes)*time.Minute)

			version, err := runner.Version(cmd.Context())
			if err != nil {
				fmt.Printf("ffmpeg:  MISSING (%v)\n", err)
				return fmt.Errorf("ffmpeg not usable")
			}
			fmt.Printf("ffmpeg:  %s\n", version)

			res := runner.RunFFprobe(cmd.Context(), "-version")
			if !res.OK() {
				fmt.Println("ffprobe: MISSING")
				return fmt.Errorf("ffprobe not usable")
			}
			fmt.Println("ffprobe: ok")

			fmt.Printf("platforms: %d registered\n", len(media.PlatformIDs()))
			fmt.Printf("transitions: %d registered\n", len(media.KnownTransitions()))
			fmt.Printf("subtitle styles: %d registered\n", len(media.StylePresetNames()))
			return nil
		},
	}
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List available platforms, transitions, and subtitle styles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "platforms",
		Short: "List platform profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, id := range media.PlatformIDs() {
				profile, err := media.LookupPlatform(id)
				if err != nil {
					return err
				}
				fmt.Printf("%-16s %dx%d@%d  %s/%s  %s\n",
					profile.ID, profile.Width, profile.Height, profile.FPS,
					profile.VideoBitrate, profile.AudioBitrate, profile.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "transitions",
		Short: "List transition effects",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range media.KnownTransitions() {
				fmt.Println(name)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "subtitle-styles",
		Short: "List subtitle style presets",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range media.StylePresetNames() {
				fmt.Println(name)
			}
		},
	})

	return cmd
}
