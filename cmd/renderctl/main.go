// renderctl is the operator CLI: run a render locally without the API
// server, queue, or database, and inspect the available presets.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	ffmpegPath     string
	ffprobePath    string
	timeoutMinutes int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renderctl",
		Short: "Render pipeline CLI",
	}

	cmd.PersistentFlags().StringVar(&ffmpegPath, "ffmpeg", "ffmpeg", "Path to the ffmpeg binary")
	cmd.PersistentFlags().StringVar(&ffprobePath, "ffprobe", "ffprobe", "Path to the ffprobe binary")
	cmd.PersistentFlags().IntVar(&timeoutMinutes, "timeout", 15, "Per-invocation ffmpeg timeout in minutes")

	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newPresetsCmd())

	return cmd
}
