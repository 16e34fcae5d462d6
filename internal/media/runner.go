package media

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"strings"
	"time"
)

const (
	// Tail of stderr kept for diagnostics — enough for ffmpeg's error summary
	// without buffering its full progress spew.
	maxStderrBytes = 8 * 1024

	// DefaultTimeout bounds a single ffmpeg/ffprobe invocation. Configurable
	// per Runner via FFMPEG_TIMEOUT_MINUTES.
	DefaultTimeout = 15 * time.Minute
)

// RunResult is the structured outcome of one subprocess invocation.
type RunResult struct {
	ExitCode   int
	Stdout     string
	StderrTail string
	Duration   time.Duration
	Err        error
}

// OK reports whether the invocation ran and exited zero.
func (r RunResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner executes ffmpeg/ffprobe invocations with a bounded timeout and
// captures a structured result. One Runner is created at process start and
// shared by all stages; it holds no mutable state.
type Runner struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
}

// NewRunner resolves the toolkit binaries on PATH. Empty paths default to
// "ffmpeg"/"ffprobe"; a zero timeout defaults to DefaultTimeout.
func NewRunner(ffmpegPath, ffprobePath string, timeout time.Duration) *Runner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
	}
}

// RunFFmpeg executes ffmpeg with the given arguments.
func (r *Runner) RunFFmpeg(ctx context.Context, args ...string) RunResult {
	return r.run(ctx, r.ffmpegPath, args)
}

// RunFFprobe executes ffprobe with the given arguments.
func (r *Runner) RunFFprobe(ctx context.Context, args ...string) RunResult {
	return r.run(ctx, r.ffprobePath, args)
}

func (r *Runner) run(ctx context.Context, bin string, args []string) RunResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout bytes.Buffer
	tail := &tailBuffer{limit: maxStderrBytes}
	cmd.Stdout = &stdout
	cmd.Stderr = tail

	log.Printf("[FFmpeg] %s %s", bin, strings.Join(args, " "))

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			err = nil // exit status is carried in ExitCode, not Err
		} else {
			exitCode = -1
		}
	}

	return RunResult{
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		StderrTail: strings.TrimSpace(tail.String()),
		Duration:   elapsed,
		Err:        err,
	}
}

// Version returns the installed ffmpeg version line for the health check.
func (r *Runner) Version(ctx context.Context) (string, error) {
	res := r.RunFFmpeg(ctx, "-version")
	if !res.OK() {
		return "", subprocessError(KindSubprocess, res, "ffmpeg -version failed")
	}
	// First line: "ffmpeg version N.N ..."
	line := res.Stdout
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line), nil
}

// tailBuffer keeps only the last `limit` bytes written. ffmpeg prints its
// actionable error at the end of a long progress stream, so the tail is the
// part worth keeping when output overflows the cap.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		copy(t.buf, t.buf[over:])
		t.buf = t.buf[:t.limit]
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
