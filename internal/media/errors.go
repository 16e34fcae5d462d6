package media

import (
	"errors"
	"fmt"
)

// Kind is the closed set of fatal failure classes in the media pipeline.
// Degradable issues (unknown transition name, unknown subtitle preset,
// transition-count mismatch) never become a Kind — they are corrected in
// place with a logged warning and the render continues.
type Kind string

const (
	// KindClipProbe — a clip's duration or codec could not be read, or its
	// codec parameters are incompatible with stream copy.
	KindClipProbe Kind = "clip_probe"
	// KindAudioMix — the audio mixing invocation failed. Audio is mandatory,
	// so there is no degraded fallback.
	KindAudioMix Kind = "audio_mix"
	// KindSubtitleRender — the caption file could not be parsed or the burn-in
	// invocation failed.
	KindSubtitleRender Kind = "subtitle_render"
	// KindUnknownPlatform — the requested platform is not in the registry.
	// There is no safe default resolution to assume.
	KindUnknownPlatform Kind = "unknown_platform"
	// KindSubprocess — the external tool exited non-zero (or could not start).
	KindSubprocess Kind = "subprocess"
)

// Error is the structured pipeline error: a closed kind, the message, and —
// for subprocess failures — the exit code and a bounded stderr tail mapped
// deterministically from the tool invocation.
type Error struct {
	Kind       Kind
	Message    string
	ExitCode   int
	StderrTail string
	Err        error
}

func (e *Error) Error() string {
	if e.StderrTail != "" {
		return fmt.Sprintf("%s: %s (exit %d): %s", e.Kind, e.Message, e.ExitCode, e.StderrTail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the pipeline error kind of err, or "" if err is not a
// pipeline error.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// subprocessError maps a failed RunResult to the error taxonomy: the stage's
// own kind when the tool ran and exited non-zero, KindSubprocess when the
// tool could not be started at all.
func subprocessError(kind Kind, res RunResult, format string, args ...interface{}) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		ExitCode:   res.ExitCode,
		StderrTail: res.StderrTail,
		Err:        res.Err,
	}
}
