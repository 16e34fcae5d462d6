package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Enums
type RenderStatus string

const (
	RenderStatusQueued    RenderStatus = "queued"
	RenderStatusRunning   RenderStatus = "running"
	RenderStatusSucceeded RenderStatus = "succeeded"
	RenderStatusFailed    RenderStatus = "failed"
)

// Stage names — the fixed four-stage pipeline order.
const (
	StageMergeClips       = "merge_clips"
	StageAudioMix         = "audio_mix"
	StageSubtitles        = "subtitles"
	StagePlatformOptimize = "platform_optimize"
)

// Request defaults
const (
	DefaultBGMVolume          = 0.2
	DefaultTransitionDuration = 0.5
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// RenderRequest is the queued-job payload for one render. It is constructed
// once per job and consumed exactly once by the pipeline.
type RenderRequest struct {
	VideoClips     []string `json:"video_clips"`
	AudioPath      string   `json:"audio_path"`
	OutputFilename string   `json:"output_filename,omitempty"`
	SubtitlePath   string   `json:"subtitle_path,omitempty"`
	SubtitleStyle  string   `json:"subtitle_style,omitempty"`
	// Transitions must have length len(VideoClips)-1 to take effect; any other
	// length falls back to simple concatenation (never a hard failure).
	Transitions []string `json:"transitions,omitempty"`
	BGMPath     string   `json:"bgm_path,omitempty"`
	// BGMVolume is a pointer so an explicit 0 (muted music) stays distinct
	// from an omitted field, which gets the 0.2 default.
	BGMVolume          *float64 `json:"bgm_volume,omitempty"`
	TransitionDuration float64  `json:"transition_duration"`
	Platform           string   `json:"platform,omitempty"`
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
// Called before Validate so an omitted field is never a validation error.
func (r *RenderRequest) ApplyDefaults() {
	if r.BGMVolume == nil {
		v := DefaultBGMVolume
		r.BGMVolume = &v
	}
	if r.TransitionDuration == 0 {
		r.TransitionDuration = DefaultTransitionDuration
	}
}

// Validate checks the request at construction time. Range checks live here,
// not mid-pipeline: a request that passes Validate never fails later on its
// own numeric fields.
func (r *RenderRequest) Validate() error {
	if len(r.VideoClips) == 0 {
		return fmt.Errorf("video_clips is required")
	}
	for i, clip := range r.VideoClips {
		if clip == "" {
			return fmt.Errorf("video_clips[%d] is empty", i)
		}
	}
	if r.AudioPath == "" {
		return fmt.Errorf("audio_path is required")
	}
	if r.BGMVolume != nil && (*r.BGMVolume < 0 || *r.BGMVolume > 1) {
		return fmt.Errorf("bgm_volume must be in [0,1], got %g", *r.BGMVolume)
	}
	if r.TransitionDuration <= 0 {
		return fmt.Errorf("transition_duration must be > 0, got %g", r.TransitionDuration)
	}
	if r.OutputFilename != "" {
		if r.OutputFilename == "." || r.OutputFilename == ".." ||
			r.OutputFilename != filepath.Base(r.OutputFilename) {
			return fmt.Errorf("output_filename must be a bare file name, got %q", r.OutputFilename)
		}
	}
	return nil
}

// StageReport records what happened in one pipeline stage. A skipped stage
// carries a reason; an executed stage carries its method and elapsed time.
type StageReport struct {
	Skipped bool    `json:"skipped"`
	Reason  string  `json:"reason,omitempty"`
	Method  string  `json:"method,omitempty"`
	Style   string  `json:"style,omitempty"`
	Elapsed float64 `json:"elapsed_seconds,omitempty"`
}

// RenderResult is the terminal outcome of one render request.
type RenderResult struct {
	Status        RenderStatus           `json:"status"`
	OutputPath    string                 `json:"output_path,omitempty"`
	FileSizeBytes int64                  `json:"file_size_bytes,omitempty"`
	RenderTime    float64                `json:"render_time"`
	Steps         map[string]StageReport `json:"steps"`
	ErrorStage    string                 `json:"error_stage,omitempty"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
}

// FileSizeMB reports the output size in megabytes for the response contract.
func (r *RenderResult) FileSizeMB() float64 {
	return float64(r.FileSizeBytes) / (1024 * 1024)
}

// RenderJob is the persisted record of a render request and its result.
type RenderJob struct {
	ID           uuid.UUID     `json:"id"`
	Status       RenderStatus  `json:"status"`
	Request      RenderRequest `json:"request"`
	Result       *RenderResult `json:"result,omitempty"`
	Attempts     int           `json:"attempts"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	OutputURL    *string       `json:"output_url,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// DTOs for API responses

type CreateRenderResponse struct {
	JobID  uuid.UUID    `json:"job_id"`
	Status RenderStatus `json:"status"`
}

// RenderJobResponse is the API view of a job. The embedded result carries the
// response contract fields: status, output_path, render_time, steps.
type RenderJobResponse struct {
	RenderJob
	FileSizeMB *float64 `json:"file_size_mb,omitempty"`
}

type ListRendersResponse struct {
	Renders []RenderJob `json:"renders"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

// HealthResponse is the health-check surface: toolkit version plus whether the
// output directory is writable.
type HealthResponse struct {
	Status            string `json:"status"`
	FFmpegVersion     string `json:"ffmpeg_version,omitempty"`
	FFmpegError       string `json:"ffmpeg_error,omitempty"`
	OutputDirWritable bool   `json:"output_dir_writable"`
	DatabaseOK        bool   `json:"database_ok"`
	QueueOK           bool   `json:"queue_ok"`
}
