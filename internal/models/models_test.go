package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestApplyDefaults(t *testing.T) {
	req := RenderRequest{
		VideoClips: []string{"a.mp4"},
		AudioPath:  "voice.mp3",
	}
	req.ApplyDefaults()

	if req.BGMVolume == nil || *req.BGMVolume != DefaultBGMVolume {
		t.Errorf("expected bgm_volume %g, got %v", DefaultBGMVolume, req.BGMVolume)
	}
	if req.TransitionDuration != DefaultTransitionDuration {
		t.Errorf("expected transition_duration %g, got %g", DefaultTransitionDuration, req.TransitionDuration)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	req := RenderRequest{
		VideoClips:         []string{"a.mp4"},
		AudioPath:          "voice.mp3",
		BGMVolume:          floatPtr(0.5),
		TransitionDuration: 1.25,
	}
	req.ApplyDefaults()

	if *req.BGMVolume != 0.5 {
		t.Errorf("explicit bgm_volume overwritten: %g", *req.BGMVolume)
	}
	if req.TransitionDuration != 1.25 {
		t.Errorf("explicit transition_duration overwritten: %g", req.TransitionDuration)
	}
}

func TestApplyDefaultsKeepsMutedBGM(t *testing.T) {
	// 0 is a valid volume (muted music) and must survive defaulting.
	req := RenderRequest{
		VideoClips: []string{"a.mp4"},
		AudioPath:  "voice.mp3",
		BGMPath:    "music.mp3",
		BGMVolume:  floatPtr(0),
	}
	req.ApplyDefaults()

	if *req.BGMVolume != 0 {
		t.Errorf("explicit bgm_volume=0 became %g", *req.BGMVolume)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("muted bgm should validate: %v", err)
	}
}

func TestBGMVolumeJSONRoundTrip(t *testing.T) {
	var req RenderRequest
	if err := json.Unmarshal([]byte(`{"video_clips":["a.mp4"],"audio_path":"v.mp3","bgm_volume":0}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.BGMVolume == nil || *req.BGMVolume != 0 {
		t.Errorf("explicit bgm_volume:0 decoded as %v", req.BGMVolume)
	}

	var omitted RenderRequest
	if err := json.Unmarshal([]byte(`{"video_clips":["a.mp4"],"audio_path":"v.mp3"}`), &omitted); err != nil {
		t.Fatal(err)
	}
	if omitted.BGMVolume != nil {
		t.Errorf("omitted bgm_volume decoded as %v", omitted.BGMVolume)
	}
}

func TestValidate(t *testing.T) {
	valid := RenderRequest{
		VideoClips:         []string{"a.mp4", "b.mp4"},
		AudioPath:          "voice.mp3",
		BGMVolume:          floatPtr(0.2),
		TransitionDuration: 0.5,
	}

	tests := []struct {
		name    string
		mutate  func(*RenderRequest)
		wantErr string
	}{
		{"valid", func(r *RenderRequest) {}, ""},
		{"no clips", func(r *RenderRequest) { r.VideoClips = nil }, "video_clips"},
		{"empty clip path", func(r *RenderRequest) { r.VideoClips = []string{"a.mp4", ""} }, "video_clips[1]"},
		{"no audio", func(r *RenderRequest) { r.AudioPath = "" }, "audio_path"},
		{"bgm volume too high", func(r *RenderRequest) { r.BGMVolume = floatPtr(1.5) }, "bgm_volume"},
		{"bgm volume negative", func(r *RenderRequest) { r.BGMVolume = floatPtr(-0.1) }, "bgm_volume"},
		{"zero transition duration", func(r *RenderRequest) { r.TransitionDuration = 0 }, "transition_duration"},
		{"output filename with directory", func(r *RenderRequest) { r.OutputFilename = "../../evil.mp4" }, "output_filename"},
		{"output filename with separator", func(r *RenderRequest) { r.OutputFilename = "sub/final.mp4" }, "output_filename"},
		{"output filename dot-dot", func(r *RenderRequest) { r.OutputFilename = ".." }, "output_filename"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.VideoClips = append([]string{}, valid.VideoClips...)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	statuses := []RenderStatus{
		RenderStatusQueued,
		RenderStatusRunning,
		RenderStatusSucceeded,
		RenderStatusFailed,
	}

	for _, status := range statuses {
		if status == "" {
			t.Errorf("empty status found")
		}
	}
}

func TestFileSizeMB(t *testing.T) {
	result := RenderResult{FileSizeBytes: 5 * 1024 * 1024}
	if result.FileSizeMB() != 5 {
		t.Errorf("expected 5 MB, got %g", result.FileSizeMB())
	}
}
