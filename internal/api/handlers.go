package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bobarin/renderpipe/internal/db"
	"github.com/bobarin/renderpipe/internal/media"
	"github.com/bobarin/renderpipe/internal/models"
	"github.com/bobarin/renderpipe/internal/queue"
	"github.com/bobarin/renderpipe/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	db        *db.DB
	queue     *queue.Queue
	storage   *storage.Storage
	runner    *media.Runner
	outputDir string
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage, runner *media.Runner, outputDir string) *Handler {
	return &Handler{
		db:        database,
		queue:     q,
		storage:   stor,
		runner:    runner,
		outputDir: outputDir,
	}
}

// CreateRender handles POST /v1/renders
func (h *Handler) CreateRender(w http.ResponseWriter, r *http.Request) {
	var req models.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reject unknown platforms up front: unlike transitions and subtitle
	// presets, a platform typo cannot be silently corrected.
	if req.Platform != "" {
		if _, err := media.LookupPlatform(req.Platform); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	job := &models.RenderJob{
		ID:      uuid.New(),
		Status:  models.RenderStatusQueued,
		Request: req,
	}

	if err := h.db.CreateRenderJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create render job")
		return
	}

	if err := h.queue.EnqueueRender(r.Context(), job.ID, req); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue render job")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateRenderResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}

// ListRenders handles GET /v1/renders
// Query params:
//   - status: filter by render status (queued, running, succeeded, failed)
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) {
	statusFilter := models.RenderStatus(r.URL.Query().Get("status"))
	if statusFilter != "" {
		switch statusFilter {
		case models.RenderStatusQueued, models.RenderStatusRunning,
			models.RenderStatusSucceeded, models.RenderStatusFailed:
			// valid
		default:
			respondError(w, http.StatusBadRequest, "Invalid status filter. Allowed: queued, running, succeeded, failed")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.db.CountRenderJobs(r.Context(), statusFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count renders")
		return
	}

	renders, err := h.db.ListRenderJobs(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list renders")
		return
	}
	if renders == nil {
		renders = []models.RenderJob{}
	}

	respondJSON(w, http.StatusOK, models.ListRendersResponse{
		Renders: renders,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// GetRender handles GET /v1/renders/{id}
func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid render ID")
		return
	}

	job, err := h.db.GetRenderJob(r.Context(), jobID)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Render not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get render")
		return
	}

	response := models.RenderJobResponse{RenderJob: *job}
	if job.Result != nil && job.Result.FileSizeBytes > 0 {
		mb := job.Result.FileSizeMB()
		response.FileSizeMB = &mb
	}

	respondJSON(w, http.StatusOK, response)
}

// GetRenderDownload handles GET /v1/renders/{id}/download
func (h *Handler) GetRenderDownload(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid render ID")
		return
	}

	job, err := h.db.GetRenderJob(r.Context(), jobID)
	if err == db.ErrNotFound {
		respondError(w, http.StatusNotFound, "Render not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get render")
		return
	}

	if job.Status != models.RenderStatusSucceeded || job.Result == nil {
		respondError(w, http.StatusNotFound, "Video not ready")
		return
	}

	// Prefer the uploaded copy; fall back to serving the local file.
	if h.storage.Enabled() && job.OutputURL != nil {
		objectPath := storage.RenderObjectPath(job.ID, filepath.Base(job.Result.OutputPath))
		signedURL, err := h.storage.GetSignedURL(r.Context(), objectPath, 3600)
		if err == nil {
			http.Redirect(w, r, signedURL, http.StatusTemporaryRedirect)
			return
		}
	}

	f, err := os.Open(job.Result.OutputPath)
	if err != nil {
		respondError(w, http.StatusNotFound, "Output file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filepath.Base(job.Result.OutputPath)))
	http.ServeContent(w, r, filepath.Base(job.Result.OutputPath), time.Time{}, f)
}

// ListPlatforms handles GET /v1/presets/platforms
func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"platforms": media.PlatformIDs()})
}

// ListTransitions handles GET /v1/presets/transitions
func (h *Handler) ListTransitions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"transitions": media.KnownTransitions()})
}

// ListSubtitleStyles handles GET /v1/presets/subtitle-styles
func (h *Handler) ListSubtitleStyles(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"subtitle_styles": media.StylePresetNames()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health handles GET /health. Degraded dependencies report status
// "degraded" with detail fields rather than failing the endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok"}

	version, err := h.runner.Version(r.Context())
	if err != nil {
		resp.FFmpegError = err.Error()
	} else {
		resp.FFmpegVersion = version
	}

	resp.OutputDirWritable = dirWritable(h.outputDir)
	resp.DatabaseOK = h.db.PingContext(r.Context()) == nil
	resp.QueueOK = h.queue.Ping(r.Context()) == nil

	if resp.FFmpegError != "" || !resp.OutputDirWritable || !resp.DatabaseOK || !resp.QueueOK {
		resp.Status = "degraded"
	}

	respondJSON(w, http.StatusOK, resp)
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".healthcheck-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
