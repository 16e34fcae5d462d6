package worker

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/bobarin/renderpipe/internal/db"
	"github.com/bobarin/renderpipe/internal/models"
	"github.com/bobarin/renderpipe/internal/queue"
	"github.com/bobarin/renderpipe/internal/renderer"
	"github.com/bobarin/renderpipe/internal/storage"
)

type Worker struct {
	db        *db.DB
	queue     *queue.Queue
	storage   *storage.Storage
	pipeline  *renderer.Pipeline
	uploadSem chan struct{} // Limits concurrent storage uploads to prevent congestion
}

func New(database *db.DB, q *queue.Queue, stor *storage.Storage, pipeline *renderer.Pipeline) *Worker {
	return &Worker{
		db:        database,
		queue:     q,
		storage:   stor,
		pipeline:  pipeline,
		uploadSem: make(chan struct{}, 2), // Allow max 2 concurrent uploads
	}
}

// Start begins processing render jobs. concurrency consumers poll the queue;
// the pipeline's own semaphore bounds actual render parallelism, so extra
// consumers just queue up at the semaphore rather than oversubscribe ffmpeg.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing: %v", err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing render job %s", job.ID)

			if err := w.db.UpdateRenderJobStatus(ctx, job.ID, models.RenderStatusRunning); err != nil {
				log.Printf("Failed to update job status: %v", err)
			}

			if err := w.handleRender(ctx, job); err != nil {
				log.Printf("Render job %s failed: %v", job.ID, err)
			} else {
				log.Printf("Render job %s completed successfully", job.ID)
			}
		}
	}
}

// handleRender runs the pipeline for one job and persists the outcome. The
// result row is written for failures too — the API serves per-stage reports
// either way.
func (w *Worker) handleRender(ctx context.Context, job *queue.Job) error {
	result, renderErr := w.pipeline.Render(ctx, &job.Request)
	if renderErr != nil {
		if err := w.db.UpdateRenderJobResult(ctx, job.ID, result, ""); err != nil {
			log.Printf("Failed to persist result for job %s: %v", job.ID, err)
		}
		if err := w.db.UpdateRenderJobError(ctx, job.ID, renderErr.Error()); err != nil {
			log.Printf("Failed to persist error for job %s: %v", job.ID, err)
		}
		return renderErr
	}

	outputURL := ""
	if w.storage.Enabled() {
		objectPath := storage.RenderObjectPath(job.ID, filepath.Base(result.OutputPath))
		if err := w.uploadWithLimit(ctx, job.ID.String(), func() error {
			return w.storage.UploadFile(ctx, objectPath, result.OutputPath, "video/mp4")
		}); err != nil {
			// The render itself succeeded; keep the local artifact and record
			// the upload failure without failing the job.
			log.Printf("Upload for job %s failed, output kept at %s: %v", job.ID, result.OutputPath, err)
		} else {
			outputURL = w.storage.GetPublicURL(objectPath)
		}
	}

	if err := w.db.UpdateRenderJobResult(ctx, job.ID, result, outputURL); err != nil {
		return fmt.Errorf("failed to persist result: %w", err)
	}
	return nil
}

// uploadWithLimit wraps an upload call with a semaphore to prevent storage congestion.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	log.Printf("[Upload] %s waiting for upload slot...", label)
	select {
	case w.uploadSem <- struct{}{}:
		// Acquired slot
	case <-ctx.Done():
		return fmt.Errorf("upload cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}
