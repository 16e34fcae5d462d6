package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobarin/renderpipe/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a render job does not exist.
var ErrNotFound = fmt.Errorf("render job not found")

func (db *DB) CreateRenderJob(ctx context.Context, job *models.RenderJob) error {
	requestJSON, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	query := `
		INSERT INTO render_jobs (
			id, status, request, attempts
		) VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.Status, requestJSON, job.Attempts,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (db *DB) GetRenderJob(ctx context.Context, id uuid.UUID) (*models.RenderJob, error) {
	query := `
		SELECT
			id, status, request, result, attempts,
			started_at, finished_at, error_message, output_url,
			created_at, updated_at
		FROM render_jobs
		WHERE id = $1
	`

	job, err := scanRenderJob(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get render job: %w", err)
	}

	return job, nil
}

// ListRenderJobs returns jobs newest first, optionally filtered by status.
func (db *DB) ListRenderJobs(ctx context.Context, status models.RenderStatus, limit, offset int) ([]models.RenderJob, error) {
	query := `
		SELECT
			id, status, request, result, attempts,
			started_at, finished_at, error_message, output_url,
			created_at, updated_at
		FROM render_jobs
	`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query render jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.RenderJob
	for rows.Next() {
		job, err := scanRenderJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan render job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

func (db *DB) CountRenderJobs(ctx context.Context, status models.RenderStatus) (int, error) {
	query := `SELECT COUNT(*) FROM render_jobs`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count render jobs: %w", err)
	}
	return count, nil
}

func (db *DB) UpdateRenderJobStatus(ctx context.Context, id uuid.UUID, status models.RenderStatus) error {
	now := time.Now()
	query := `UPDATE render_jobs SET status = $1, started_at = $2, updated_at = $2 WHERE id = $3`

	if status == models.RenderStatusSucceeded || status == models.RenderStatusFailed {
		query = `UPDATE render_jobs SET status = $1, finished_at = $2, updated_at = $2 WHERE id = $3`
	}

	_, err := db.ExecContext(ctx, query, status, now, id)
	return err
}

// UpdateRenderJobResult records a completed render, success or failure.
func (db *DB) UpdateRenderJobResult(ctx context.Context, id uuid.UUID, result *models.RenderResult, outputURL string) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var url *string
	if outputURL != "" {
		url = &outputURL
	}

	query := `
		UPDATE render_jobs
		SET status = $1, result = $2, output_url = $3, finished_at = $4, updated_at = $4
		WHERE id = $5
	`
	_, err = db.ExecContext(ctx, query, result.Status, resultJSON, url, time.Now(), id)
	return err
}

func (db *DB) UpdateRenderJobError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE render_jobs
		SET status = $1, error_message = $2, finished_at = $3, updated_at = $3, attempts = attempts + 1
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.RenderStatusFailed, errorMessage, time.Now(), id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRenderJob(row rowScanner) (*models.RenderJob, error) {
	job := &models.RenderJob{}
	var requestJSON []byte
	var resultJSON []byte

	err := row.Scan(
		&job.ID, &job.Status, &requestJSON, &resultJSON, &job.Attempts,
		&job.StartedAt, &job.FinishedAt, &job.ErrorMessage, &job.OutputURL,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requestJSON, &job.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if len(resultJSON) > 0 {
		job.Result = &models.RenderResult{}
		if err := json.Unmarshal(resultJSON, job.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	return job, nil
}
