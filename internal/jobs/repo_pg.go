package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"docstream-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateTx inserts a new job within the caller's unit of work.
func (r *PGRepo) CreateTx(ctx context.Context, tx db.DBTX, job Job) error {
	const query = `
INSERT INTO jobs (id, type, status, upload_id, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := tx.ExecContext(ctx, query,
		job.ID,
		job.Type,
		job.Status,
		job.UploadID,
		job.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUpload
		}
		return err
	}
	return nil
}

// GetByID returns a job by ID.
func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = selectJob + `
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, jobID))
}

// GetByUploadID returns the job tracking an upload.
func (r *PGRepo) GetByUploadID(ctx context.Context, uploadID string) (Job, error) {
	const query = selectJob + `
WHERE upload_id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, uploadID))
}

// ApplyStatus writes a status transition and its accompanying fields.
func (r *PGRepo) ApplyStatus(ctx context.Context, jobID string, update StatusUpdate) error {
	const query = `
UPDATE jobs
SET status = $2,
    started_at = COALESCE($3, started_at),
    completed_at = COALESCE($4, completed_at),
    error_code = COALESCE($5, error_code),
    error_message = COALESCE($6, error_message),
    textract_job_id = COALESCE($7, textract_job_id),
    ocr_json_url = COALESCE($8, ocr_json_url),
    updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		jobID,
		update.Status,
		nullTime(update.StartedAt),
		nullTime(update.CompletedAt),
		nullString(update.ErrorCode),
		nullString(update.ErrorMessage),
		nullString(update.TextractJobID),
		nullString(update.OCRJsonURL),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists a user's jobs, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	const query = selectJob + `
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

const selectJob = `
SELECT id, type, status, upload_id, user_id, started_at, completed_at,
       error_code, error_message, textract_job_id, ocr_json_url, created_at, updated_at
FROM jobs`

func (r *PGRepo) scanOne(row *sql.Row) (Job, error) {
	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

func scanJob(scan func(dest ...any) error) (Job, error) {
	var job Job
	var startedAt, completedAt sql.NullTime
	var errorCode, errorMessage, textractJobID, ocrJSONURL sql.NullString
	err := scan(
		&job.ID,
		&job.Type,
		&job.Status,
		&job.UploadID,
		&job.UserID,
		&startedAt,
		&completedAt,
		&errorCode,
		&errorMessage,
		&textractJobID,
		&ocrJSONURL,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	if errorCode.Valid {
		job.ErrorCode = &errorCode.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	if textractJobID.Valid {
		job.TextractJobID = &textractJobID.String
	}
	if ocrJSONURL.Valid {
		job.OCRJsonURL = &ocrJSONURL.String
	}
	return job, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
