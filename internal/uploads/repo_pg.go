package uploads

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"docstream-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateTx inserts a new upload within the caller's unit of work.
func (r *PGRepo) CreateTx(ctx context.Context, tx db.DBTX, upload Upload) error {
	const query = `
INSERT INTO uploads (id, key, file_name, file_type, file_size, status, user_id, workspace_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	var fileSize sql.NullInt64
	if upload.FileSize != nil {
		fileSize = sql.NullInt64{Int64: *upload.FileSize, Valid: true}
	}
	var workspaceID sql.NullString
	if upload.WorkspaceID != nil && *upload.WorkspaceID != "" {
		workspaceID = sql.NullString{String: *upload.WorkspaceID, Valid: true}
	}
	_, err := tx.ExecContext(ctx, query,
		upload.ID,
		upload.Key,
		upload.FileName,
		upload.FileType,
		fileSize,
		upload.Status,
		upload.UserID,
		workspaceID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// GetByID returns an upload by ID.
func (r *PGRepo) GetByID(ctx context.Context, uploadID string) (Upload, error) {
	const query = `
SELECT id, key, file_name, file_type, file_size, status, user_id, workspace_id, created_at, updated_at
FROM uploads
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, uploadID))
}

// GetByKey returns an upload by its object-store key.
func (r *PGRepo) GetByKey(ctx context.Context, key string) (Upload, error) {
	const query = `
SELECT id, key, file_name, file_type, file_size, status, user_id, workspace_id, created_at, updated_at
FROM uploads
WHERE key = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, key))
}

// UpdateStatus sets an upload's status.
func (r *PGRepo) UpdateStatus(ctx context.Context, uploadID, status string) error {
	const query = `
UPDATE uploads
SET status = $2, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, uploadID, status)
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

// ListByUser lists a user's uploads, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Upload, error) {
	const query = `
SELECT id, key, file_name, file_type, file_size, status, user_id, workspace_id, created_at, updated_at
FROM uploads
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		upload, err := scanUpload(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, upload)
	}
	return out, rows.Err()
}

func (r *PGRepo) scanOne(row *sql.Row) (Upload, error) {
	upload, err := scanUpload(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Upload{}, ErrNotFound
		}
		return Upload{}, err
	}
	return upload, nil
}

func scanUpload(scan func(dest ...any) error) (Upload, error) {
	var upload Upload
	var fileSize sql.NullInt64
	var workspaceID sql.NullString
	err := scan(
		&upload.ID,
		&upload.Key,
		&upload.FileName,
		&upload.FileType,
		&fileSize,
		&upload.Status,
		&upload.UserID,
		&workspaceID,
		&upload.CreatedAt,
		&upload.UpdatedAt,
	)
	if err != nil {
		return Upload{}, err
	}
	if fileSize.Valid {
		upload.FileSize = &fileSize.Int64
	}
	if workspaceID.Valid {
		upload.WorkspaceID = &workspaceID.String
	}
	return upload, nil
}

var _ Repo = (*PGRepo)(nil)
