package documents

import (
	"context"
	"database/sql"
	"errors"

	"docstream-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateTx inserts a new document within the caller's unit of work.
func (r *PGRepo) CreateTx(ctx context.Context, tx db.DBTX, doc Document) error {
	const query = `
INSERT INTO documents (id, file_name, document_url, type, status, upload_id, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	var uploadID sql.NullString
	if doc.UploadID != nil && *doc.UploadID != "" {
		uploadID = sql.NullString{String: *doc.UploadID, Valid: true}
	}
	_, err := tx.ExecContext(ctx, query,
		doc.ID,
		doc.FileName,
		doc.DocumentURL,
		doc.Type,
		doc.Status,
		uploadID,
		doc.UserID,
	)
	return err
}

// LinkWorkspaceTx shares a document into a workspace within the caller's
// unit of work. Re-linking an existing pair is a no-op.
func (r *PGRepo) LinkWorkspaceTx(ctx context.Context, tx db.DBTX, link WorkspaceLink) error {
	const query = `
INSERT INTO workspace_documents (workspace_id, document_id, created_at)
VALUES ($1, $2, now())
ON CONFLICT (workspace_id, document_id) DO NOTHING`
	_, err := tx.ExecContext(ctx, query, link.WorkspaceID, link.DocumentID)
	return err
}

// GetByID returns a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, file_name, document_url, type, status, upload_id, user_id, created_at, updated_at
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// UpdateStatus sets a document's status.
func (r *PGRepo) UpdateStatus(ctx context.Context, documentID, status string) error {
	const query = `
UPDATE documents
SET status = $2, updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, documentID, status)
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

// ListByUser lists a user's documents, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = `
SELECT id, file_name, document_url, type, status, upload_id, user_id, created_at, updated_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListByWorkspace lists documents shared into a workspace, newest first.
func (r *PGRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error) {
	const query = `
SELECT d.id, d.file_name, d.document_url, d.type, d.status, d.upload_id, d.user_id, d.created_at, d.updated_at
FROM documents d
JOIN workspace_documents wd ON wd.document_id = d.id
WHERE wd.workspace_id = $1
ORDER BY d.created_at DESC`
	return r.list(ctx, query, workspaceID)
}

func (r *PGRepo) list(ctx context.Context, query string, arg any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func scanDocument(scan func(dest ...any) error) (Document, error) {
	var doc Document
	var uploadID sql.NullString
	err := scan(
		&doc.ID,
		&doc.FileName,
		&doc.DocumentURL,
		&doc.Type,
		&doc.Status,
		&uploadID,
		&doc.UserID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if uploadID.Valid {
		doc.UploadID = &uploadID.String
	}
	return doc, nil
}

var _ Repo = (*PGRepo)(nil)
