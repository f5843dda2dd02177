package documents

import (
	"context"
	"errors"

	"docstream-backend/internal/shared/storage/db"
)

// ErrNotFound indicates the document does not exist.
var ErrNotFound = errors.New("document not found")

// Repo persists documents and their workspace links. The Tx methods take
// an explicit unit of work so completion can commit a document, its
// workspace link, and the surrounding records atomically.
type Repo interface {
	CreateTx(ctx context.Context, tx db.DBTX, doc Document) error
	LinkWorkspaceTx(ctx context.Context, tx db.DBTX, link WorkspaceLink) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	UpdateStatus(ctx context.Context, documentID, status string) error
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error)
}
