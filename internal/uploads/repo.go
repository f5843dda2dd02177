package uploads

import (
	"context"
	"errors"

	"docstream-backend/internal/shared/storage/db"
)

var (
	// ErrNotFound indicates the upload does not exist.
	ErrNotFound = errors.New("upload not found")
	// ErrDuplicateKey indicates another upload already claimed the key.
	ErrDuplicateKey = errors.New("upload key already exists")
)

// Repo persists uploads. CreateTx takes an explicit unit of work so the
// caller controls transaction boundaries.
type Repo interface {
	CreateTx(ctx context.Context, tx db.DBTX, upload Upload) error
	GetByID(ctx context.Context, uploadID string) (Upload, error)
	GetByKey(ctx context.Context, key string) (Upload, error)
	UpdateStatus(ctx context.Context, uploadID, status string) error
	ListByUser(ctx context.Context, userID string) ([]Upload, error)
}
