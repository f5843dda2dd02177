package documents

import "time"

// Document statuses. Completion always creates UNPROCESSED; downstream
// processing and billing flows move documents through the rest.
const (
	StatusUnprocessed = "UNPROCESSED"
	StatusProcessed   = "PROCESSED"
	StatusPaid        = "PAID"
	StatusUnpaid      = "UNPAID"
	StatusFlagged     = "FLAGGED"
)

// Document is the durable record of an ingested file. UploadID is
// nullable: a document outlives its upload when the upload row is
// removed. A document may be shared into any number of workspaces
// through WorkspaceLink rows.
type Document struct {
	ID          string
	FileName    string
	DocumentURL string
	Type        string
	Status      string
	UploadID    *string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkspaceLink shares a document into a workspace.
type WorkspaceLink struct {
	WorkspaceID string
	DocumentID  string
	CreatedAt   time.Time
}
