package uploads

import "time"

// Upload statuses. An upload is created as "uploaded" by the completion
// flow; the processing pipeline moves it forward from there.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Upload records a file the client placed in object storage. The key is
// unique: completing the same key twice is a conflict, not an update.
type Upload struct {
	ID          string
	Key         string
	FileName    string
	FileType    string
	FileSize    *int64
	Status      string
	UserID      string
	WorkspaceID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
