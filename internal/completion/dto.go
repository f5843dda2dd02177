package completion

// DispatchStateDispatched and DispatchStateDegraded name the two
// outcomes a successful completion can end in. Degraded means the
// database records committed but the queue notification did not go out.
const (
	DispatchStateDispatched = "dispatched"
	DispatchStateDegraded   = "degraded"
)

// SentinelDispatchFailed is returned as the dispatch message id when the
// queue send failed after persistence succeeded.
const SentinelDispatchFailed = "FAILED_TO_SEND"

// Request carries the client's report that a file now exists in object
// storage under S3Key.
type Request struct {
	FileName     string
	S3Key        string
	FileType     string
	FileSize     *int64
	UserID       string
	WorkspaceID  *string
	DocumentType string
}

// Actor is the authenticated principal completing the upload.
type Actor struct {
	ID        string
	Role      string
	CompanyID *string
}

// Result identifies everything a successful completion created, plus the
// dispatch outcome.
type Result struct {
	UploadID          string
	DocumentID        string
	JobID             string
	DispatchMessageID string
	DispatchState     string
	Status            string
}
