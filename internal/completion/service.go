package completion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/documents"
	"docstream-backend/internal/jobs"
	"docstream-backend/internal/queue"
	"docstream-backend/internal/shared/metrics"
	"docstream-backend/internal/shared/storage/db"
	"docstream-backend/internal/shared/telemetry"
	"docstream-backend/internal/shared/util"
	"docstream-backend/internal/uploads"
	"docstream-backend/internal/workspaces"
)

// Coordinator turns a "file is now in object storage" report into a
// consistent set of records plus a dispatched processing message.
//
// The authorization predicates run in a fixed, visible order: identity
// first, then workspace access. Persistence is one transaction;
// dispatch happens after commit, never inside it. A dispatch failure
// degrades the response instead of failing it, because the committed
// records are authoritative and the notification can be reconciled.
type Coordinator struct {
	Runner     TxRunner
	Uploads    uploads.Repo
	Documents  documents.Repo
	Jobs       jobs.Repo
	Resolver   *workspaces.Resolver
	Dispatcher queue.Dispatcher
}

// CompleteUpload runs the completion workflow for one upload.
func (c *Coordinator) CompleteUpload(ctx context.Context, actor Actor, req Request) (Result, error) {
	const op = "completion.complete_upload"
	started := time.Now()

	if err := validateRequest(op, req); err != nil {
		return Result{}, err
	}

	// Identity gate: the request must be for the caller's own upload,
	// even when the token itself is valid.
	if req.UserID != actor.ID {
		return Result{}, apperr.E(apperr.Forbidden, "IDENTITY_MISMATCH", op, "request userId does not match the authenticated principal",
			apperr.WithActor(actor.ID),
			apperr.WithContext("claimed_user_id", req.UserID))
	}

	// Workspace gate, only when a workspace is supplied. The resolver's
	// NotFound/Forbidden distinction propagates unchanged.
	if req.WorkspaceID != nil && *req.WorkspaceID != "" {
		if err := c.Resolver.CanAccessWorkspace(ctx, actor.ID, *req.WorkspaceID); err != nil {
			return Result{}, err
		}
	}

	upload := uploads.Upload{
		ID:          uuid.NewString(),
		Key:         req.S3Key,
		FileName:    req.FileName,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		Status:      uploads.StatusUploaded,
		UserID:      req.UserID,
		WorkspaceID: req.WorkspaceID,
		CreatedAt:   time.Now().UTC(),
	}
	doc := documents.Document{
		ID:          uuid.NewString(),
		FileName:    req.FileName,
		DocumentURL: req.S3Key,
		Type:        req.DocumentType,
		Status:      documents.StatusUnprocessed,
		UploadID:    &upload.ID,
		UserID:      req.UserID,
		CreatedAt:   upload.CreatedAt,
	}
	job := jobs.Job{
		ID:        uuid.NewString(),
		Type:      jobs.TypeUploadProcessing,
		Status:    jobs.StatusPending,
		UploadID:  upload.ID,
		UserID:    req.UserID,
		CreatedAt: upload.CreatedAt,
	}

	err := c.Runner.RunInTx(ctx, func(tx db.DBTX) error {
		if err := c.Uploads.CreateTx(ctx, tx, upload); err != nil {
			return err
		}
		if err := c.Documents.CreateTx(ctx, tx, doc); err != nil {
			return err
		}
		if req.WorkspaceID != nil && *req.WorkspaceID != "" {
			link := documents.WorkspaceLink{WorkspaceID: *req.WorkspaceID, DocumentID: doc.ID}
			if err := c.Documents.LinkWorkspaceTx(ctx, tx, link); err != nil {
				return err
			}
		}
		return c.Jobs.CreateTx(ctx, tx, job)
	})
	if err != nil {
		return Result{}, c.classifyPersistError(op, actor, req, err)
	}
	metrics.IncUploadCompleted()

	result := Result{
		UploadID:   upload.ID,
		DocumentID: doc.ID,
		JobID:      job.ID,
		Status:     "success",
	}

	msg := queue.NewProcessingMessage(
		job.ID, upload.ID, doc.ID,
		req.S3Key, req.DocumentType, req.UserID,
		req.FileName, req.FileType,
		req.WorkspaceID,
	)
	messageID, err := c.Dispatcher.SendProcessingMessage(ctx, msg)
	if err != nil {
		return c.degrade(ctx, op, result, err), nil
	}

	metrics.IncDispatchSent()
	metrics.ObserveCompletionDurationMs(float64(time.Since(started).Milliseconds()))
	result.DispatchMessageID = messageID
	result.DispatchState = DispatchStateDispatched
	return result, nil
}

// degrade handles a dispatch failure after persistence committed: mark
// the job failed, best effort, and report success with the sentinel
// message id. A failure of the mark itself is logged and absorbed.
func (c *Coordinator) degrade(ctx context.Context, op string, result Result, dispatchErr error) Result {
	metrics.IncDispatchDegraded()
	telemetry.Failure("completion.dispatch.failed", dispatchErr, map[string]any{
		"op":        op,
		"job_id":    result.JobID,
		"upload_id": result.UploadID,
	})

	now := time.Now().UTC()
	code := jobs.ErrCodeDispatchFailed
	message := dispatchErr.Error()
	err := c.Jobs.ApplyStatus(ctx, result.JobID, jobs.StatusUpdate{
		Status:       jobs.StatusFailed,
		CompletedAt:  &now,
		ErrorCode:    &code,
		ErrorMessage: &message,
	})
	if err != nil {
		telemetry.Failure("completion.dispatch.mark_failed", err, map[string]any{
			"op":     op,
			"job_id": result.JobID,
		})
	}

	result.DispatchMessageID = SentinelDispatchFailed
	result.DispatchState = DispatchStateDegraded
	return result
}

func (c *Coordinator) classifyPersistError(op string, actor Actor, req Request, err error) error {
	if errors.Is(err, uploads.ErrDuplicateKey) {
		metrics.IncUploadConflict()
		return apperr.E(apperr.Conflict, "DUPLICATE_UPLOAD_KEY", op, "an upload already exists for this key",
			apperr.WithActor(actor.ID),
			apperr.WithContext("s3_key", req.S3Key),
			apperr.WithCause(err))
	}
	if errors.Is(err, jobs.ErrDuplicateUpload) {
		metrics.IncUploadConflict()
		return apperr.E(apperr.Conflict, "DUPLICATE_JOB", op, "a processing job already exists for this upload",
			apperr.WithActor(actor.ID),
			apperr.WithCause(err))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.E(apperr.TransientInfra, "TX_TIMEOUT", op, "persistence timed out, retrying is safe",
			apperr.WithActor(actor.ID),
			apperr.WithCause(err))
	}
	return apperr.E(apperr.FatalInternal, "PERSIST_FAILED", op, "failed to persist upload records",
		apperr.WithActor(actor.ID),
		apperr.WithCause(err))
}

func validateRequest(op string, req Request) error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"fileName", req.FileName},
		{"s3Key", req.S3Key},
		{"fileType", req.FileType},
		{"userId", req.UserID},
		{"documentType", req.DocumentType},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return apperr.E(apperr.Validation, "MISSING_FIELDS", op, "required fields are missing",
			apperr.WithContext("fields", missing))
	}
	if !util.ValidObjectKey(req.S3Key) {
		return apperr.E(apperr.Validation, "INVALID_KEY", op, "s3Key violates the object-key contract",
			apperr.WithContext("s3_key", req.S3Key))
	}
	if req.FileSize != nil && *req.FileSize < 0 {
		return apperr.E(apperr.Validation, "INVALID_SIZE", op, "fileSize cannot be negative")
	}
	return nil
}
