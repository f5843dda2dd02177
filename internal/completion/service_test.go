package completion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/documents"
	"docstream-backend/internal/jobs"
	"docstream-backend/internal/queue"
	"docstream-backend/internal/uploads"
	"docstream-backend/internal/users"
	"docstream-backend/internal/workspaces"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []queue.ProcessingMessage
	err  error
}

func (f *fakeDispatcher) SendProcessingMessage(_ context.Context, msg queue.ProcessingMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-001", nil
}

type fixture struct {
	coordinator *Coordinator
	uploads     *uploads.MemoryRepo
	documents   *documents.MemoryRepo
	jobs        *jobs.MemoryRepo
	users       *users.MemoryRepo
	workspaces  *workspaces.MemoryRepo
	dispatcher  *fakeDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		uploads:    uploads.NewMemoryRepo(),
		documents:  documents.NewMemoryRepo(),
		jobs:       jobs.NewMemoryRepo(),
		users:      users.NewMemoryRepo(),
		workspaces: workspaces.NewMemoryRepo(),
		dispatcher: &fakeDispatcher{},
	}
	f.coordinator = &Coordinator{
		Runner:     MemoryRunner{},
		Uploads:    f.uploads,
		Documents:  f.documents,
		Jobs:       f.jobs,
		Resolver:   &workspaces.Resolver{Workspaces: f.workspaces, Users: f.users},
		Dispatcher: f.dispatcher,
	}
	return f
}

func (f *fixture) seedUser(t *testing.T, id, role string, companyID *string) {
	t.Helper()
	err := f.users.Create(context.Background(), users.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Role:      role,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func soloRequest(userID, key string) Request {
	return Request{
		FileName:     "invoice.pdf",
		S3Key:        key,
		FileType:     "application/pdf",
		UserID:       userID,
		DocumentType: "INVOICE",
	}
}

func TestCompleteUploadSoloUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coordinator.CompleteUpload(ctx, Actor{ID: "a", Role: users.RoleUser}, soloRequest("a", "documents/a/invoice-1.pdf"))
	if err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("status = %s", result.Status)
	}
	if result.DispatchState != DispatchStateDispatched || result.DispatchMessageID != "msg-001" {
		t.Fatalf("dispatch outcome = %s/%s", result.DispatchState, result.DispatchMessageID)
	}

	upload, err := f.uploads.GetByID(ctx, result.UploadID)
	if err != nil {
		t.Fatalf("upload not persisted: %v", err)
	}
	if upload.Status != uploads.StatusUploaded {
		t.Fatalf("upload status = %s, want uploaded", upload.Status)
	}

	doc, err := f.documents.GetByID(ctx, result.DocumentID)
	if err != nil {
		t.Fatalf("document not persisted: %v", err)
	}
	if doc.Status != documents.StatusUnprocessed {
		t.Fatalf("document status = %s, want UNPROCESSED", doc.Status)
	}
	if doc.UploadID == nil || *doc.UploadID != result.UploadID {
		t.Fatalf("document upload reference = %v", doc.UploadID)
	}

	job, err := f.jobs.GetByID(ctx, result.JobID)
	if err != nil {
		t.Fatalf("job not persisted: %v", err)
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("job status = %s, want pending", job.Status)
	}
	if job.UploadID != result.UploadID {
		t.Fatalf("job.uploadId = %s, want %s", job.UploadID, result.UploadID)
	}

	if len(f.dispatcher.sent) != 1 {
		t.Fatalf("expected one dispatched message, got %d", len(f.dispatcher.sent))
	}
	msg := f.dispatcher.sent[0]
	if msg.JobID != result.JobID || msg.UploadID != result.UploadID || msg.DocumentID != result.DocumentID {
		t.Fatalf("message identifiers mismatch: %+v", msg)
	}
	if msg.MessageType != queue.MessageTypeUploadProcessing || msg.Version != queue.MessageVersion {
		t.Fatalf("message envelope mismatch: %+v", msg)
	}
}

func TestCompleteUploadDuplicateKeyIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	actor := Actor{ID: "a", Role: users.RoleUser}

	if _, err := f.coordinator.CompleteUpload(ctx, actor, soloRequest("a", "documents/a/same.pdf")); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	_, err := f.coordinator.CompleteUpload(ctx, actor, soloRequest("a", "documents/a/same.pdf"))
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestCompleteUploadDegradesOnDispatchFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dispatcher.err = &queue.SendError{Code: "ServiceUnavailable", Retryable: true, Err: errors.New("queue down")}

	result, err := f.coordinator.CompleteUpload(ctx, Actor{ID: "a", Role: users.RoleUser}, soloRequest("a", "documents/a/degraded.pdf"))
	if err != nil {
		t.Fatalf("completion must not fail on dispatch failure: %v", err)
	}
	if result.Status != "success" {
		t.Fatalf("status = %s, want success", result.Status)
	}
	if result.DispatchMessageID != SentinelDispatchFailed {
		t.Fatalf("dispatchMessageId = %s, want %s", result.DispatchMessageID, SentinelDispatchFailed)
	}
	if result.DispatchState != DispatchStateDegraded {
		t.Fatalf("dispatchState = %s, want %s", result.DispatchState, DispatchStateDegraded)
	}

	job, err := f.jobs.GetByID(ctx, result.JobID)
	if err != nil {
		t.Fatalf("job lookup: %v", err)
	}
	if job.Status != jobs.StatusFailed {
		t.Fatalf("job status = %s, want failed", job.Status)
	}
	if job.ErrorCode == nil || *job.ErrorCode != jobs.ErrCodeDispatchFailed {
		t.Fatalf("job error code = %v, want %s", job.ErrorCode, jobs.ErrCodeDispatchFailed)
	}
}

type jobsRepoFailingApply struct {
	*jobs.MemoryRepo
}

func (r *jobsRepoFailingApply) ApplyStatus(context.Context, string, jobs.StatusUpdate) error {
	return errors.New("database went away")
}

func TestDegradationAbsorbsSecondaryFailure(t *testing.T) {
	f := newFixture(t)
	f.coordinator.Jobs = &jobsRepoFailingApply{MemoryRepo: f.jobs}
	f.dispatcher.err = &queue.SendError{Code: "UNKNOWN", Retryable: false, Err: errors.New("queue down")}

	result, err := f.coordinator.CompleteUpload(context.Background(), Actor{ID: "a", Role: users.RoleUser}, soloRequest("a", "documents/a/x.pdf"))
	if err != nil {
		t.Fatalf("secondary failure must be absorbed: %v", err)
	}
	if result.DispatchMessageID != SentinelDispatchFailed || result.DispatchState != DispatchStateDegraded {
		t.Fatalf("unexpected dispatch outcome: %+v", result)
	}
}

func TestIdentityMismatchFailsBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.CompleteUpload(ctx, Actor{ID: "b", Role: users.RoleUser}, soloRequest("someone-else", "documents/x/y.pdf"))
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	if _, err := f.uploads.GetByKey(ctx, "documents/x/y.pdf"); !errors.Is(err, uploads.ErrNotFound) {
		t.Fatalf("upload must not exist after identity failure")
	}
	if len(f.dispatcher.sent) != 0 {
		t.Fatalf("nothing may be dispatched after identity failure")
	}
}

func TestWorkspaceCompletionLinksDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	company := "company-1"
	f.seedUser(t, "a", users.RoleUser, &company)
	ws := workspaces.Workspace{
		ID:        "ws-1",
		Name:      "ingest",
		Owner:     workspaces.CompanyOwner(company),
		CreatorID: "a",
		CreatedAt: time.Now().UTC(),
	}
	if err := f.workspaces.Create(ctx, ws); err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	req := soloRequest("a", "documents/a/shared.pdf")
	wsID := "ws-1"
	req.WorkspaceID = &wsID

	result, err := f.coordinator.CompleteUpload(ctx, Actor{ID: "a", Role: users.RoleUser, CompanyID: &company}, req)
	if err != nil {
		t.Fatalf("CompleteUpload: %v", err)
	}

	linked, err := f.documents.ListByWorkspace(ctx, "ws-1")
	if err != nil {
		t.Fatalf("ListByWorkspace: %v", err)
	}
	if len(linked) != 1 || linked[0].ID != result.DocumentID {
		t.Fatalf("expected document linked into workspace, got %+v", linked)
	}

	if msg := f.dispatcher.sent[0]; msg.WorkspaceID == nil || *msg.WorkspaceID != "ws-1" {
		t.Fatalf("message should carry workspace id, got %+v", msg.WorkspaceID)
	}
}

func TestWorkspaceDenialsPropagateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	companyA := "company-a"
	companyB := "company-b"
	f.seedUser(t, "creator", users.RoleUser, &companyA)
	f.seedUser(t, "outsider", users.RoleUser, &companyB)
	ws := workspaces.Workspace{
		ID:        "ws-1",
		Name:      "ingest",
		Owner:     workspaces.CompanyOwner(companyA),
		CreatorID: "creator",
		CreatedAt: time.Now().UTC(),
	}
	if err := f.workspaces.Create(ctx, ws); err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	req := soloRequest("outsider", "documents/o/file.pdf")
	wsID := "ws-1"
	req.WorkspaceID = &wsID
	_, err := f.coordinator.CompleteUpload(ctx, Actor{ID: "outsider", Role: users.RoleUser, CompanyID: &companyB}, req)
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for outsider, got %v", err)
	}

	req = soloRequest("creator", "documents/c/file.pdf")
	missing := "no-such-ws"
	req.WorkspaceID = &missing
	_, err = f.coordinator.CompleteUpload(ctx, Actor{ID: "creator", Role: users.RoleUser, CompanyID: &companyA}, req)
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound for missing workspace, got %v", err)
	}
}

func TestValidationNamesMissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator.CompleteUpload(context.Background(), Actor{ID: "a", Role: users.RoleUser}, Request{UserID: "a"})
	var structured *apperr.Error
	if !errors.As(err, &structured) || structured.Kind != apperr.Validation {
		t.Fatalf("expected Validation, got %v", err)
	}
	fields, ok := structured.Context["fields"].([]string)
	if !ok || len(fields) != 4 {
		t.Fatalf("expected four missing fields named, got %v", structured.Context["fields"])
	}
}

func TestValidationRejectsBadKey(t *testing.T) {
	f := newFixture(t)

	req := soloRequest("a", "documents/a/bad key!.pdf")
	_, err := f.coordinator.CompleteUpload(context.Background(), Actor{ID: "a", Role: users.RoleUser}, req)
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("expected Validation, got %v", err)
	}
}

func TestConcurrentDuplicateKeyYieldsOneConflict(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: "a", Role: users.RoleUser}

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.coordinator.CompleteUpload(context.Background(), actor, soloRequest("a", "documents/a/raced.pdf"))
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.KindOf(err) == apperr.Conflict:
			conflicts++
		default:
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if conflicts != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-1)
	}
}
