package jobs

import (
	"context"
	"testing"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/users"
)

func seedJob(t *testing.T, repo *MemoryRepo, id, uploadID, userID, status string) {
	t.Helper()
	err := repo.CreateTx(context.Background(), nil, Job{
		ID:        id,
		Type:      TypeUploadProcessing,
		Status:    status,
		UploadID:  uploadID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed job %s: %v", id, err)
	}
}

func TestTransitionPendingToProcessing(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedJob(t, repo, "job-1", "up-1", "user-1", StatusPending)

	textract := "tx-123"
	job, err := svc.Transition(context.Background(), users.RoleInternal, "job-1", TransitionRequest{
		Status:        StatusProcessing,
		TextractJobID: &textract,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if job.Status != StatusProcessing {
		t.Fatalf("status = %s, want processing", job.Status)
	}
	if job.StartedAt == nil {
		t.Fatalf("expected startedAt to be set")
	}
	if job.TextractJobID == nil || *job.TextractJobID != textract {
		t.Fatalf("textract id not recorded: %v", job.TextractJobID)
	}
}

func TestTransitionProcessingToSuccessRecordsResult(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedJob(t, repo, "job-1", "up-1", "user-1", StatusProcessing)

	resultURL := "s3://results/job-1.json"
	job, err := svc.Transition(context.Background(), users.RoleInternal, "job-1", TransitionRequest{
		Status:     StatusSuccess,
		OCRJsonURL: &resultURL,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if job.CompletedAt == nil {
		t.Fatalf("expected completedAt to be set")
	}
	if job.OCRJsonURL == nil || *job.OCRJsonURL != resultURL {
		t.Fatalf("result url not recorded: %v", job.OCRJsonURL)
	}
}

func TestTransitionToFailedRecordsError(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedJob(t, repo, "job-1", "up-1", "user-1", StatusProcessing)

	code := "OCR_TIMEOUT"
	msg := "textract did not finish"
	job, err := svc.Transition(context.Background(), users.RoleInternal, "job-1", TransitionRequest{
		Status:       StatusFailed,
		ErrorCode:    &code,
		ErrorMessage: &msg,
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if job.ErrorCode == nil || *job.ErrorCode != code {
		t.Fatalf("error code not recorded: %v", job.ErrorCode)
	}
}

func TestIllegalTransitionsAreConflicts(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
	}{
		{"pending to success", StatusPending, StatusSuccess},
		{"success is terminal", StatusSuccess, StatusProcessing},
		{"failed is terminal", StatusFailed, StatusProcessing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewMemoryRepo()
			svc := &Service{Repo: repo}
			seedJob(t, repo, "job-1", "up-1", "user-1", tc.from)

			_, err := svc.Transition(context.Background(), users.RoleInternal, "job-1", TransitionRequest{Status: tc.to})
			if apperr.KindOf(err) != apperr.Conflict {
				t.Fatalf("expected Conflict, got %v", err)
			}
		})
	}
}

func TestTransitionRequiresProcessingRole(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedJob(t, repo, "job-1", "up-1", "user-1", StatusPending)

	_, err := svc.Transition(context.Background(), users.RoleUser, "job-1", TransitionRequest{Status: StatusProcessing})
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestTransitionMissingJobIsNotFound(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	_, err := svc.Transition(context.Background(), users.RoleInternal, "no-such-job", TransitionRequest{Status: StatusProcessing})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}
	seedJob(t, repo, "job-1", "up-1", "user-1", StatusPending)

	if _, err := svc.Get(context.Background(), "user-1", users.RoleUser, "job-1"); err != nil {
		t.Fatalf("owner should read own job: %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-2", users.RoleUser, "job-1"); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for non-owner, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "anyone", users.RoleInternal, "job-1"); err != nil {
		t.Fatalf("internal role should read any job: %v", err)
	}
}
