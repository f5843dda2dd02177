package jobs

import (
	"context"
	"errors"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/shared/metrics"
	"docstream-backend/internal/users"
)

// Service applies job status transitions reported by the downstream OCR
// consumer. The legal transitions are pending -> processing and
// processing -> success | failed; pending -> failed is also accepted so
// the consumer can reject a job it cannot start.
type Service struct {
	Repo Repo
}

// TransitionRequest is one status report from the consumer.
type TransitionRequest struct {
	Status        string
	TextractJobID *string
	OCRJsonURL    *string
	ErrorCode     *string
	ErrorMessage  *string
}

// Transition moves a job to the requested status. Only INTERNAL and
// ADMIN principals may report transitions.
func (s *Service) Transition(ctx context.Context, actorRole, jobID string, req TransitionRequest) (Job, error) {
	const op = "jobs.transition"

	if actorRole != users.RoleAdmin && actorRole != users.RoleInternal {
		return Job{}, apperr.E(apperr.Forbidden, "JOB_UPDATE_FORBIDDEN", op, "only processing principals may update jobs",
			apperr.WithContext("job_id", jobID))
	}

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, apperr.E(apperr.NotFound, "JOB_NOT_FOUND", op, "job not found",
				apperr.WithContext("job_id", jobID))
		}
		return Job{}, apperr.E(apperr.FatalInternal, "JOB_LOOKUP_FAILED", op, "failed to look up job", apperr.WithCause(err))
	}

	if !legalTransition(job.Status, req.Status) {
		return Job{}, apperr.E(apperr.Conflict, "INVALID_TRANSITION", op, "job cannot move to the requested status",
			apperr.WithContext("job_id", jobID),
			apperr.WithContext("from", job.Status),
			apperr.WithContext("to", req.Status))
	}

	now := time.Now().UTC()
	update := StatusUpdate{
		Status:        req.Status,
		TextractJobID: req.TextractJobID,
		OCRJsonURL:    req.OCRJsonURL,
	}
	switch req.Status {
	case StatusProcessing:
		update.StartedAt = &now
	case StatusSuccess:
		update.CompletedAt = &now
	case StatusFailed:
		update.CompletedAt = &now
		update.ErrorCode = req.ErrorCode
		update.ErrorMessage = req.ErrorMessage
	}

	if err := s.Repo.ApplyStatus(ctx, jobID, update); err != nil {
		return Job{}, apperr.E(apperr.FatalInternal, "JOB_UPDATE_FAILED", op, "failed to update job", apperr.WithCause(err))
	}
	metrics.IncJobStatusUpdated()

	job, err = s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return Job{}, apperr.E(apperr.FatalInternal, "JOB_LOOKUP_FAILED", op, "failed to reload job", apperr.WithCause(err))
	}
	return job, nil
}

// Get returns a job visible to the actor. Owners see their own jobs;
// INTERNAL and ADMIN see all.
func (s *Service) Get(ctx context.Context, actorID, actorRole, jobID string) (Job, error) {
	const op = "jobs.get"

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, apperr.E(apperr.NotFound, "JOB_NOT_FOUND", op, "job not found",
				apperr.WithActor(actorID),
				apperr.WithContext("job_id", jobID))
		}
		return Job{}, apperr.E(apperr.FatalInternal, "JOB_LOOKUP_FAILED", op, "failed to look up job", apperr.WithCause(err))
	}
	if job.UserID != actorID && actorRole != users.RoleAdmin && actorRole != users.RoleInternal {
		return Job{}, apperr.E(apperr.Forbidden, "JOB_ACCESS_DENIED", op, "job belongs to another user",
			apperr.WithActor(actorID),
			apperr.WithContext("job_id", jobID))
	}
	return job, nil
}

func legalTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusSuccess || to == StatusFailed
	default:
		return false
	}
}
