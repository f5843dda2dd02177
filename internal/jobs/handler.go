package jobs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
)

// Handler serves job reads and the consumer-facing status update.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
	rg.PATCH("/jobs/:id/status", h.updateStatus)
}

type jobResponse struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	UploadID      string     `json:"uploadId"`
	UserID        string     `json:"userId"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	ErrorCode     *string    `json:"errorCode,omitempty"`
	ErrorMessage  *string    `json:"errorMessage,omitempty"`
	TextractJobID *string    `json:"textractJobId,omitempty"`
	OCRJsonURL    *string    `json:"ocrJsonUrl,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Svc.Repo.ListByUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	resp := make([]jobResponse, 0, len(out))
	for _, job := range out {
		resp = append(resp, toJobResponse(job))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), middleware.UserRoleFromContext(c), c.Param("id"))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, toJobResponse(job))
}

type statusUpdateRequest struct {
	Status        string  `json:"status"`
	TextractJobID *string `json:"textractJobId"`
	OCRJsonURL    *string `json:"ocrJsonUrl"`
	ErrorCode     *string `json:"errorCode"`
	ErrorMessage  *string `json:"errorMessage"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Status == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "status is required", nil)
		return
	}

	job, err := h.Svc.Transition(c.Request.Context(), middleware.UserRoleFromContext(c), c.Param("id"), TransitionRequest{
		Status:        req.Status,
		TextractJobID: req.TextractJobID,
		OCRJsonURL:    req.OCRJsonURL,
		ErrorCode:     req.ErrorCode,
		ErrorMessage:  req.ErrorMessage,
	})
	if err != nil {
		respond.AppError(c, err)
		return
	}
	c.Set("jobId", job.ID)
	respond.OK(c, toJobResponse(job))
}

func toJobResponse(job Job) jobResponse {
	return jobResponse{
		ID:            job.ID,
		Type:          job.Type,
		Status:        job.Status,
		UploadID:      job.UploadID,
		UserID:        job.UserID,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
		ErrorCode:     job.ErrorCode,
		ErrorMessage:  job.ErrorMessage,
		TextractJobID: job.TextractJobID,
		OCRJsonURL:    job.OCRJsonURL,
	}
}
