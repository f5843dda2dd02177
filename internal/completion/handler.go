package completion

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
)

// Handler exposes the upload-completion endpoint.
type Handler struct {
	Coordinator *Coordinator
}

// NewHandler constructs a Handler.
func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{Coordinator: coordinator}
}

// RegisterRoutes attaches completion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/complete", h.complete)
}

type completeRequest struct {
	FileName     string  `json:"fileName"`
	S3Key        string  `json:"s3Key"`
	FileType     string  `json:"fileType"`
	FileSize     *int64  `json:"fileSize"`
	UserID       string  `json:"userId"`
	WorkspaceID  *string `json:"workspaceId"`
	DocumentType string  `json:"documentType"`
}

type completeResponse struct {
	UploadID          string `json:"uploadId"`
	DocumentID        string `json:"documentId"`
	JobID             string `json:"jobId"`
	DispatchMessageID string `json:"dispatchMessageId"`
	DispatchState     string `json:"dispatchState"`
	Status            string `json:"status"`
}

func (h *Handler) complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	var companyID *string
	if id := middleware.UserCompanyIDFromContext(c); id != "" {
		companyID = &id
	}
	actor := Actor{
		ID:        middleware.UserIDFromContext(c),
		Role:      middleware.UserRoleFromContext(c),
		CompanyID: companyID,
	}

	result, err := h.Coordinator.CompleteUpload(c.Request.Context(), actor, Request{
		FileName:     req.FileName,
		S3Key:        req.S3Key,
		FileType:     req.FileType,
		FileSize:     req.FileSize,
		UserID:       req.UserID,
		WorkspaceID:  req.WorkspaceID,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		respond.AppError(c, err)
		return
	}

	c.Set("uploadId", result.UploadID)
	c.Set("jobId", result.JobID)
	respond.Created(c, completeResponse{
		UploadID:          result.UploadID,
		DocumentID:        result.DocumentID,
		JobID:             result.JobID,
		DispatchMessageID: result.DispatchMessageID,
		DispatchState:     result.DispatchState,
		Status:            result.Status,
	})
}
