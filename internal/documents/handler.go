package documents

import (
	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
)

// Handler serves document listings.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/workspaces/:id/documents", h.listWorkspace)
}

type documentResponse struct {
	ID          string  `json:"id"`
	FileName    string  `json:"fileName"`
	DocumentURL string  `json:"documentUrl"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	UploadID    *string `json:"uploadId,omitempty"`
	UserID      string  `json:"userId"`
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Svc.ListForUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, toResponses(out))
}

func (h *Handler) listWorkspace(c *gin.Context) {
	out, err := h.Svc.ListForWorkspace(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, toResponses(out))
}

func toResponses(docs []Document) []documentResponse {
	resp := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, documentResponse{
			ID:          doc.ID,
			FileName:    doc.FileName,
			DocumentURL: doc.DocumentURL,
			Type:        doc.Type,
			Status:      doc.Status,
			UploadID:    doc.UploadID,
			UserID:      doc.UserID,
		})
	}
	return resp
}
