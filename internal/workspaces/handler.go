package workspaces

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the workspace and membership services.
type Handler struct {
	Svc        *Service
	Membership *MembershipService
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, membership *MembershipService) *Handler {
	return &Handler{Svc: svc, Membership: membership}
}

// RegisterRoutes attaches workspace routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workspaces", h.create)
	rg.GET("/workspaces", h.list)
	rg.GET("/workspaces/:id", h.get)
	rg.GET("/workspaces/:id/members", h.listMembers)
	rg.POST("/workspaces/:id/members", h.addMembers)
	rg.DELETE("/workspaces/:id/members", h.removeMembers)
}

type createWorkspaceRequest struct {
	Name string `json:"name"`
}

type workspaceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerType string `json:"ownerType"`
	OwnerID   string `json:"ownerId"`
	CreatorID string `json:"creatorId"`
}

func (h *Handler) create(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ws, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Name)
	if err != nil {
		respond.AppError(c, err)
		return
	}
	c.Set("workspaceId", ws.ID)
	respond.Created(c, toWorkspaceResponse(ws))
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	resp := make([]workspaceResponse, 0, len(out))
	for _, ws := range out {
		resp = append(resp, toWorkspaceResponse(ws))
	}
	respond.OK(c, resp)
}

func (h *Handler) get(c *gin.Context) {
	ws, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, toWorkspaceResponse(ws))
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.Membership.ListMembers(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, members)
}

type membersRequest struct {
	UserIDs []string `json:"userIds"`
}

func (h *Handler) addMembers(c *gin.Context) {
	var req membersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	err := h.Membership.AddMembers(c.Request.Context(), c.Param("id"), req.UserIDs, middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, gin.H{"added": len(req.UserIDs)})
}

func (h *Handler) removeMembers(c *gin.Context) {
	var req membersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	err := h.Membership.RemoveMembers(c.Request.Context(), c.Param("id"), req.UserIDs, middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	respond.OK(c, gin.H{"removed": len(req.UserIDs)})
}

func toWorkspaceResponse(ws Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		OwnerType: string(ws.Owner.Type),
		OwnerID:   ws.Owner.ID,
		CreatorID: ws.CreatorID,
	}
}
