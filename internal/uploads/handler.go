package uploads

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docstream-backend/internal/shared/server/middleware"
	"docstream-backend/internal/shared/server/respond"
	"docstream-backend/internal/shared/telemetry"
	"docstream-backend/internal/shared/util"
)

const (
	maxUploadBytes = 50 << 20
	presignExpires = 15 * time.Minute
)

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"image/tiff":      {},
}

// Presigner generates presigned PUT URLs. Satisfied by *s3.PresignClient.
type Presigner interface {
	PresignPutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Handler serves presigned upload URLs and upload listings. The S3
// presign client and bucket layout are injected at startup.
type Handler struct {
	Presign Presigner
	Repo    Repo
	Bucket  string
	Prefix  string
}

// NewHandler constructs a Handler. The prefix always ends with a slash so
// generated keys nest under it.
func NewHandler(presign Presigner, repo Repo, bucket, prefix string) *Handler {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "documents/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Handler{Presign: presign, Repo: repo, Bucket: bucket, Prefix: prefix}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/presign", h.presign)
	rg.GET("/uploads", h.list)
}

type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type presignResponse struct {
	UploadURL        string `json:"uploadUrl"`
	S3Key            string `json:"s3Key"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func (h *Handler) presign(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.ContentType = strings.TrimSpace(req.ContentType)

	if req.FileName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName is required", nil)
		return
	}
	if _, ok := allowedContentTypes[req.ContentType]; !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "contentType is not allowed", nil)
		return
	}
	if req.SizeBytes <= 0 || req.SizeBytes > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sizeBytes exceeds limit", nil)
		return
	}

	sanitized, err := util.SanitizeFileName(req.FileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid fileName", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	fileID := uuid.NewString()
	key := path.Join(h.Prefix, userID, fileID+"-"+sanitized)

	// Keys we mint must already satisfy the downstream queue contract;
	// rejecting here beats a dispatch-time validation failure later.
	if !util.ValidObjectKey(key) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "fileName produces an invalid storage key", nil)
		return
	}

	out, err := h.Presign.PresignPutObject(c.Request.Context(), presignInput(h.Bucket, key), func(opts *s3.PresignOptions) {
		opts.Expires = presignExpires
	})
	if err != nil {
		telemetry.Error("uploads.presign.failed", map[string]any{
			"err":         err.Error(),
			"bucket":      h.Bucket,
			"key":         key,
			"contentType": req.ContentType,
			"sizeBytes":   req.SizeBytes,
			"request_id":  c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate upload url", nil)
		return
	}

	respond.JSON(c, http.StatusOK, presignResponse{
		UploadURL:        out.URL,
		S3Key:            key,
		ExpiresInSeconds: int64(presignExpires.Seconds()),
	})
}

type uploadResponse struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	FileName    string  `json:"fileName"`
	FileType    string  `json:"fileType"`
	Status      string  `json:"status"`
	WorkspaceID *string `json:"workspaceId,omitempty"`
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Repo.ListByUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.AppError(c, err)
		return
	}
	resp := make([]uploadResponse, 0, len(out))
	for _, u := range out {
		resp = append(resp, uploadResponse{
			ID:          u.ID,
			Key:         u.Key,
			FileName:    u.FileName,
			FileType:    u.FileType,
			Status:      u.Status,
			WorkspaceID: u.WorkspaceID,
		})
	}
	respond.OK(c, resp)
}

func presignInput(bucket, key string) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
}
