package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"docstream-backend/internal/shared/util"
)

type fakePresigner struct {
	lastKey string
	err     error
}

func (f *fakePresigner) PresignPutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastKey = *input.Key
	return &v4.PresignedHTTPRequest{
		URL:    "https://example-bucket.s3.amazonaws.com/" + *input.Key + "?signature=stub",
		Method: http.MethodPut,
	}, nil
}

func newTestRouter(presigner Presigner) (*gin.Engine, *MemoryRepo) {
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	handler := NewHandler(presigner, repo, "example-bucket", "documents/")
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func doPresign(t *testing.T, router *gin.Engine, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/presign", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestPresignReturnsContractSatisfyingKey(t *testing.T) {
	presigner := &fakePresigner{}
	router, _ := newTestRouter(presigner)

	resp := doPresign(t, router, map[string]any{
		"fileName":    "my invoice (final).pdf",
		"contentType": "application/pdf",
		"sizeBytes":   1024,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		UploadURL        string `json:"uploadUrl"`
		S3Key            string `json:"s3Key"`
		ExpiresInSeconds int64  `json:"expiresInSeconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.UploadURL == "" || out.ExpiresInSeconds <= 0 {
		t.Fatalf("incomplete response: %+v", out)
	}
	if !strings.HasPrefix(out.S3Key, "documents/user-1/") {
		t.Fatalf("key outside expected prefix: %s", out.S3Key)
	}
	if !util.ValidObjectKey(out.S3Key) {
		t.Fatalf("key violates object-key contract: %s", out.S3Key)
	}
	if out.S3Key != presigner.lastKey {
		t.Fatalf("response key %s does not match presigned key %s", out.S3Key, presigner.lastKey)
	}
}

func TestPresignRejectsDisallowedContentType(t *testing.T) {
	router, _ := newTestRouter(&fakePresigner{})

	resp := doPresign(t, router, map[string]any{
		"fileName":    "notes.txt",
		"contentType": "text/plain",
		"sizeBytes":   10,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestPresignRejectsOversizeAndMissingName(t *testing.T) {
	router, _ := newTestRouter(&fakePresigner{})

	resp := doPresign(t, router, map[string]any{
		"fileName":    "big.pdf",
		"contentType": "application/pdf",
		"sizeBytes":   maxUploadBytes + 1,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("oversize: expected 400, got %d", resp.Code)
	}

	resp = doPresign(t, router, map[string]any{
		"fileName":    "  ",
		"contentType": "application/pdf",
		"sizeBytes":   10,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("empty name: expected 400, got %d", resp.Code)
	}
}

func TestPresignSignedHeadersExcludeContentLength(t *testing.T) {
	cfg := aws.Config{
		Region:      "us-east-1",
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider("AKID", "SECRET", "")),
	}
	presigner := s3.NewPresignClient(s3.NewFromConfig(cfg))

	out, err := presigner.PresignPutObject(context.Background(), presignInput("bucket", "documents/user/file.pdf"))
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	parsed, err := url.Parse(out.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	signed := parsed.Query().Get("X-Amz-SignedHeaders")
	if signed == "" {
		t.Fatalf("expected X-Amz-SignedHeaders")
	}
	if strings.Contains(signed, "content-length") {
		t.Fatalf("unexpected content-length in signed headers: %s", signed)
	}
}

func TestListReturnsOwnUploadsOnly(t *testing.T) {
	router, repo := newTestRouter(&fakePresigner{})
	ctx := context.Background()

	if err := repo.CreateTx(ctx, nil, Upload{ID: "u1", Key: "documents/user-1/a.pdf", FileName: "a.pdf", FileType: "application/pdf", Status: StatusUploaded, UserID: "user-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.CreateTx(ctx, nil, Upload{ID: "u2", Key: "documents/user-2/b.pdf", FileName: "b.pdf", FileType: "application/pdf", Status: StatusUploaded, UserID: "user-2"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].ID != "u1" {
		t.Fatalf("expected only user-1's upload, got %+v", out)
	}
}
