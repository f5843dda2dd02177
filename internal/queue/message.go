package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docstream-backend/internal/shared/util"
)

const (
	// MessageTypeUploadProcessing tags messages produced by upload
	// completion for downstream consumers.
	MessageTypeUploadProcessing = "UPLOAD_PROCESSING"
	// MessageVersion is the current schema version.
	MessageVersion = "1.0"
	// MaxPayloadBytes is the queue's hard payload limit.
	MaxPayloadBytes = 262144
)

// ProcessingMessage is the payload sent to the OCR consumer when an
// upload completes.
type ProcessingMessage struct {
	JobID        string  `json:"jobId"`
	UploadID     string  `json:"uploadId"`
	DocumentID   string  `json:"documentId"`
	S3Key        string  `json:"s3Key"`
	DocumentType string  `json:"documentType"`
	UserID       string  `json:"userId"`
	WorkspaceID  *string `json:"workspaceId,omitempty"`
	FileName     string  `json:"fileName"`
	FileType     string  `json:"fileType"`
	Timestamp    string  `json:"timestamp"`
	MessageType  string  `json:"messageType"`
	Version      string  `json:"version"`
}

// NewProcessingMessage stamps a message with the current time, type tag,
// and schema version.
func NewProcessingMessage(jobID, uploadID, documentID, s3Key, documentType, userID, fileName, fileType string, workspaceID *string) ProcessingMessage {
	return ProcessingMessage{
		JobID:        jobID,
		UploadID:     uploadID,
		DocumentID:   documentID,
		S3Key:        s3Key,
		DocumentType: documentType,
		UserID:       userID,
		WorkspaceID:  workspaceID,
		FileName:     fileName,
		FileType:     fileType,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		MessageType:  MessageTypeUploadProcessing,
		Version:      MessageVersion,
	}
}

// ValidationError reports why a message was rejected before any network
// call was attempted.
type ValidationError struct {
	MissingFields []string
	Reason        string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("invalid queue message: missing %s", strings.Join(e.MissingFields, ", "))
	}
	return "invalid queue message: " + e.Reason
}

// Validate checks the message against the queue contract: every required
// field present, a well-formed object key, and a payload under the size
// limit. Returns a ValidationError naming what failed.
func Validate(msg ProcessingMessage) ([]byte, error) {
	required := []struct {
		name  string
		value string
	}{
		{"jobId", msg.JobID},
		{"uploadId", msg.UploadID},
		{"documentId", msg.DocumentID},
		{"s3Key", msg.S3Key},
		{"documentType", msg.DocumentType},
		{"userId", msg.UserID},
		{"fileName", msg.FileName},
		{"fileType", msg.FileType},
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingFields: missing}
	}

	if !util.ValidObjectKey(msg.S3Key) {
		return nil, &ValidationError{Reason: "s3Key contains characters outside the object-key contract"}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, &ValidationError{Reason: "message is not serializable"}
	}
	if len(payload) > MaxPayloadBytes {
		return nil, &ValidationError{Reason: fmt.Sprintf("payload is %d bytes, limit is %d", len(payload), MaxPayloadBytes)}
	}
	return payload, nil
}
