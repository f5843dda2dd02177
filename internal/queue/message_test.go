package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validMessage() ProcessingMessage {
	return NewProcessingMessage(
		"job-1", "up-1", "doc-1",
		"documents/user-1/invoice.pdf",
		"INVOICE", "user-1", "invoice.pdf", "application/pdf",
		nil,
	)
}

func TestValidateAcceptsWellFormedMessage(t *testing.T) {
	payload, err := Validate(validMessage())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded["messageType"] != MessageTypeUploadProcessing {
		t.Fatalf("messageType = %v", decoded["messageType"])
	}
	if decoded["version"] != MessageVersion {
		t.Fatalf("version = %v", decoded["version"])
	}
	if decoded["timestamp"] == "" {
		t.Fatalf("expected timestamp")
	}
	if _, present := decoded["workspaceId"]; present {
		t.Fatalf("nil workspaceId should be omitted")
	}
}

func TestValidateNamesEveryMissingField(t *testing.T) {
	msg := validMessage()
	msg.JobID = ""
	msg.S3Key = ""
	msg.FileType = "  "

	_, err := Validate(msg)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"jobId", "s3Key", "fileType"}
	if len(verr.MissingFields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", verr.MissingFields, want)
	}
	for _, name := range want {
		found := false
		for _, got := range verr.MissingFields {
			if got == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("field %s not named in %v", name, verr.MissingFields)
		}
	}
}

func TestValidateRejectsBadObjectKey(t *testing.T) {
	msg := validMessage()
	msg.S3Key = "documents/user 1/invoice.pdf"

	_, err := Validate(msg)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.MissingFields) != 0 {
		t.Fatalf("key failure should not report missing fields: %v", verr.MissingFields)
	}
}

func TestValidateRejectsOversizePayload(t *testing.T) {
	msg := validMessage()
	msg.FileName = strings.Repeat("a", MaxPayloadBytes)

	_, err := Validate(msg)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Error(), "limit") {
		t.Fatalf("expected size limit in error, got %v", verr)
	}
}
