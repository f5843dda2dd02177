package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfUnwrapsThroughWrapping(t *testing.T) {
	base := E(Conflict, "DUPLICATE_KEY", "uploads.create", "key already exists")
	wrapped := fmt.Errorf("complete upload: %w", base)

	if got := KindOf(wrapped); got != Conflict {
		t.Fatalf("KindOf = %v, want Conflict", got)
	}
	if got := CodeOf(wrapped); got != "DUPLICATE_KEY" {
		t.Fatalf("CodeOf = %q, want DUPLICATE_KEY", got)
	}
}

func TestKindOfDefaultsToFatalInternal(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != FatalInternal {
		t.Fatalf("KindOf = %v, want FatalInternal", got)
	}
	if CodeOf(errors.New("boom")) != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR code for plain errors")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{TransientInfra, http.StatusServiceUnavailable},
		{FatalInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.HTTPStatus(); got != tc.want {
			t.Fatalf("%v.HTTPStatus = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestFieldsIncludeActorTenantAndContext(t *testing.T) {
	err := E(Forbidden, "WORKSPACE_ACCESS_DENIED", "workspaces.resolve", "not an owner",
		WithActor("user-1"),
		WithTenant("company-1"),
		WithContext("workspace_id", "ws-1"),
		WithCause(errors.New("owner mismatch")),
	)

	fields := err.Fields()
	if fields["actor_id"] != "user-1" {
		t.Fatalf("actor_id = %v", fields["actor_id"])
	}
	if fields["tenant_id"] != "company-1" {
		t.Fatalf("tenant_id = %v", fields["tenant_id"])
	}
	if fields["ctx_workspace_id"] != "ws-1" {
		t.Fatalf("ctx_workspace_id = %v", fields["ctx_workspace_id"])
	}
	if fields["cause"] != "owner mismatch" {
		t.Fatalf("cause = %v", fields["cause"])
	}
	if fields["kind"] != "forbidden" {
		t.Fatalf("kind = %v", fields["kind"])
	}
}

func TestIsRetryableOnlyForTransientInfra(t *testing.T) {
	if !IsRetryable(E(TransientInfra, "DB_TIMEOUT", "db.tx", "transaction timed out")) {
		t.Fatalf("expected TransientInfra to be retryable")
	}
	if IsRetryable(E(Conflict, "DUPLICATE_KEY", "uploads.create", "dup")) {
		t.Fatalf("Conflict must not be retryable")
	}
}
