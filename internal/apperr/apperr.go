package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and client mapping.
type Kind int

const (
	// FatalInternal is the default for unclassified failures.
	FatalInternal Kind = iota
	// Validation covers malformed input caught before any side effect.
	Validation
	// Forbidden covers identity and ownership denials.
	Forbidden
	// NotFound covers missing resources.
	NotFound
	// Conflict covers uniqueness violations.
	Conflict
	// TransientInfra covers retryable database or queue failures.
	TransientInfra
)

// String returns the stable name of a kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case TransientInfra:
		return "transient_infra"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code the boundary should send.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case TransientInfra:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a structured failure record carried from services to the boundary.
// It is a pure value; building one performs no I/O.
type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Op       string
	ActorID  string
	TenantID string
	Context  map[string]any
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Fields renders the record as telemetry fields.
func (e *Error) Fields() map[string]any {
	fields := map[string]any{
		"kind":    e.Kind.String(),
		"code":    e.Code,
		"message": e.Message,
		"op":      e.Op,
	}
	if e.ActorID != "" {
		fields["actor_id"] = e.ActorID
	}
	if e.TenantID != "" {
		fields["tenant_id"] = e.TenantID
	}
	if e.Err != nil {
		fields["cause"] = e.Err.Error()
	}
	for k, v := range e.Context {
		fields["ctx_"+k] = v
	}
	return fields
}

// Opt mutates an Error during construction.
type Opt func(*Error)

// WithActor attaches the acting principal.
func WithActor(actorID string) Opt {
	return func(e *Error) { e.ActorID = actorID }
}

// WithTenant attaches the tenant scope (company or solo user).
func WithTenant(tenantID string) Opt {
	return func(e *Error) { e.TenantID = tenantID }
}

// WithContext attaches a free-form context value.
func WithContext(key string, value any) Opt {
	return func(e *Error) {
		if e.Context == nil {
			e.Context = make(map[string]any)
		}
		e.Context[key] = value
	}
}

// WithCause attaches the underlying error.
func WithCause(err error) Opt {
	return func(e *Error) { e.Err = err }
}

// E builds a structured error.
func E(kind Kind, code, op, message string, opts ...Opt) *Error {
	e := &Error{Kind: kind, Code: code, Op: op, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KindOf returns the kind of err, or FatalInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return FatalInternal
}

// CodeOf returns the stable code of err, or "INTERNAL_ERROR" when absent.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "INTERNAL_ERROR"
}

// IsRetryable reports whether the caller may safely retry the operation.
func IsRetryable(err error) bool {
	return KindOf(err) == TransientInfra
}
