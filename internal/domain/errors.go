package domain

import (
	"fmt"
	"net/http"
)

// Error codes surfaced to API clients.
const (
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeNotFound         = "NOT_FOUND"
	CodeConfig           = "CONFIG_ERROR"
	CodeInternal         = "INTERNAL"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeBadUserInput     = "BAD_USER_INPUT"
)

// Coded is implemented by every domain error.
type Coded interface {
	error
	Code() string
}

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Code() string { return CodeNotFound }

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// UnauthenticatedError means the operation needs a requester and there is none.
type UnauthenticatedError struct{}

func (e UnauthenticatedError) Error() string { return "user not authenticated" }
func (e UnauthenticatedError) Code() string  { return CodeUnauthenticated }

func (e UnauthenticatedError) Is(target error) bool {
	_, ok := target.(UnauthenticatedError)
	if ok {
		return true
	}
	_, ok = target.(*UnauthenticatedError)
	return ok
}

// PermissionDeniedError means the requester is known but the policy said no.
type PermissionDeniedError struct {
	Reason string
}

func (e PermissionDeniedError) Error() string {
	if e.Reason == "" {
		return "permission denied"
	}
	return e.Reason
}

func (e PermissionDeniedError) Code() string { return CodePermissionDenied }

func (e PermissionDeniedError) Is(target error) bool {
	_, ok := target.(PermissionDeniedError)
	if ok {
		return true
	}
	_, ok = target.(*PermissionDeniedError)
	return ok
}

// ConfigError reports a required setting that is missing at call time.
type ConfigError struct {
	Key string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Key)
}

func (e ConfigError) Code() string { return CodeConfig }

func (e ConfigError) Is(target error) bool {
	_, ok := target.(ConfigError)
	if ok {
		return true
	}
	_, ok = target.(*ConfigError)
	return ok
}

// InternalError wraps a store failure that the caller cannot act on.
type InternalError struct {
	Op  string
	Err error
}

func (e InternalError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e InternalError) Code() string  { return CodeInternal }
func (e InternalError) Unwrap() error { return e.Err }

func (e InternalError) Is(target error) bool {
	_, ok := target.(InternalError)
	if ok {
		return true
	}
	_, ok = target.(*InternalError)
	return ok
}

// UpstreamError is a failed identity service call. Message is the service's own text.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("identity service responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "identity service unavailable"
}

func (e UpstreamError) Code() string { return CodeUpstream }

func (e UpstreamError) Is(target error) bool {
	_, ok := target.(UpstreamError)
	if ok {
		return true
	}
	_, ok = target.(*UpstreamError)
	return ok
}

// ValidationError rejects malformed input before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ValidationError) Code() string { return CodeBadUserInput }

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// Sentinels for errors.Is.
var (
	ErrNotFound         = NotFoundError{}
	ErrUnauthenticated  = UnauthenticatedError{}
	ErrPermissionDenied = PermissionDeniedError{}
	ErrConfig           = ConfigError{}
	ErrInternal         = InternalError{}
	ErrUpstream         = UpstreamError{}
	ErrValidation       = ValidationError{}
)
