package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every lookup failure for a missing or inactive
// catalog entry.
var ErrNotFound = errors.New("not found")

// Envelope error codes.
const (
	CodeConfiguration      = "configuration_error"
	CodeCredential         = "credential_error"
	CodeUnsupportedHandler = "unsupported_handler"
	CodeNotFound           = "not_found"
	CodeTimeout            = "timeout"
	CodeInternal           = "internal_error"
)

// ConfigurationError reports a missing, inactive or malformed catalog entry
// (tenant binding, model, capability, agent).
type ConfigurationError struct {
	Resource string // e.g. "tenant binding", "model", "capability"
	ID       string
	Reason   string
	Err      error
}

// NewNotFoundError builds a ConfigurationError wrapping ErrNotFound.
func NewNotFoundError(resource, id, reason string) *ConfigurationError {
	return &ConfigurationError{Resource: resource, ID: id, Reason: reason, Err: ErrNotFound}
}

func (e *ConfigurationError) Error() string {
	msg := e.Resource
	if e.ID != "" {
		msg = fmt.Sprintf("%s %q", e.Resource, e.ID)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && !errors.Is(e.Err, ErrNotFound) {
		msg += ": " + e.Err.Error()
	}
	return "configuration error: " + msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CredentialError reports that a tenant's stored provider credential could
// not be decrypted.
type CredentialError struct {
	TenantID string
	Err      error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error for tenant %q: %v", e.TenantID, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// UnsupportedHandlerError reports a handler identifier (or provider tag)
// outside the closed set known to this build.
type UnsupportedHandlerError struct {
	Kind    string // "provider", "capability" or "agent"
	Handler string
}

func (e *UnsupportedHandlerError) Error() string {
	return fmt.Sprintf("unsupported %s handler %q", e.Kind, e.Handler)
}

// ErrorCode maps an error onto the code reported in error envelopes.
func ErrorCode(err error) string {
	var (
		uhErr   *UnsupportedHandlerError
		credErr *CredentialError
		cfgErr  *ConfigurationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &uhErr):
		return CodeUnsupportedHandler
	case errors.As(err, &credErr):
		return CodeCredential
	case errors.As(err, &cfgErr):
		return CodeConfiguration
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	default:
		return CodeInternal
	}
}
