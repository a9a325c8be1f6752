package core

import (
	"context"

	"github.com/hupe1980/agenthub/logging"
)

// ToolContext provides the scoped surface handed to a capability for a single
// function call: the request context, the tenant the call executes for, the
// caller's credential and a logger correlated with the function call id.
type ToolContext struct {
	ctx            context.Context
	tenant         TenantContext
	functionCallID string

	*loggerAdapter
}

// NewToolContext constructs a tool context for one function call.
func NewToolContext(ctx context.Context, tenant TenantContext, functionCallID string, logger logging.Logger) *ToolContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ToolContext{
		ctx:            ctx,
		tenant:         tenant,
		functionCallID: functionCallID,
		loggerAdapter:  newLoggerAdapter(logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// TenantID returns the tenant the call executes for.
func (tc *ToolContext) TenantID() string { return tc.tenant.TenantID }

// Credential returns the caller's bearer credential.
func (tc *ToolContext) Credential() string { return tc.tenant.Credential }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }
