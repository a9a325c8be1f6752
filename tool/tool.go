// Package tool implements the capability calling subsystem: the Tool
// interface handed to models, schema validated arguments, uniform ToolError
// codes and the handler implementations capabilities delegate to: HTTP
// GET/POST, knowledge retrieval and in-process Go functions.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/internal/util"
	"github.com/hupe1980/agenthub/model"
)

// Tool defines a callable capability exposed to a model.
//
// Implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define a JSON schema for parameters
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments. The ToolContext
	// carries the request context, tenant and caller credential.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodePanic      = "PANIC"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Invocation is the input handed to a Handler for one call.
type Invocation struct {
	TenantID   string
	Credential string // bearer token forwarded to the downstream service
	Args       map[string]any
}

// Handler is a concrete capability implementation selected by a template's
// handler identifier.
type Handler interface {
	Execute(ctx context.Context, inv Invocation) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, inv Invocation) (any, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, inv Invocation) (any, error) { return f(ctx, inv) }

// Definition converts a Tool into the declaration sent to a model.
func Definition(t Tool) model.ToolDefinition {
	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}

// Definitions converts tools into model declarations preserving order.
func Definitions(tools []Tool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = Definition(t)
	}
	return defs
}
