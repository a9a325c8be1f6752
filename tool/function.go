package tool

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// FunctionTool exposes a plain Go function as a Tool.
//
// Arguments are validated against the compiled parameter schema before the
// function runs. Errors are normalized into *ToolError:
//
//	validation failure -> VALIDATION_ERROR
//	*ToolError         -> forwarded unchanged
//	other error        -> EXECUTION_ERROR
//
// A FunctionTool has no mutable state after construction and is safe for
// concurrent use.
type FunctionTool struct {
	name        string
	description string
	schema      *Schema
	schemaErr   error
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(tc *core.ToolContext, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	schema, err := CompileSchema(name, parameters)
	return &FunctionTool{
		name:        name,
		description: description,
		schema:      schema,
		schemaErr:   err,
		fn:          fn,
	}
}

// Name returns the unique tool name used in function call declarations.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the normalized JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any {
	if t.schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return t.schema.Raw()
}

// Call validates args and invokes the wrapped function.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if t.schemaErr != nil {
		return nil, NewToolError(t.name, t.schemaErr.Error(), CodeExecution)
	}

	if err := t.schema.Validate(args); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())
		return nil, AsToolError(t.name, err)
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())
		return nil, AsToolError(t.name, err)
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// AsToolError normalizes err into a *ToolError attributed to toolName.
func AsToolError(toolName string, err error) *ToolError {
	if err == nil {
		return nil
	}

	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return &ToolError{
			Tool:    toolName,
			Message: fmt.Sprintf("parameter validation failed: %v", valErr),
			Code:    CodeValidation,
			Details: valErr,
		}
	}

	return NewToolError(toolName, err.Error(), CodeExecution)
}
