package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/metrics"
	"github.com/hupe1980/agenthub/tool"
)

// CallResult is the outcome of one requested function call.
type CallResult struct {
	ID     string
	Name   string
	Args   map[string]any
	Result any
	Err    *tool.ToolError
}

// Value returns the entry recorded in the envelope's tool results.
func (r CallResult) Value() any {
	if r.Err != nil {
		return map[string]any{
			"error": r.Err.Message,
			"code":  r.Err.Code,
			"tool":  r.Name,
		}
	}
	return r.Result
}

// ExecutorConfig configures the parallel executor.
type ExecutorConfig struct {
	MaxParallel    int           // 0 or <1 => no explicit limit (len(calls))
	ToolTimeout    time.Duration // 0 => bounded only by the caller's context
	LogStartEvents bool
}

// Executor runs a batch of function calls concurrently. A failing or
// panicking call never affects its siblings; exactly one CallResult is
// returned per call, in request order.
type Executor struct {
	cfg     ExecutorConfig
	logger  logging.Logger
	metrics *metrics.Metrics
}

// NewExecutor creates an Executor.
func NewExecutor(cfg ExecutorConfig, logger logging.Logger, m *metrics.Metrics) *Executor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Executor{cfg: cfg, logger: logger, metrics: m}
}

// Execute runs calls against the tool registry. Calls without an ID get a
// generated one.
func (e *Executor) Execute(ctx context.Context, tenant core.TenantContext, registry map[string]tool.Tool, calls []core.FunctionCall) []CallResult {
	n := len(calls)
	if n == 0 {
		return nil
	}

	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = uuid.NewString()
		}
	}

	results := make([]CallResult, n)

	// Fast path: single call, execute inline.
	if n == 1 {
		results[0] = e.executeOne(ctx, tenant, registry, calls[0])
		return results
	}

	maxPar := e.cfg.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(ctx, tenant, registry, fc)
		}(i, calls[i])
	}

	wg.Wait()

	e.logger.Debug("agent.tools.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

func (e *Executor) executeOne(ctx context.Context, tenant core.TenantContext, registry map[string]tool.Tool, fc core.FunctionCall) CallResult {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agent.tool.execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", fc.Name),
		attribute.String("tool.call_id", fc.ID),
	)

	res := CallResult{ID: fc.ID, Name: fc.Name}

	if e.cfg.LogStartEvents {
		e.logger.Info("agent.tool.start", "tool", fc.Name, "function_call_id", fc.ID)
	}

	if err := ctx.Err(); err != nil {
		res.Err = tool.AsToolError(fc.Name, err)
		return res
	}

	if e.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.ToolTimeout)
		defer cancel()
	}

	start := time.Now()
	var (
		result any
		err    error
	)
	func() { // panic safety
		defer func() {
			if r := recover(); r != nil {
				err = panicError(fc.Name, r)
				e.logger.Error("agent.tool.panic", "tool", fc.Name, "recover", r)
			}
		}()
		res.Args, err = decodeArgs(fc.Arguments)
		if err != nil {
			err = &tool.ToolError{Tool: fc.Name, Message: err.Error(), Code: tool.CodeValidation}
			return
		}
		impl, ok := registry[fc.Name]
		if !ok {
			err = &tool.ToolError{Tool: fc.Name, Message: fmt.Sprintf("tool %s not found", fc.Name), Code: tool.CodeNotFound}
			return
		}
		toolCtx := core.NewToolContext(ctx, tenant, fc.ID, e.logger)
		result, err = impl.Call(toolCtx, res.Args)
	}()
	dur := time.Since(start)

	e.metrics.RecordToolCall(fc.Name, dur, err)
	e.logger.Info("agent.tool.executed",
		"tool", fc.Name,
		"function_call_id", fc.ID,
		"duration_ms", dur.Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		res.Err = tool.AsToolError(fc.Name, err)
		return res
	}

	res.Result = result
	return res
}

// panicError converts a recovered panic value into a PANIC tool error.
func panicError(toolName string, r any) error {
	return &tool.ToolError{
		Tool:    toolName,
		Message: fmt.Sprintf("panic recovered: %v", r),
		Code:    tool.CodePanic,
		Details: string(debug.Stack()),
	}
}

func decodeArgs(args string) (map[string]any, error) {
	argMap := map[string]any{}
	if args == "" {
		return argMap, nil
	}
	if err := json.Unmarshal([]byte(args), &argMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}
	if argMap == nil {
		argMap = map[string]any{}
	}
	return argMap, nil
}
