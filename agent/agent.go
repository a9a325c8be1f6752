package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/extract"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/metrics"
	"github.com/hupe1980/agenthub/model"
	"github.com/hupe1980/agenthub/tool"
)

const tracerName = "github.com/hupe1980/agenthub/agent"

// DefaultMaxCapabilities is the number of ranked capabilities loaded per agent.
const DefaultMaxCapabilities = 5

// ModelResolver resolves a tenant's model clients.
type ModelResolver interface {
	GetClient(ctx context.Context, tenantID, modelID string) (model.Model, error)
	Descriptor(ctx context.Context, tenantID, modelID string) (*catalog.ModelDescriptor, error)
}

// CapabilityLoader loads an agent's ranked capabilities.
type CapabilityLoader interface {
	LoadRankedCapabilities(ctx context.Context, tenantID, agentID string, topN int) ([]tool.Tool, error)
}

// Dependencies are the shared collaborators of every domain handler.
type Dependencies struct {
	Store        catalog.Store
	Models       ModelResolver
	Capabilities CapabilityLoader
	Logger       logging.Logger
	Metrics      *metrics.Metrics

	// ModelTimeout bounds each model call (extraction and completion).
	ModelTimeout time.Duration

	// ToolTimeout bounds each capability call on top of the capability's own
	// transport timeout.
	ToolTimeout time.Duration

	MaxCapabilities  int
	MaxParallelTools int
}

// Options configures a Handler.
type Options struct {
	// Variants is the closed behaviour registry. Defaults to DefaultVariants().
	Variants map[string]Variant
}

// Handler is a domain agent bound to one tenant and caller credential.
type Handler struct {
	deps      Dependencies
	tenant    core.TenantContext
	desc      catalog.AgentDescriptor
	variant   Variant
	llm       model.Model
	modelDesc catalog.ModelDescriptor
	tools     []tool.Tool
	registry  map[string]tool.Tool
	vocab     map[string]string
	extractor *extract.Extractor
	executor  *Executor
	logger    logging.Logger
}

// New builds the handler of agentID for tenant. It fails when the agent is
// missing or inactive, its model cannot be resolved, or its handler
// identifier is unknown.
func New(ctx context.Context, deps Dependencies, tenant core.TenantContext, agentID string, optFns ...func(o *Options)) (*Handler, error) {
	desc, err := deps.Store.Agent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return NewFromDescriptor(ctx, deps, tenant, *desc, optFns...)
}

// NewFromDescriptor builds the handler of an already loaded agent
// descriptor without reading the catalog again.
func NewFromDescriptor(ctx context.Context, deps Dependencies, tenant core.TenantContext, desc catalog.AgentDescriptor, optFns ...func(o *Options)) (*Handler, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Variants == nil {
		opts.Variants = DefaultVariants()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOpLogger{}
	}
	if deps.MaxCapabilities <= 0 {
		deps.MaxCapabilities = DefaultMaxCapabilities
	}

	if !desc.Active {
		return nil, core.NewNotFoundError("agent", desc.ID, "agent is not active")
	}

	variant, ok := opts.Variants[desc.HandlerID]
	if !ok {
		return nil, &core.UnsupportedHandlerError{Kind: "agent", Handler: desc.HandlerID}
	}

	llm, err := deps.Models.GetClient(ctx, tenant.TenantID, desc.ModelID)
	if err != nil {
		return nil, err
	}
	modelDesc, err := deps.Models.Descriptor(ctx, tenant.TenantID, desc.ModelID)
	if err != nil {
		return nil, err
	}

	tools, err := deps.Capabilities.LoadRankedCapabilities(ctx, tenant.TenantID, desc.ID, deps.MaxCapabilities)
	if err != nil {
		return nil, fmt.Errorf("load capabilities of agent %q: %w", desc.Name, err)
	}

	registry := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
	}

	logger := logging.With(deps.Logger,
		"agent", desc.Name,
		"agent_id", desc.ID,
		"tenant_id", tenant.TenantID,
	)

	return &Handler{
		deps:      deps,
		tenant:    tenant,
		desc:      desc,
		variant:   variant,
		llm:       llm,
		modelDesc: *modelDesc,
		tools:     tools,
		registry:  registry,
		vocab:     extract.Vocabulary(tools),
		extractor: extract.New(llm, func(o *extract.Options) {
			o.Timeout = deps.ModelTimeout
			o.Logger = logger
		}),
		executor: NewExecutor(ExecutorConfig{
			MaxParallel: deps.MaxParallelTools,
			ToolTimeout: deps.ToolTimeout,
		}, logger, deps.Metrics),
		logger: logger,
	}, nil
}

// Name returns the agent name.
func (h *Handler) Name() string { return h.desc.Name }

// Variant returns the selected behaviour variant.
func (h *Handler) Variant() Variant { return h.variant }

// Tools returns the loaded capabilities in rank order.
func (h *Handler) Tools() []tool.Tool { return h.tools }

// Invoke handles one message. It never returns a raw failure: any error is
// reported as an error envelope.
func (h *Handler) Invoke(ctx context.Context, message string) (env core.Envelope) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "agent.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("agent.name", h.desc.Name),
		attribute.String("tenant.id", h.tenant.TenantID),
	)

	intent := extract.DefaultIntent
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("agent.invoke.panic", "recover", r)
			env = core.NewErrorEnvelope(h.desc.Name, intent, fmt.Errorf("panic recovered: %v", r))
		}
		if env.Status == core.StatusError {
			span.SetStatus(codes.Error, fmt.Sprint(env.Data["message"]))
		}
	}()

	start := time.Now()
	extraction := h.extractor.Extract(ctx, message, h.vocab)
	intent = extraction.Intent
	entities := extraction.Entities

	instruction, err := ComposeInstruction(h.desc.PromptTemplate, h.variant, h.tools, entities, h.logger)
	if err != nil {
		return h.fail(intent, err)
	}

	resp, err := h.complete(ctx, model.Request{
		Instructions: instruction,
		Contents:     []core.Content{core.NewUserContent(message)},
		Tools:        tool.Definitions(h.tools),
	})
	if err != nil {
		return h.fail(intent, err)
	}

	data := map[string]any{"response": resp.Text()}
	attempted := []map[string]any{}

	if calls := resp.FunctionCalls(); len(calls) > 0 {
		results := h.executor.Execute(ctx, h.tenant, h.registry, calls)

		toolResults := make(map[string]any, len(results))
		for _, r := range results {
			mergeEntities(entities, r.Args, h.vocab)
			toolResults[r.ID] = r.Value()
			attempted = append(attempted, map[string]any{
				"id":        r.ID,
				"name":      r.Name,
				"arguments": r.Args,
			})
		}
		data["tool_results"] = toolResults
	}

	metadata := map[string]any{
		"agent_id":   h.desc.ID,
		"tenant_id":  h.tenant.TenantID,
		"model":      modelMetadata(h.modelDesc),
		"tool_calls": attempted,
		"entities":   entities,
	}
	for k, v := range h.variant.Metadata {
		metadata[k] = v
	}

	h.logger.Info("agent.invoke.completed",
		"variant", h.variant.Name,
		"intent", intent,
		"tool_calls", len(attempted),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return core.NewSuccessEnvelope(h.desc.Name, intent, h.desc.OutputFormat, data, metadata)
}

func (h *Handler) complete(ctx context.Context, req model.Request) (model.Response, error) {
	if h.deps.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deps.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := model.Collect(ctx, h.llm, req)
	dur := time.Since(start)

	h.deps.Metrics.RecordModelCall("complete", dur, err)
	logging.LogModelCall(h.logger, h.modelDesc.Name, dur, err)

	return resp, err
}

func (h *Handler) fail(intent string, err error) core.Envelope {
	h.logger.Error("agent.invoke.failed", "intent", intent, "error", err.Error())
	return core.NewErrorEnvelope(h.desc.Name, intent, err)
}

// mergeEntities copies call arguments whose names are tracked entities into
// the snapshot.
func mergeEntities(entities, args map[string]any, vocab map[string]string) {
	for k, v := range args {
		if _, tracked := vocab[k]; tracked && v != nil {
			entities[k] = v
		}
	}
}

func modelMetadata(d catalog.ModelDescriptor) map[string]any {
	return map[string]any{
		"id":       d.ID,
		"provider": d.Provider,
		"name":     d.Name,
	}
}
