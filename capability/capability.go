// Package capability turns catalog capability instances into callable
// tools: it resolves the template's handler, compiles the input schema once,
// caches the result per (tenant, capability) and loads an agent's ranked
// capability set.
package capability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/internal/cache"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/tool"
)

// CredentialPolicy controls which bearer credential reaches downstream
// services. The test token replaces the caller's credential only when both
// fields are set.
type CredentialPolicy struct {
	DisableAuth     bool
	TestBearerToken string
}

// Resolve returns the credential to forward and whether the test override
// was applied.
func (p CredentialPolicy) Resolve(callerCredential string) (string, bool) {
	if p.DisableAuth && p.TestBearerToken != "" {
		return p.TestBearerToken, true
	}
	return callerCredential, false
}

// Capability is a configured capability exposed to models as a tool.
type Capability struct {
	id          string
	name        string
	description string
	schema      *tool.Schema
	handler     tool.Handler
	policy      CredentialPolicy
	logger      logging.Logger
}

var _ tool.Tool = (*Capability)(nil)

// ID returns the catalog identifier of the capability instance.
func (c *Capability) ID() string { return c.id }

// Name implements tool.Tool.
func (c *Capability) Name() string { return c.name }

// Description implements tool.Tool.
func (c *Capability) Description() string { return c.description }

// Parameters implements tool.Tool.
func (c *Capability) Parameters() map[string]any { return c.schema.Raw() }

// Schema returns the compiled input schema.
func (c *Capability) Schema() *tool.Schema { return c.schema }

// Call validates args, resolves the credential from the call's ToolContext
// and executes the handler. Errors are returned as *tool.ToolError.
func (c *Capability) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	ctx, span := otel.Tracer(tracerName).Start(toolCtx.Context(), "capability.call")
	defer span.End()
	span.SetAttributes(
		attribute.String("capability.name", c.name),
		attribute.String("tenant.id", toolCtx.TenantID()),
	)

	if args == nil {
		args = map[string]any{}
	}

	if err := c.schema.Validate(args); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, tool.AsToolError(c.name, err)
	}

	credential, overridden := c.policy.Resolve(toolCtx.Credential())
	if overridden {
		c.logger.Warn("capability.credential.test_override",
			"capability", c.name,
			"tenant_id", toolCtx.TenantID(),
		)
	}

	start := time.Now()
	result, err := c.handler.Execute(ctx, tool.Invocation{
		TenantID:   toolCtx.TenantID(),
		Credential: credential,
		Args:       args,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("capability.call.failed",
			"capability", c.name,
			"tenant_id", toolCtx.TenantID(),
			"fc_id", toolCtx.FunctionCallID(),
			"error", err.Error(),
		)
		return nil, tool.AsToolError(c.name, err)
	}

	c.logger.Debug("capability.call.completed",
		"capability", c.name,
		"tenant_id", toolCtx.TenantID(),
		"fc_id", toolCtx.FunctionCallID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

const tracerName = "github.com/hupe1980/agenthub/capability"

// Options configures a Registry.
type Options struct {
	// Handlers is the closed handler registry. Defaults to DefaultHandlers().
	Handlers map[string]HandlerBuilder

	// Retriever backs retrieval capabilities.
	Retriever tool.Retriever

	// Functions are the in-process tools behind function.call capabilities,
	// keyed by function name.
	Functions map[string]tool.Tool

	CredentialPolicy CredentialPolicy

	// ValidateConfig checks instance configs against the template's
	// default config schema when one is declared.
	ValidateConfig bool

	Logger logging.Logger
}

// Registry builds and caches capabilities.
type Registry struct {
	store catalog.Store
	opts  Options
	cache *cache.Scoped[*Capability]
}

// NewRegistry creates a Registry over the catalog store.
func NewRegistry(store catalog.Store, optFns ...func(o *Options)) *Registry {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Handlers == nil {
		opts.Handlers = DefaultHandlers()
	}
	return &Registry{
		store: store,
		opts:  opts,
		cache: cache.New[*Capability](),
	}
}

// CreateCapability returns the tenant's capability for capabilityID. Repeated
// calls return the identical cached instance until ClearCache.
func (r *Registry) CreateCapability(ctx context.Context, tenantID, capabilityID string) (*Capability, error) {
	buildCtx := context.WithoutCancel(ctx)
	return r.cache.GetOrBuild(tenantID, capabilityID, func() (*Capability, error) {
		return r.build(buildCtx, tenantID, capabilityID)
	})
}

func (r *Registry) build(ctx context.Context, tenantID, capabilityID string) (*Capability, error) {
	inst, err := r.store.CapabilityInstance(ctx, capabilityID)
	if err != nil {
		return nil, err
	}
	if !inst.Active {
		return nil, core.NewNotFoundError("capability", capabilityID, "capability is not active")
	}

	tmpl, err := r.store.CapabilityTemplate(ctx, inst.TemplateID)
	if err != nil {
		return nil, err
	}

	enabled, err := r.store.CapabilityEnabled(ctx, tenantID, capabilityID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, &core.ConfigurationError{
			Resource: "capability",
			ID:       capabilityID,
			Reason:   fmt.Sprintf("not enabled for tenant %q", tenantID),
		}
	}

	builder, ok := r.opts.Handlers[tmpl.HandlerID]
	if !ok {
		return nil, &core.UnsupportedHandlerError{Kind: "capability", Handler: tmpl.HandlerID}
	}

	if r.opts.ValidateConfig && len(tmpl.DefaultConfigSchema) > 0 {
		if err := validateConfig(tmpl, inst); err != nil {
			return nil, err
		}
	}

	schema, err := tool.CompileSchema(inst.Name, inst.InputSchema)
	if err != nil {
		return nil, &core.ConfigurationError{Resource: "capability", ID: capabilityID, Reason: "invalid input schema", Err: err}
	}

	logger := logging.With(r.opts.Logger, "capability_id", capabilityID)

	handler, err := builder(BuildContext{
		TenantID:  tenantID,
		Instance:  *inst,
		Template:  *tmpl,
		Retriever: r.opts.Retriever,
		Functions: r.opts.Functions,
		Logger:    logger,
	})
	if err != nil {
		return nil, &core.ConfigurationError{Resource: "capability", ID: capabilityID, Reason: "handler construction failed", Err: err}
	}

	r.opts.Logger.Info("capability.created",
		"tenant_id", tenantID,
		"capability_id", capabilityID,
		"name", inst.Name,
		"handler", tmpl.HandlerID,
	)

	return &Capability{
		id:          inst.ID,
		name:        inst.Name,
		description: inst.Description,
		schema:      schema,
		handler:     handler,
		policy:      r.opts.CredentialPolicy,
		logger:      logger,
	}, nil
}

func validateConfig(tmpl *catalog.CapabilityTemplate, inst *catalog.CapabilityInstance) error {
	schema, err := tool.CompileSchema(tmpl.ID, tmpl.DefaultConfigSchema)
	if err != nil {
		return &core.ConfigurationError{Resource: "capability template", ID: tmpl.ID, Reason: "invalid config schema", Err: err}
	}
	if err := schema.Validate(inst.Config); err != nil {
		return &core.ConfigurationError{Resource: "capability", ID: inst.ID, Reason: "invalid config", Err: err}
	}
	return nil
}

// LoadRankedCapabilities returns up to topN of the agent's capabilities in
// ascending priority order. Capabilities that fail to build are logged and
// skipped. topN <= 0 means no limit.
func (r *Registry) LoadRankedCapabilities(ctx context.Context, tenantID, agentID string, topN int) ([]tool.Tool, error) {
	links, err := r.store.AgentCapabilities(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if topN > 0 && len(links) > topN {
		links = links[:topN]
	}

	tools := make([]tool.Tool, 0, len(links))
	for _, link := range links {
		c, err := r.CreateCapability(ctx, tenantID, link.CapabilityID)
		if err != nil {
			r.opts.Logger.Warn("capability.load.skipped",
				"tenant_id", tenantID,
				"agent_id", agentID,
				"capability_id", link.CapabilityID,
				"error", err.Error(),
			)
			continue
		}
		tools = append(tools, c)
	}

	r.opts.Logger.Debug("capability.load.completed",
		"tenant_id", tenantID,
		"agent_id", agentID,
		"loaded", len(tools),
		"linked", len(links),
	)

	return tools, nil
}

// ClearCache drops cached capabilities of tenantID, or of every tenant when
// tenantID is empty.
func (r *Registry) ClearCache(tenantID string) {
	if tenantID == "" {
		r.cache.ClearAll()
	} else {
		r.cache.Clear(tenantID)
	}
	r.opts.Logger.Info("capability.cache_cleared", "tenant_id", tenantID)
}
