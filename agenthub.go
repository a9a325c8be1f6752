// Package agenthub provides the top-level façade of the multi-tenant agent
// hub. A Hub wires the catalog, the model client manager, the capability
// registry and the supervisor together and exposes the two operations the
// hosting service needs:
//
//  1. Route a tenant's message to the right domain agent and return an Envelope
//  2. Invalidate a tenant's cached clients and capabilities after a
//     configuration change
//
// All defaults are safe for local development and testing; production
// deployments supply a durable catalog store, a Fernet decrypter and a
// structured logger.
package agenthub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/agenthub/agent"
	"github.com/hupe1980/agenthub/capability"
	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/catalog/rediscache"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/credential"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/metrics"
	"github.com/hupe1980/agenthub/provider"
	"github.com/hupe1980/agenthub/supervisor"
	"github.com/hupe1980/agenthub/tool"
)

// Options configures the Hub.
type Options struct {
	// Store is the configuration catalog (required).
	Store catalog.Store

	// Decrypter decrypts tenant provider credentials (required).
	Decrypter credential.Decrypter

	// ModelFactories overrides the provider factories (tests, custom providers).
	ModelFactories map[string]provider.Factory

	// Retriever backs knowledge retrieval capabilities.
	Retriever tool.Retriever

	// Functions registers in-process tools for function.call capabilities.
	Functions []tool.Tool

	CredentialPolicy capability.CredentialPolicy

	// ValidateCapabilityConfig checks instance configs against their
	// template's default config schema.
	ValidateCapabilityConfig bool

	// RoutingModelID selects the classification model; empty uses the
	// tenant's default model.
	RoutingModelID string

	// ModelTimeout bounds every model call.
	ModelTimeout time.Duration

	// ToolTimeout bounds every capability call.
	ToolTimeout time.Duration

	// MaxCapabilities is the number of ranked capabilities loaded per agent.
	MaxCapabilities int

	// MaxParallelTools limits concurrent capability calls of one model reply.
	// Set to 0 for unlimited.
	MaxParallelTools int

	// MaxConcurrentRoutes limits the number of messages routed
	// simultaneously. Set to 0 for unlimited.
	MaxConcurrentRoutes int

	Metrics *metrics.Metrics

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// CatalogInvalidator is implemented by catalog stores with their own cache.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// Hub routes messages for every tenant.
type Hub struct {
	opts         Options
	models       *provider.Manager
	capabilities *capability.Registry
	routes       *semaphore.Weighted
}

// New creates a Hub.
func New(optFns ...func(o *Options)) (*Hub, error) {
	opts := Options{
		MaxCapabilities: agent.DefaultMaxCapabilities,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		return nil, errors.New("agenthub: catalog store is required")
	}
	if opts.Decrypter == nil {
		return nil, errors.New("agenthub: credential decrypter is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	models := provider.NewManager(opts.Store, opts.Decrypter, func(o *provider.Options) {
		o.Factories = opts.ModelFactories
		o.Logger = opts.Logger
	})

	capabilities := capability.NewRegistry(opts.Store, func(o *capability.Options) {
		o.Retriever = opts.Retriever
		o.Functions = make(map[string]tool.Tool, len(opts.Functions))
		for _, fn := range opts.Functions {
			o.Functions[fn.Name()] = fn
		}
		o.CredentialPolicy = opts.CredentialPolicy
		o.ValidateConfig = opts.ValidateCapabilityConfig
		o.Logger = opts.Logger
	})

	h := &Hub{
		opts:         opts,
		models:       models,
		capabilities: capabilities,
	}
	if opts.MaxConcurrentRoutes > 0 {
		h.routes = semaphore.NewWeighted(int64(opts.MaxConcurrentRoutes))
	}
	return h, nil
}

// Models returns the model client manager.
func (h *Hub) Models() *provider.Manager { return h.models }

// Capabilities returns the capability registry.
func (h *Hub) Capabilities() *capability.Registry { return h.capabilities }

func (h *Hub) dependencies() agent.Dependencies {
	return agent.Dependencies{
		Store:            h.opts.Store,
		Models:           h.models,
		Capabilities:     h.capabilities,
		Logger:           h.opts.Logger,
		Metrics:          h.opts.Metrics,
		ModelTimeout:     h.opts.ModelTimeout,
		ToolTimeout:      h.opts.ToolTimeout,
		MaxCapabilities:  h.opts.MaxCapabilities,
		MaxParallelTools: h.opts.MaxParallelTools,
	}
}

// Route handles one message of tenant. Every failure, including a missing
// tenant binding, is reported as an error envelope.
func (h *Hub) Route(ctx context.Context, tenant core.TenantContext, message string) core.Envelope {
	requestID := uuid.NewString()
	logger := logging.With(h.opts.Logger, "request_id", requestID, "tenant_id", tenant.TenantID)

	ctx, span := otel.Tracer("github.com/hupe1980/agenthub").Start(ctx, "hub.route",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("tenant.id", tenant.TenantID),
		),
	)
	defer span.End()

	if h.routes != nil {
		if err := h.routes.Acquire(ctx, 1); err != nil {
			return core.NewErrorEnvelope(core.SupervisorAgent, core.IntentRoutingError, fmt.Errorf("route admission: %w", err))
		}
		defer h.routes.Release(1)
	}

	start := time.Now()
	deps := h.dependencies()
	deps.Logger = logger

	sup, err := supervisor.New(ctx, deps, tenant, func(o *supervisor.Options) {
		o.RoutingModelID = h.opts.RoutingModelID
	})
	if err != nil {
		h.opts.Metrics.RecordRoute(metrics.OutcomeError)
		logger.Error("hub.route.setup_failed", "error", err.Error())
		return core.NewErrorEnvelope(core.SupervisorAgent, core.IntentRoutingError, err)
	}

	env := sup.Route(ctx, message)
	span.SetAttributes(
		attribute.String("route.status", string(env.Status)),
		attribute.String("route.agent", env.Agent),
	)

	logger.Info("hub.route.completed",
		"status", string(env.Status),
		"agent", env.Agent,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return env
}

// Invalidate drops cached model clients and capabilities of tenantID, or of
// every tenant when tenantID is empty. A catalog store with its own cache is
// invalidated for the tenant and for tenant independent entries.
func (h *Hub) Invalidate(ctx context.Context, tenantID string) error {
	h.models.ClearCache(tenantID)
	h.capabilities.ClearCache(tenantID)

	inv, ok := h.opts.Store.(CatalogInvalidator)
	if !ok {
		return nil
	}

	scopes := []string{""}
	if tenantID != "" {
		scopes = []string{tenantID, rediscache.GlobalScope}
	}
	for _, scope := range scopes {
		if err := inv.Invalidate(ctx, scope); err != nil {
			return fmt.Errorf("invalidate catalog cache: %w", err)
		}
	}
	return nil
}
