// Package provider resolves a tenant's model client: it reads the tenant's
// binding and the model descriptor from the catalog, decrypts the stored
// credential, builds the provider specific client and caches it per
// (tenant, model) until explicitly cleared.
package provider

import (
	"context"
	"fmt"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/credential"
	"github.com/hupe1980/agenthub/internal/cache"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/model"
)

// DefaultModelKey is the cache key used when the tenant's default model is
// requested.
const DefaultModelKey = "default"

// Factory builds a client for a model descriptor using the decrypted
// provider credential.
type Factory func(desc catalog.ModelDescriptor, apiKey string) (model.Model, error)

// Options configures the Manager.
type Options struct {
	// Factories maps provider tags onto client constructors. Defaults to
	// DefaultFactories(DefaultConfig()).
	Factories map[string]Factory
	Logger    logging.Logger
}

// Manager implements model client resolution and caching.
type Manager struct {
	store     catalog.Store
	decrypter credential.Decrypter
	opts      Options
	clients   *cache.Scoped[model.Model]
}

// NewManager creates a Manager.
func NewManager(store catalog.Store, decrypter credential.Decrypter, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Factories == nil {
		opts.Factories = DefaultFactories(DefaultConfig())
	}
	return &Manager{
		store:     store,
		decrypter: decrypter,
		opts:      opts,
		clients:   cache.New[model.Model](),
	}
}

// GetClient returns the tenant's client for modelID, or for the tenant's
// default model when modelID is empty. Repeated calls return the identical
// cached instance until ClearCache.
func (m *Manager) GetClient(ctx context.Context, tenantID, modelID string) (model.Model, error) {
	key := modelID
	if key == "" {
		key = DefaultModelKey
	}
	buildCtx := context.WithoutCancel(ctx)
	return m.clients.GetOrBuild(tenantID, key, func() (model.Model, error) {
		return m.build(buildCtx, tenantID, modelID)
	})
}

// Descriptor returns the model descriptor GetClient would resolve for
// (tenantID, modelID).
func (m *Manager) Descriptor(ctx context.Context, tenantID, modelID string) (*catalog.ModelDescriptor, error) {
	if modelID == "" {
		binding, err := m.store.TenantBinding(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		modelID = binding.ModelID
	}
	return m.store.Model(ctx, modelID)
}

func (m *Manager) build(ctx context.Context, tenantID, modelID string) (model.Model, error) {
	binding, err := m.store.TenantBinding(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve model client: %w", err)
	}
	if modelID == "" {
		modelID = binding.ModelID
	}

	desc, err := m.store.Model(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("resolve model client: %w", err)
	}
	if !desc.Active {
		return nil, core.NewNotFoundError("model", modelID, "model is not active")
	}

	factory, ok := m.opts.Factories[desc.Provider]
	if !ok {
		return nil, &core.UnsupportedHandlerError{Kind: "provider", Handler: desc.Provider}
	}

	apiKey, err := m.decrypter.Decrypt(binding.EncryptedCredential)
	if err != nil {
		return nil, &core.CredentialError{TenantID: tenantID, Err: err}
	}

	client, err := factory(*desc, apiKey)
	if err != nil {
		return nil, fmt.Errorf("build %s client for model %q: %w", desc.Provider, desc.ID, err)
	}

	m.opts.Logger.Info("model.client.created",
		"tenant_id", tenantID,
		"model_id", desc.ID,
		"provider", desc.Provider,
		"model", desc.Name,
		"rate_limit_rpm", binding.RateLimitRPM,
	)

	return model.NewRateLimited(client, binding.RateLimitRPM), nil
}

// ClearCache drops the cached clients of tenantID, or of every tenant when
// tenantID is empty.
func (m *Manager) ClearCache(tenantID string) {
	if tenantID == "" {
		m.clients.ClearAll()
	} else {
		m.clients.Clear(tenantID)
	}
	m.opts.Logger.Info("model.client.cache_cleared", "tenant_id", tenantID)
}
