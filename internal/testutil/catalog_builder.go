package testutil

import (
	"github.com/hupe1980/agenthub/catalog"
)

// HTTPGetTemplateID is the template registered by HTTPCapability.
const HTTPGetTemplateID = "tpl-http-get"

// CatalogBuilder seeds an in-memory catalog with fluent chaining.
// Example:
//
//	store := NewCatalogBuilder().
//	  Model("m1", "mock", "mock-model").
//	  Binding("t1", "m1", "sealed").
//	  Agent(catalog.AgentDescriptor{ID: "a1", Name: "AgentDebt", HandlerID: "AgentDebt"}).
//	  Enable("t1", "a1").
//	  Build()
type CatalogBuilder struct {
	store *catalog.MemoryStore
}

// NewCatalogBuilder creates a builder over an empty MemoryStore.
func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{store: catalog.NewMemoryStore()}
}

// Model registers an active model descriptor (chainable).
func (b *CatalogBuilder) Model(id, provider, name string) *CatalogBuilder {
	b.store.PutModel(catalog.ModelDescriptor{ID: id, Provider: provider, Name: name, Active: true})
	return b
}

// Binding binds tenantID to modelID with the given encrypted credential (chainable).
func (b *CatalogBuilder) Binding(tenantID, modelID, encryptedCredential string) *CatalogBuilder {
	b.store.PutBinding(catalog.TenantModelBinding{
		TenantID:            tenantID,
		ModelID:             modelID,
		EncryptedCredential: encryptedCredential,
	})
	return b
}

// Template registers a capability template (chainable).
func (b *CatalogBuilder) Template(id, handlerID string) *CatalogBuilder {
	b.store.PutTemplate(catalog.CapabilityTemplate{ID: id, Type: "custom", HandlerID: handlerID})
	return b
}

// Capability registers an active capability instance (chainable).
func (b *CatalogBuilder) Capability(c catalog.CapabilityInstance) *CatalogBuilder {
	c.Active = true
	b.store.PutCapability(c)
	return b
}

// HTTPCapability registers an http.get capability calling baseURL+endpoint
// that requires every property in required (chainable).
func (b *CatalogBuilder) HTTPCapability(id, name, description, baseURL, endpoint string, required ...string) *CatalogBuilder {
	b.store.PutTemplate(catalog.CapabilityTemplate{ID: HTTPGetTemplateID, Type: "http", HandlerID: "http.get"})

	props := map[string]any{}
	req := make([]any, 0, len(required))
	for _, r := range required {
		props[r] = map[string]any{"type": "string"}
		req = append(req, r)
	}

	return b.Capability(catalog.CapabilityInstance{
		ID:          id,
		TemplateID:  HTTPGetTemplateID,
		Name:        name,
		Description: description,
		Config:      map[string]any{"base_url": baseURL, "endpoint": endpoint},
		InputSchema: map[string]any{"type": "object", "properties": props, "required": req},
	})
}

// Agent registers an active agent descriptor (chainable).
func (b *CatalogBuilder) Agent(a catalog.AgentDescriptor) *CatalogBuilder {
	a.Active = true
	b.store.PutAgent(a)
	return b
}

// Link binds a capability to an agent (chainable).
func (b *CatalogBuilder) Link(agentID, capabilityID string, priority int) *CatalogBuilder {
	b.store.Link(agentID, capabilityID, priority)
	return b
}

// Enable enables agents for tenantID (chainable).
func (b *CatalogBuilder) Enable(tenantID string, agentIDs ...string) *CatalogBuilder {
	for _, id := range agentIDs {
		b.store.EnableAgent(tenantID, id, true)
	}
	return b
}

// EnableCapabilities enables capabilities for tenantID (chainable).
func (b *CatalogBuilder) EnableCapabilities(tenantID string, capabilityIDs ...string) *CatalogBuilder {
	for _, id := range capabilityIDs {
		b.store.EnableCapability(tenantID, id, true)
	}
	return b
}

// Build returns the seeded store. Further builder calls keep mutating it.
func (b *CatalogBuilder) Build() *catalog.MemoryStore {
	return b.store
}
