// Package catalog defines the configuration entities the routing pipeline
// reads (models, tenant bindings, capability templates and instances, agents,
// agent-capability links, tenant enablement) and the read-only Store the
// core consumes. Writes belong to the administrative boundary.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// ModelDescriptor describes a model offered by a provider.
type ModelDescriptor struct {
	ID                 string          `json:"id"`
	Provider           string          `json:"provider"` // openai, anthropic, gemini, openrouter
	Name               string          `json:"name"`
	ContextWindow      int             `json:"context_window"`
	CostPerInputToken  decimal.Decimal `json:"cost_per_input_token"`
	CostPerOutputToken decimal.Decimal `json:"cost_per_output_token"`
	Capabilities       []string        `json:"capabilities,omitempty"`
	Active             bool            `json:"active"`
}

// TenantModelBinding is the tenant's default model plus its encrypted
// provider credential and rate limits. One per tenant.
type TenantModelBinding struct {
	TenantID            string `json:"tenant_id"`
	ModelID             string `json:"model_id"`
	EncryptedCredential string `json:"encrypted_credential"`
	RateLimitRPM        int    `json:"rate_limit_rpm"`
	RateLimitTPM        int    `json:"rate_limit_tpm"`
}

// CapabilityTemplate names the handler implementation behind a family of
// capabilities.
type CapabilityTemplate struct {
	ID                  string         `json:"id"`
	Type                string         `json:"type"`
	HandlerID           string         `json:"handler_id"`
	DefaultConfigSchema map[string]any `json:"default_config_schema,omitempty"`
}

// CapabilityInstance is a configured, callable capability.
type CapabilityInstance struct {
	ID          string         `json:"id"`
	TemplateID  string         `json:"template_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Config      map[string]any `json:"config"`
	InputSchema map[string]any `json:"input_schema"`
	Active      bool           `json:"active"`
}

// AgentDescriptor describes a domain agent.
type AgentDescriptor struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PromptTemplate string `json:"prompt_template"`
	ModelID        string `json:"model_id,omitempty"` // empty: tenant default
	HandlerID      string `json:"handler_id"`
	OutputFormat   string `json:"output_format,omitempty"`
	Active         bool   `json:"active"`
}

// AgentCapabilityLink binds a capability to an agent. Lower priority values
// rank first.
type AgentCapabilityLink struct {
	AgentID      string `json:"agent_id"`
	CapabilityID string `json:"capability_id"`
	Priority     int    `json:"priority"`
}

// Store is the read-only catalog surface. Lookups of missing rows return an
// error wrapping core.ErrNotFound; activity flags are reported, not filtered,
// except by EnabledAgents.
type Store interface {
	TenantBinding(ctx context.Context, tenantID string) (*TenantModelBinding, error)
	Model(ctx context.Context, modelID string) (*ModelDescriptor, error)
	CapabilityTemplate(ctx context.Context, templateID string) (*CapabilityTemplate, error)
	CapabilityInstance(ctx context.Context, capabilityID string) (*CapabilityInstance, error)
	Agent(ctx context.Context, agentID string) (*AgentDescriptor, error)
	AgentByName(ctx context.Context, name string) (*AgentDescriptor, error)
	// AgentCapabilities returns the agent's links ordered by ascending priority.
	AgentCapabilities(ctx context.Context, agentID string) ([]AgentCapabilityLink, error)
	// EnabledAgents returns the active agents enabled for the tenant, ordered by name.
	EnabledAgents(ctx context.Context, tenantID string) ([]AgentDescriptor, error)
	// CapabilityEnabled reports whether the tenant has the capability enabled.
	CapabilityEnabled(ctx context.Context, tenantID, capabilityID string) (bool, error)
}
