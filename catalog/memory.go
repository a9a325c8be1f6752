package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/hupe1980/agenthub/core"
)

// MemoryStore is an in-process Store used by tests, examples and local runs.
// Put methods replace existing entries.
type MemoryStore struct {
	mu           sync.RWMutex
	models       map[string]ModelDescriptor
	bindings     map[string]TenantModelBinding
	templates    map[string]CapabilityTemplate
	instances    map[string]CapabilityInstance
	agents       map[string]AgentDescriptor
	links        map[string][]AgentCapabilityLink
	agentEnabled map[string]map[string]bool
	capEnabled   map[string]map[string]bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models:       map[string]ModelDescriptor{},
		bindings:     map[string]TenantModelBinding{},
		templates:    map[string]CapabilityTemplate{},
		instances:    map[string]CapabilityInstance{},
		agents:       map[string]AgentDescriptor{},
		links:        map[string][]AgentCapabilityLink{},
		agentEnabled: map[string]map[string]bool{},
		capEnabled:   map[string]map[string]bool{},
	}
}

// PutModel stores a model descriptor.
func (s *MemoryStore) PutModel(m ModelDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[m.ID] = m
}

// PutBinding stores the tenant's model binding.
func (s *MemoryStore) PutBinding(b TenantModelBinding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[b.TenantID] = b
}

// PutTemplate stores a capability template.
func (s *MemoryStore) PutTemplate(t CapabilityTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
}

// PutCapability stores a capability instance.
func (s *MemoryStore) PutCapability(c CapabilityInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[c.ID] = c
}

// PutAgent stores an agent descriptor.
func (s *MemoryStore) PutAgent(a AgentDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.ID] = a
}

// Link binds a capability to an agent with the given priority.
func (s *MemoryStore) Link(agentID, capabilityID string, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.links[agentID]
	for i, l := range links {
		if l.CapabilityID == capabilityID {
			links[i].Priority = priority
			return
		}
	}
	s.links[agentID] = append(links, AgentCapabilityLink{AgentID: agentID, CapabilityID: capabilityID, Priority: priority})
}

// EnableAgent toggles an agent for a tenant.
func (s *MemoryStore) EnableAgent(tenantID, agentID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setToggle(s.agentEnabled, tenantID, agentID, enabled)
}

// EnableCapability toggles a capability for a tenant.
func (s *MemoryStore) EnableCapability(tenantID, capabilityID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setToggle(s.capEnabled, tenantID, capabilityID, enabled)
}

func setToggle(m map[string]map[string]bool, tenantID, id string, enabled bool) {
	t, ok := m[tenantID]
	if !ok {
		t = map[string]bool{}
		m[tenantID] = t
	}
	t[id] = enabled
}

// TenantBinding implements Store.
func (s *MemoryStore) TenantBinding(_ context.Context, tenantID string) (*TenantModelBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[tenantID]
	if !ok {
		return nil, core.NewNotFoundError("tenant binding", tenantID, "no model configuration for tenant")
	}
	return &b, nil
}

// Model implements Store.
func (s *MemoryStore) Model(_ context.Context, modelID string) (*ModelDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[modelID]
	if !ok {
		return nil, core.NewNotFoundError("model", modelID, "not found")
	}
	return &m, nil
}

// CapabilityTemplate implements Store.
func (s *MemoryStore) CapabilityTemplate(_ context.Context, templateID string) (*CapabilityTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateID]
	if !ok {
		return nil, core.NewNotFoundError("capability template", templateID, "not found")
	}
	return &t, nil
}

// CapabilityInstance implements Store.
func (s *MemoryStore) CapabilityInstance(_ context.Context, capabilityID string) (*CapabilityInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.instances[capabilityID]
	if !ok {
		return nil, core.NewNotFoundError("capability", capabilityID, "not found")
	}
	return &c, nil
}

// Agent implements Store.
func (s *MemoryStore) Agent(_ context.Context, agentID string) (*AgentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[agentID]
	if !ok {
		return nil, core.NewNotFoundError("agent", agentID, "not found")
	}
	return &a, nil
}

// AgentByName implements Store.
func (s *MemoryStore) AgentByName(_ context.Context, name string) (*AgentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agents {
		if a.Name == name {
			a := a
			return &a, nil
		}
	}
	return nil, core.NewNotFoundError("agent", name, "not found")
}

// AgentCapabilities implements Store.
func (s *MemoryStore) AgentCapabilities(_ context.Context, agentID string) ([]AgentCapabilityLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := append([]AgentCapabilityLink{}, s.links[agentID]...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Priority < links[j].Priority })
	return links, nil
}

// EnabledAgents implements Store.
func (s *MemoryStore) EnabledAgents(_ context.Context, tenantID string) ([]AgentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AgentDescriptor
	for id, enabled := range s.agentEnabled[tenantID] {
		a, ok := s.agents[id]
		if !enabled || !ok || !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CapabilityEnabled implements Store.
func (s *MemoryStore) CapabilityEnabled(_ context.Context, tenantID, capabilityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.capEnabled[tenantID][capabilityID], nil
}
