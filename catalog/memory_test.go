package catalog

import (
	"context"
	"testing"

	"github.com/hupe1980/agenthub/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutModel(ModelDescriptor{ID: "m1", Provider: "openai", Name: "gpt-4o-mini", CostPerInputToken: decimal.RequireFromString("0.00015"), Active: true})
	s.PutBinding(TenantModelBinding{TenantID: "t1", ModelID: "m1", EncryptedCredential: "enc"})
	s.PutTemplate(CapabilityTemplate{ID: "tpl", HandlerID: "http.get"})
	s.PutCapability(CapabilityInstance{ID: "c1", TemplateID: "tpl", Name: "get_debt", Active: true})
	s.PutAgent(AgentDescriptor{ID: "a1", Name: "DebtAgent", HandlerID: "debt", Active: true})

	m, err := s.Model(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m.CostPerInputToken.Equal(decimal.RequireFromString("0.00015")))

	b, err := s.TenantBinding(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "m1", b.ModelID)

	a, err := s.AgentByName(ctx, "DebtAgent")
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)

	_, err = s.TenantBinding(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Model(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.CapabilityInstance(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.CapabilityTemplate(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Agent(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.AgentByName(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_LinksOrderedByPriority(t *testing.T) {
	s := NewMemoryStore()
	s.Link("a1", "c3", 3)
	s.Link("a1", "c1", 1)
	s.Link("a1", "c2", 2)
	s.Link("a1", "c3", 0) // re-link updates priority

	links, err := s.AgentCapabilities(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, []string{"c3", "c1", "c2"}, []string{links[0].CapabilityID, links[1].CapabilityID, links[2].CapabilityID})
}

func TestMemoryStore_EnabledAgents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.PutAgent(AgentDescriptor{ID: "a1", Name: "Zeta", Active: true})
	s.PutAgent(AgentDescriptor{ID: "a2", Name: "Alpha", Active: true})
	s.PutAgent(AgentDescriptor{ID: "a3", Name: "Inactive", Active: false})
	s.PutAgent(AgentDescriptor{ID: "a4", Name: "Disabled", Active: true})
	s.EnableAgent("t1", "a1", true)
	s.EnableAgent("t1", "a2", true)
	s.EnableAgent("t1", "a3", true)
	s.EnableAgent("t1", "a4", false)

	agents, err := s.EnabledAgents(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "Alpha", agents[0].Name)
	assert.Equal(t, "Zeta", agents[1].Name)

	none, err := s.EnabledAgents(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_CapabilityEnabled(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.EnableCapability("t1", "c1", true)

	ok, err := s.CapabilityEnabled(ctx, "t1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CapabilityEnabled(ctx, "t2", "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}
