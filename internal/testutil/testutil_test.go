package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/model"
)

func TestCatalogBuilder(t *testing.T) {
	ctx := context.Background()
	store := NewCatalogBuilder().
		Model("m1", "mock", "mock-model").
		Binding("t1", "m1", "sealed").
		HTTPCapability("c1", "get_debt", "Debt lookup", "http://debt", "/debt/{tax_code}", "tax_code").
		Agent(catalog.AgentDescriptor{ID: "a1", Name: "AgentDebt", HandlerID: "AgentDebt"}).
		Link("a1", "c1", 1).
		Enable("t1", "a1").
		EnableCapabilities("t1", "c1").
		Build()

	agents, err := store.EnabledAgents(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.True(t, agents[0].Active)

	c, err := store.CapabilityInstance(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []any{"tax_code"}, c.InputSchema["required"])

	tpl, err := store.CapabilityTemplate(ctx, HTTPGetTemplateID)
	require.NoError(t, err)
	assert.Equal(t, "http.get", tpl.HandlerID)

	enabled, err := store.CapabilityEnabled(ctx, "t1", "c1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestScriptedModel(t *testing.T) {
	llm := NewScriptedModel(ModelScript{
		Route:      "AgentDebt",
		Completion: CallCapability("", "call-1", "get_debt", `{"tax_code":"1"}`),
	})
	ctx := context.Background()

	resp, err := model.Collect(ctx, llm, model.Request{ResponseFormat: model.FormatJSON})
	require.NoError(t, err)
	assert.Contains(t, resp.Text(), `"intent": "query"`)

	resp, err = model.Collect(ctx, llm, model.Request{Instructions: "You are a supervisor that routes user messages to specialized agents."})
	require.NoError(t, err)
	assert.Equal(t, "AgentDebt", resp.Text())

	resp, err = model.Collect(ctx, llm, model.Request{Instructions: "You handle debt."})
	require.NoError(t, err)
	require.Len(t, resp.FunctionCalls(), 1)
	assert.Equal(t, "get_debt", resp.FunctionCalls()[0].Name)
}
