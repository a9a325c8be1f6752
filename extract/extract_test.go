package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/model"
	"github.com/hupe1980/agenthub/tool"
)

func noop(*core.ToolContext, map[string]any) (any, error) { return nil, nil }

func TestVocabulary(t *testing.T) {
	tools := []tool.Tool{
		tool.NewFunctionTool("debt", "", map[string]any{
			"properties": map[string]any{
				"tax_code": map[string]any{"type": "string", "description": "Tax code of the customer"},
				"period":   map[string]any{"type": "string"},
			},
		}, noop),
		tool.NewFunctionTool("invoice", "", map[string]any{
			"properties": map[string]any{
				"period": map[string]any{"type": "string", "description": "Billing period"},
			},
		}, noop),
	}

	vocab := Vocabulary(tools)
	assert.Equal(t, map[string]string{
		"tax_code": "Tax code of the customer",
		"period":   "Billing period",
	}, vocab)
}

func TestVocabulary_GenericFallback(t *testing.T) {
	assert.Equal(t, GenericVocabulary, Vocabulary(nil))
	assert.Equal(t, GenericVocabulary, Vocabulary([]tool.Tool{tool.NewFunctionTool("ping", "", nil, noop)}))
}

func TestInstruction(t *testing.T) {
	instr := Instruction(map[string]string{"tax_code": "Tax code", "amount": ""})
	assert.Contains(t, instr, "- amount\n- tax_code: Tax code\n")
	assert.Contains(t, instr, `"intent"`)
}

func TestExtract(t *testing.T) {
	llm := model.NewMockModel("m", "mock").OnGenerate(func(req model.Request) (model.Response, error) {
		assert.Equal(t, model.FormatJSON, req.ResponseFormat)
		return model.TextResponse("```json\n{\"intent\": \"debt_lookup\", \"entities\": {\"tax_code\": \"0123456789012\", \"date\": null}}\n```"), nil
	})

	res := New(llm).Extract(context.Background(), "What is the debt for tax code 0123456789012?", map[string]string{"tax_code": "Tax code"})
	assert.Equal(t, "debt_lookup", res.Intent)
	assert.Equal(t, map[string]any{"tax_code": "0123456789012"}, res.Entities)
}

func TestExtract_NeverFails(t *testing.T) {
	cases := map[string]func(model.Request) (model.Response, error){
		"non json": func(model.Request) (model.Response, error) {
			return model.TextResponse("I think the user wants their balance."), nil
		},
		"model error": func(model.Request) (model.Response, error) {
			return model.Response{}, errors.New("quota exceeded")
		},
		"empty": func(model.Request) (model.Response, error) {
			return model.TextResponse(""), nil
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			llm := model.NewMockModel("m", "mock").OnGenerate(fn)
			res := New(llm).Extract(context.Background(), "hello", GenericVocabulary)
			assert.Equal(t, Fallback(), res)
		})
	}
}

func TestExtract_MissingIntentDefaults(t *testing.T) {
	llm := model.NewMockModel("m", "mock").OnGenerate(func(model.Request) (model.Response, error) {
		return model.TextResponse(`{"entities": {"amount": 12.5}}`), nil
	})

	res := New(llm).Extract(context.Background(), "pay 12.5", GenericVocabulary)
	require.NotNil(t, res.Entities)
	assert.Equal(t, DefaultIntent, res.Intent)
	assert.Equal(t, 12.5, res.Entities["amount"])
}
