package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/model"
)

const toolCallCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{
        "id": "call_1",
        "type": "function",
        "function": {"name": "get_debt", "arguments": "{\"tax_code\":\"0101\"}"}
      }]
    }
  }],
  "usage": {"prompt_tokens": 11, "completion_tokens": 7, "total_tokens": 18}
}`

func TestModel_Generate(t *testing.T) {
	var (
		body    map[string]any
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolCallCompletion))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "sk-test"
		o.BaseURL = srv.URL + "/"
		o.Headers = map[string]string{"X-Title": "AgentHub"}
		o.Provider = "openrouter"
		o.Model = "gpt-4o-mini"
		o.Temperature = 0.7
	})

	resp, err := model.Collect(context.Background(), m, model.Request{
		Instructions:   "You are a debt assistant.",
		Contents:       []core.Content{core.NewUserContent("How much do I owe?")},
		ResponseFormat: model.FormatJSON,
		Tools: []model.ToolDefinition{{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        "get_debt",
				Description: "Fetch debt",
				Parameters:  map[string]any{"type": "object", "properties": map[string]any{"tax_code": map[string]any{"type": "string"}}},
			},
		}},
	})
	require.NoError(t, err)

	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "call_1", calls[0].ID)
	assert.Equal(t, `{"tax_code":"0101"}`, calls[0].Arguments)
	assert.Equal(t, 18, resp.Usage.TotalTokens)

	assert.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	assert.Equal(t, "AgentHub", headers.Get("X-Title"))
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.Equal(t, 0.7, body["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

	info := m.Info()
	assert.Equal(t, "openrouter", info.Provider)
	assert.Equal(t, "gpt-4o-mini", info.Name)
}

func TestModel_GenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad request","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "sk-test"
		o.BaseURL = srv.URL + "/"
	})

	_, err := model.Collect(context.Background(), m, model.Request{Contents: []core.Content{core.NewUserContent("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api error")
}

func TestDefaultOptions(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k" })
	assert.Equal(t, float64(0), m.Options().Temperature)
	assert.Equal(t, int64(4096), m.Options().MaxCompletionTokens)
	assert.Equal(t, "openai", m.Info().Provider)
}
