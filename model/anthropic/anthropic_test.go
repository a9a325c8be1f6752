package anthropic

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

const toolUseMessage = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-sonnet-20241022",
  "content": [
    {"type": "text", "text": "Looking that up."},
    {"type": "tool_use", "id": "tu_1", "name": "get_debt", "input": {"tax_code": "0101"}}
  ],
  "stop_reason": "tool_use",
  "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 8}
}`

func TestModel_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolUseMessage))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "sk-ant"
		o.BaseURL = srv.URL + "/"
	})

	resp, err := model.Collect(context.Background(), m, model.Request{
		Instructions: "You are a debt assistant.",
		Contents:     []core.Content{core.NewUserContent("How much do I owe?")},
		Tools: []model.ToolDefinition{{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        "get_debt",
				Description: "Fetch debt",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{"tax_code": map[string]any{"type": "string"}},
					"required":   []string{"tax_code"},
				},
			},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Looking that up.", resp.Text())
	calls := resp.FunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "tu_1", calls[0].ID)
	assert.JSONEq(t, `{"tax_code":"0101"}`, calls[0].Arguments)
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "You are a debt assistant.", system[0].(map[string]any)["text"])
	assert.Equal(t, float64(0), body["temperature"])
	tools := body["tools"].([]any)
	require.Len(t, tools, 1)
	assert.Equal(t, "get_debt", tools[0].(map[string]any)["name"])
}

func TestModel_Info(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k"; o.Model = "claude-3-haiku-20240307" })
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.Equal(t, "claude-3-haiku-20240307", m.Info().Name)
}

func TestModel_JSONFormatSteersSystemPrompt(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"m",
			"content":[{"type":"text","text":"{\"intent\":\"query\"}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "sk-ant"
		o.BaseURL = srv.URL + "/"
	})

	resp, err := model.Collect(context.Background(), m, model.Request{
		Instructions:   "Extract entities.",
		Contents:       []core.Content{core.NewUserContent("hi")},
		ResponseFormat: model.FormatJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"query"}`, resp.Text())
	assert.Equal(t, "end_turn", resp.FinishReason)

	system := body["system"].([]any)
	require.Len(t, system, 2)
	assert.Equal(t, jsonInstruction, system[1].(map[string]any)["text"])
	assert.NotContains(t, body, "tools")
}

func TestModel_APIErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	m := NewModel(func(o *Options) {
		o.APIKey = "sk-ant"
		o.BaseURL = srv.URL + "/"
	})

	_, err := model.Collect(context.Background(), m, model.Request{Contents: []core.Content{core.NewUserContent("hi")}})
	assert.ErrorContains(t, err, "status 400")
}
