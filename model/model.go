package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/agenthub/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// FormatJSON asks providers that support it to return a single JSON object.
const FormatJSON = "json_object"

// Request captures the normalized model input.
type Request struct {
	Instructions   string           `json:"instructions"` // System instructions for the model
	Contents       []core.Content   `json:"contents"`     // Conversation turns converted to provider messages
	Tools          []ToolDefinition `json:"tools,omitempty"`
	ResponseFormat string           `json:"response_format,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Text returns the concatenated text of the response.
func (r Response) Text() string { return r.Content.Text() }

// FunctionCalls returns the function calls requested by the response.
func (r Response) FunctionCalls() []core.FunctionCall { return r.Content.FunctionCalls() }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "gemini", "openrouter", "mock"
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by the routing layers to drive generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ErrNoResponse is returned by Collect when a generation ends without a final response.
var ErrNoResponse = errors.New("model returned no response")

// Collect drains a generation and returns its final (non-partial) response.
func Collect(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		got   bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !r.Partial {
				final, got = r, true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}
	if !got {
		return Response{}, ErrNoResponse
	}
	return final, nil
}

// TextResponse builds a final assistant response carrying text.
func TextResponse(text string) Response {
	return Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}},
		FinishReason: "stop",
	}
}

// FunctionCallResponse builds a final assistant response requesting function calls.
func FunctionCallResponse(text string, calls ...core.FunctionCall) Response {
	parts := make([]core.Part, 0, len(calls)+1)
	if text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	for _, c := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: c})
	}
	return Response{
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: "tool_calls",
	}
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Generation is resolved by the OnGenerate handler when set, otherwise by a
// canned completion keyed by the last user text.
type MockModel struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	handler   func(req Request) (Response, error)
	requests  []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// OnGenerate installs a handler deciding the response for each request.
func (m *MockModel) OnGenerate(fn func(req Request) (Response, error)) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = fn
	return m
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request{}, m.requests...)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	handler := m.handler
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}
		if handler != nil {
			resp, err := handler(req)
			if err != nil {
				errCh <- err
				return
			}
			respCh <- resp
			return
		}
		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("no contents provided")
			return
		}
		inputText := req.Contents[len(req.Contents)-1].Text()
		m.mu.Lock()
		full := m.responses[inputText]
		m.mu.Unlock()
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		respCh <- TextResponse(full)
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
