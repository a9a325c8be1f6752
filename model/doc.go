// Package model defines the provider-agnostic abstractions and helpers for
// interacting with language models inside agenthub.
//
// Core goals:
//   - Hide vendor SDKs behind a single channel based Generate interface
//   - Normalize tool / function call representation (ToolDefinition, core.FunctionCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, OpenRouter, Gemini, Anthropic) implement the Model
// interface in sub packages so the routing layers remain decoupled from
// vendor SDKs. NewRateLimited enforces per-tenant request budgets.
package model
