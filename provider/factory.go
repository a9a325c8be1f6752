package provider

import (
	"github.com/hupe1980/agenthub/catalog"
	"github.com/hupe1980/agenthub/model"
	"github.com/hupe1980/agenthub/model/anthropic"
	"github.com/hupe1980/agenthub/model/openai"
)

// Provider tags.
const (
	OpenAI     = "openai"
	Anthropic  = "anthropic"
	Gemini     = "gemini"
	OpenRouter = "openrouter"
)

// Config holds provider endpoint settings.
type Config struct {
	OpenRouterBaseURL string
	OpenRouterReferer string
	OpenRouterTitle   string
	GeminiBaseURL     string
	MaxTokens         int64
}

// DefaultConfig returns the public provider endpoints.
func DefaultConfig() Config {
	return Config{
		OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		OpenRouterReferer: "https://agenthub.local",
		OpenRouterTitle:   "AgentHub",
		GeminiBaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai/",
		MaxTokens:         4096,
	}
}

// DefaultFactories returns the built-in provider factories. Deterministic
// providers run at temperature 0; the OpenRouter aggregator runs at 0.7 and
// carries attribution headers.
func DefaultFactories(cfg Config) map[string]Factory {
	return map[string]Factory{
		OpenAI: func(desc catalog.ModelDescriptor, apiKey string) (model.Model, error) {
			return openai.NewModel(func(o *openai.Options) {
				o.Model = desc.Name
				o.APIKey = apiKey
				o.Temperature = 0
				o.MaxCompletionTokens = cfg.MaxTokens
			}), nil
		},
		Gemini: func(desc catalog.ModelDescriptor, apiKey string) (model.Model, error) {
			return openai.NewModel(func(o *openai.Options) {
				o.Model = desc.Name
				o.APIKey = apiKey
				o.BaseURL = cfg.GeminiBaseURL
				o.Provider = Gemini
				o.Temperature = 0
				o.MaxCompletionTokens = cfg.MaxTokens
			}), nil
		},
		OpenRouter: func(desc catalog.ModelDescriptor, apiKey string) (model.Model, error) {
			return openai.NewModel(func(o *openai.Options) {
				o.Model = desc.Name
				o.APIKey = apiKey
				o.BaseURL = cfg.OpenRouterBaseURL
				o.Headers = map[string]string{
					"HTTP-Referer": cfg.OpenRouterReferer,
					"X-Title":      cfg.OpenRouterTitle,
				}
				o.Provider = OpenRouter
				o.Temperature = 0.7
				o.MaxCompletionTokens = cfg.MaxTokens
			}), nil
		},
		Anthropic: func(desc catalog.ModelDescriptor, apiKey string) (model.Model, error) {
			return anthropic.NewModel(func(o *anthropic.Options) {
				o.Model = desc.Name
				o.APIKey = apiKey
				o.Temperature = 0
				o.MaxTokens = cfg.MaxTokens
			}), nil
		},
	}
}
