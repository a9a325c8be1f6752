// Package extract asks a model for the intent of a message and the entity
// values it mentions. The entity vocabulary is derived from the parameter
// schemas of the capabilities currently available to the agent.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/internal/llmparse"
	"github.com/hupe1980/agenthub/internal/util"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/model"
	"github.com/hupe1980/agenthub/tool"
)

// DefaultIntent is reported when the model gives no usable answer.
const DefaultIntent = "query"

// GenericVocabulary is used when no available capability declares parameters.
var GenericVocabulary = map[string]string{
	"customer_id":    "Customer identifier",
	"account_number": "Account number",
	"date":           "Date mentioned in the message",
	"amount":         "Monetary amount",
}

// Result is the outcome of an extraction.
type Result struct {
	Intent   string         `json:"intent"`
	Entities map[string]any `json:"entities"`
}

// Fallback returns the result used whenever extraction fails.
func Fallback() Result {
	return Result{Intent: DefaultIntent, Entities: map[string]any{}}
}

// Vocabulary maps every parameter name declared by tools onto its
// description. The first non-empty description wins.
func Vocabulary(tools []tool.Tool) map[string]string {
	vocab := map[string]string{}
	for _, t := range tools {
		props, _ := t.Parameters()["properties"].(map[string]any)
		for name, p := range props {
			desc := ""
			if pm, ok := p.(map[string]any); ok {
				desc, _ = pm["description"].(string)
			}
			if existing, ok := vocab[name]; !ok || existing == "" {
				vocab[name] = desc
			}
		}
	}
	if len(vocab) == 0 {
		for k, v := range GenericVocabulary {
			vocab[k] = v
		}
	}
	return vocab
}

// Options configures an Extractor.
type Options struct {
	// Timeout bounds the extraction model call. Zero means no extra bound.
	Timeout time.Duration
	Logger  logging.Logger
}

// Extractor runs model assisted intent and entity extraction.
type Extractor struct {
	llm  model.Model
	opts Options
}

// New creates an Extractor on top of llm.
func New(llm model.Model, optFns ...func(o *Options)) *Extractor {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Extractor{llm: llm, opts: opts}
}

// Extract never fails: model errors and unparsable answers yield Fallback().
func (e *Extractor) Extract(ctx context.Context, message string, vocab map[string]string) Result {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	resp, err := model.Collect(ctx, e.llm, model.Request{
		Instructions:   Instruction(vocab),
		Contents:       []core.Content{core.NewUserContent(message)},
		ResponseFormat: model.FormatJSON,
	})
	if err != nil {
		e.opts.Logger.Warn("extract.model_failed", "error", err.Error())
		return Fallback()
	}

	var raw struct {
		Intent   string         `json:"intent"`
		Entities map[string]any `json:"entities"`
	}
	if err := llmparse.DecodeJSON(resp.Text(), &raw); err != nil {
		e.opts.Logger.Warn("extract.parse_failed", "error", err.Error())
		return Fallback()
	}

	out := Fallback()
	if intent := strings.TrimSpace(raw.Intent); intent != "" {
		out.Intent = intent
	}
	for k, v := range raw.Entities {
		if v != nil {
			out.Entities[k] = v
		}
	}

	e.opts.Logger.Debug("extract.completed",
		"intent", out.Intent,
		"entities", len(out.Entities),
	)

	return out
}

// Instruction builds the extraction instruction enumerating vocab.
func Instruction(vocab map[string]string) string {
	var b strings.Builder
	b.WriteString("You extract structured information from a user message.\n\n")
	b.WriteString("Entities to look for:\n")
	for _, name := range util.SortedKeys(vocab) {
		if desc := vocab[name]; desc != "" {
			fmt.Fprintf(&b, "- %s: %s\n", name, desc)
		} else {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	b.WriteString("\nRespond with a single JSON object and nothing else:\n")
	b.WriteString(`{"intent": "<short intent label>", "entities": {"<entity name>": <value>}}`)
	b.WriteString("\nOnly include entities that are explicitly mentioned in the message.")
	return b.String()
}
