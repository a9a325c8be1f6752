package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// prompts caches parsed prompt templates by source text.
var prompts sync.Map

var promptFuncs = template.FuncMap{
	"default": func(fallback, val any) any {
		if val == nil || val == "" {
			return fallback
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"join": func(sep string, items any) string {
		switch v := items.(type) {
		case nil:
			return ""
		case []string:
			return strings.Join(v, sep)
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			return strings.Join(parts, sep)
		default:
			return fmt.Sprint(items)
		}
	},
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	},
}

// RenderTemplate renders an agent prompt template against the entity
// snapshot using text/template. Missing keys render as empty strings.
// Parsed templates are reused across calls.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := parsePrompt(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}
	return strings.ReplaceAll(buf.String(), "<no value>", ""), nil
}

func parsePrompt(text string) (*template.Template, error) {
	if cached, ok := prompts.Load(text); ok {
		return cached.(*template.Template), nil
	}
	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, err
	}
	actual, _ := prompts.LoadOrStore(text, tmpl)
	return actual.(*template.Template), nil
}
