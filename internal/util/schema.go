package util

import (
	"fmt"
	"sort"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

var jsonTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// NormalizeJSONType maps a declared property type onto the JSON schema type
// set. Unknown or missing types fall back to string.
func NormalizeJSONType(t any) string {
	s, _ := t.(string)
	if jsonTypes[s] {
		return s
	}
	return "string"
}

// NormalizeObjectSchema returns a copy of a JSON-schema-shaped object
// definition with "type": "object", a properties map whose property types are
// normalized and a required list as []string. Required names without a
// matching property are dropped.
func NormalizeObjectSchema(raw map[string]any) map[string]any {
	props := map[string]any{}
	if in, ok := raw["properties"].(map[string]any); ok {
		for name, p := range in {
			prop := map[string]any{}
			if pm, ok := p.(map[string]any); ok {
				for k, v := range pm {
					prop[k] = v
				}
			}
			prop["type"] = NormalizeJSONType(prop["type"])
			props[name] = prop
		}
	}

	required := make([]string, 0)
	for _, name := range StringSlice(raw["required"]) {
		if _, ok := props[name]; ok {
			required = append(required, name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// StringSlice converts []string or []any (as produced by JSON decoding) to
// []string, skipping non-string items.
func StringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return append([]string{}, s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
