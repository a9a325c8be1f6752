package tool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hupe1980/agenthub/internal/util"
)

// Property describes one declared argument.
type Property struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Schema is an input schema compiled once at capability build time.
type Schema struct {
	raw        map[string]any
	compiled   *jsonschema.Schema
	properties []Property
	required   []string
}

// CompileSchema normalizes a JSON-schema-shaped object definition and
// compiles it. Property types outside string, number, integer, boolean,
// array and object are treated as string.
func CompileSchema(name string, raw map[string]any) (*Schema, error) {
	normalized := util.NormalizeObjectSchema(raw)

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode schema for %q: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource for %q: %w", name, err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema for %q: %w", name, err)
	}

	required := util.StringSlice(normalized["required"])
	isRequired := make(map[string]bool, len(required))
	for _, r := range required {
		isRequired[r] = true
	}

	props := normalized["properties"].(map[string]any)
	properties := make([]Property, 0, len(props))
	for _, pname := range util.SortedKeys(props) {
		pm := props[pname].(map[string]any)
		desc, _ := pm["description"].(string)
		properties = append(properties, Property{
			Name:        pname,
			Type:        pm["type"].(string),
			Description: desc,
			Required:    isRequired[pname],
		})
	}

	return &Schema{
		raw:        normalized,
		compiled:   compiled,
		properties: properties,
		required:   required,
	}, nil
}

// Raw returns the normalized schema map sent to models.
func (s *Schema) Raw() map[string]any { return s.raw }

// Properties returns the declared arguments ordered by name.
func (s *Schema) Properties() []Property { return s.properties }

// Required returns the required argument names in declaration order.
func (s *Schema) Required() []string { return s.required }

// Validate checks args against the schema. Missing required arguments are
// reported first, then type violations.
func (s *Schema) Validate(args map[string]any) error {
	for _, name := range s.required {
		if v, ok := args[name]; !ok || v == nil {
			return &ValidationError{Field: name, Message: "required field is missing"}
		}
	}

	// round trip so Go native values validate like decoded JSON
	data, err := json.Marshal(args)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("arguments are not JSON encodable: %v", err)}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if doc == nil {
		doc = map[string]any{}
	}

	if err := s.compiled.Validate(doc); err != nil {
		return toValidationError(err, args)
	}
	return nil
}

func toValidationError(err error, args map[string]any) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if i := strings.Index(field, "/"); i >= 0 {
		field = field[:i]
	}
	return &ValidationError{Field: field, Value: args[field], Message: leaf.Message}
}
