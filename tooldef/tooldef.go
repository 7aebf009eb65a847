// Package tooldef builds protocol tool definitions: reflected from Go types
// via JSON Schema, or loaded from YAML files.
package tooldef

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/poekit/poekit/protocol"
)

// reflector is configured for tool parameter schemas. DoNotReference inlines
// all definitions to avoid $ref, which the protocol cannot resolve.
var reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// New creates a tool definition whose parameter schema is reflected from the
// type argument.
//
// Example:
//
//	type WeatherInput struct {
//	    Location string `json:"location" jsonschema:"required,description=City name"`
//	}
//
//	def, err := tooldef.New[WeatherInput]("get_weather", "Get weather for a city")
func New[T any](name, description string) (protocol.ToolDefinition, error) {
	if name == "" {
		return protocol.ToolDefinition{}, fmt.Errorf("tool name is required")
	}

	var zero T
	schema := reflector.Reflect(&zero)

	raw, err := json.Marshal(schema)
	if err != nil {
		return protocol.ToolDefinition{}, fmt.Errorf("marshaling schema for %q: %w", name, err)
	}
	var params protocol.ToolParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.ToolDefinition{}, fmt.Errorf("converting schema for %q: %w", name, err)
	}

	return protocol.ToolDefinition{
		Type: "function",
		Function: protocol.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  &params,
		},
	}, nil
}

// MustNew is like New but panics on error. Useful for package-level
// definitions.
func MustNew[T any](name, description string) protocol.ToolDefinition {
	def, err := New[T](name, description)
	if err != nil {
		panic(err)
	}
	return def
}
