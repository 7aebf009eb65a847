package tooldef

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poekit/poekit/protocol"
)

// toolFile is the on-disk layout of a tool definition file.
type toolFile struct {
	Tools []toolSpec `yaml:"tools"`
}

type toolSpec struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  *parameterSpec `yaml:"parameters"`
}

type parameterSpec struct {
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties"`
	Required   []string       `yaml:"required"`
}

// Load reads YAML tool definitions.
//
// Expected layout:
//
//	tools:
//	  - name: get_weather
//	    description: Get weather for a city
//	    parameters:
//	      type: object
//	      properties:
//	        location:
//	          type: string
//	      required: [location]
func Load(r io.Reader) ([]protocol.ToolDefinition, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading tool definitions: %w", err)
	}

	var file toolFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing tool definitions: %w", err)
	}

	defs := make([]protocol.ToolDefinition, 0, len(file.Tools))
	for i, spec := range file.Tools {
		if spec.Name == "" {
			return nil, fmt.Errorf("tool #%d: name is required", i+1)
		}

		def := protocol.ToolDefinition{
			Type: "function",
			Function: protocol.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
			},
		}
		if spec.Parameters != nil {
			paramType := spec.Parameters.Type
			if paramType == "" {
				paramType = "object"
			}
			def.Function.Parameters = &protocol.ToolParameters{
				Type:       paramType,
				Properties: spec.Parameters.Properties,
				Required:   spec.Parameters.Required,
			}
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadFile reads YAML tool definitions from a file.
func LoadFile(path string) ([]protocol.ToolDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
