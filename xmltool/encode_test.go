package xmltool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poekit/poekit/protocol"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "all specials", text: `a < b > c & "d" 'e'`},
		{name: "plain", text: "no specials here"},
		{name: "empty", text: ""},
		{name: "repeated ampersands", text: "a && b && c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, UnescapeText(EscapeText(tt.text)))
		})
	}
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "&lt;a&gt; &amp; &quot;b&quot; &apos;c&apos;", EscapeText(`<a> & "b" 'c'`))
}

func TestToolXML(t *testing.T) {
	tool := protocol.ToolDefinition{
		Type: "function",
		Function: protocol.FunctionDefinition{
			Name:        "get_weather",
			Description: "Get weather for a city",
			Parameters: &protocol.ToolParameters{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "City name",
					},
					"unit": map[string]any{
						"type": "string",
						"enum": []any{"celsius", "fahrenheit"},
					},
				},
				Required: []string{"location"},
			},
		},
	}

	xml := ToolXML(tool)

	assert.Contains(t, xml, "<get_weather>")
	assert.Contains(t, xml, "</get_weather>")
	assert.Contains(t, xml, "<description>Get weather for a city</description>")
	assert.Contains(t, xml, "<location_name>location</location_name>")
	assert.Contains(t, xml, "<location_type>string</location_type>")
	assert.Contains(t, xml, "<location_description>City name</location_description>")
	assert.Contains(t, xml, "<location_required>true</location_required>")
	assert.Contains(t, xml, "<unit_required>false</unit_required>")
	assert.Contains(t, xml, "<unit_enum>")
	assert.Contains(t, xml, "<option>celsius</option>")
	assert.Contains(t, xml, "<option>fahrenheit</option>")
}

func TestToolsXML(t *testing.T) {
	assert.Empty(t, ToolsXML(nil))

	xml := ToolsXML([]protocol.ToolDefinition{weatherTool()})
	assert.Contains(t, xml, "<tools>")
	assert.Contains(t, xml, "</tools>")
	assert.Contains(t, xml, "<get_weather>")
}

func TestResultXML(t *testing.T) {
	tests := []struct {
		name    string
		result  protocol.ToolResult
		wantTag string
	}{
		{
			name:    "output",
			result:  protocol.ToolResult{ToolCallID: "call_1", Content: "22 degrees"},
			wantTag: "<output>22 degrees</output>",
		},
		{
			name:    "uppercase error prefix",
			result:  protocol.ToolResult{ToolCallID: "call_1", Content: "ERROR: city not found"},
			wantTag: "<error>ERROR: city not found</error>",
		},
		{
			name:    "capitalized error prefix",
			result:  protocol.ToolResult{ToolCallID: "call_1", Content: "Error: timeout"},
			wantTag: "<error>Error: timeout</error>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml := ResultXML(tt.result)
			assert.Contains(t, xml, `<result tool_call_id="call_1">`)
			assert.Contains(t, xml, tt.wantTag)
			assert.Contains(t, xml, "</result>")
		})
	}
}

func TestResultsXML(t *testing.T) {
	assert.Empty(t, ResultsXML(nil))

	xml := ResultsXML([]protocol.ToolResult{
		{ToolCallID: "call_1", Content: "ok"},
		{ToolCallID: "call_2", Content: "also ok"},
	})
	assert.Contains(t, xml, "<tool_results>")
	assert.Contains(t, xml, "</tool_results>")
	assert.Contains(t, xml, `tool_call_id="call_1"`)
	assert.Contains(t, xml, `tool_call_id="call_2"`)
}
