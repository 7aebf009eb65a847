package xmltool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poekit/poekit/protocol"
)

func TestAppendToolsAsXML(t *testing.T) {
	req := protocol.ChatRequest{
		Query: []protocol.Message{
			protocol.UserMessage("What's the weather in Taipei?"),
			protocol.AssistantMessage("Let me think."),
		},
		Tools: []protocol.ToolDefinition{weatherTool()},
	}

	AppendToolsAsXML(&req)

	require.Len(t, req.Query, 2)
	assert.Contains(t, req.Query[0].Content, "What's the weather in Taipei?")
	assert.Contains(t, req.Query[0].Content, "<tools>")
	assert.Contains(t, req.Query[0].Content, "<get_weather>")
	assert.Contains(t, req.Query[0].Content, "<tool_call>")
	assert.NotContains(t, req.Query[1].Content, "<tools>")
}

func TestAppendToolsAsXML_NoTools(t *testing.T) {
	req := protocol.ChatRequest{
		Query: []protocol.Message{protocol.UserMessage("hi")},
	}

	AppendToolsAsXML(&req)

	assert.Equal(t, "hi", req.Query[0].Content)
}

func TestAppendToolsAsXML_CallerMessagesUntouched(t *testing.T) {
	original := []protocol.Message{protocol.UserMessage("hi")}
	req := protocol.ChatRequest{
		Query: original,
		Tools: []protocol.ToolDefinition{weatherTool()},
	}

	AppendToolsAsXML(&req)

	assert.Equal(t, "hi", original[0].Content)
	assert.NotEqual(t, "hi", req.Query[0].Content)
}

func TestAppendToolResultsAsXML(t *testing.T) {
	req := protocol.ChatRequest{
		Query: []protocol.Message{
			protocol.SystemMessage("Be helpful."),
			protocol.UserMessage("What's the weather?"),
		},
		ToolResults: []protocol.ToolResult{
			{ToolCallID: "call_1", Name: "get_weather", Content: "22 degrees, sunny"},
		},
	}

	AppendToolResultsAsXML(&req)

	assert.Contains(t, req.Query[1].Content, "<tool_results>")
	assert.Contains(t, req.Query[1].Content, `tool_call_id="call_1"`)
	assert.Contains(t, req.Query[1].Content, "22 degrees, sunny")
	assert.Equal(t, "Be helpful.", req.Query[0].Content)
}

func TestAppendToolResultsAsXML_NoResults(t *testing.T) {
	req := protocol.ChatRequest{
		Query: []protocol.Message{protocol.UserMessage("hi")},
	}

	AppendToolResultsAsXML(&req)

	assert.Equal(t, "hi", req.Query[0].Content)
}
