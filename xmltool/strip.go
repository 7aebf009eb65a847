package xmltool

import (
	"strings"

	"github.com/poekit/poekit/protocol"
)

// Strip removes every recognized XML tool-call span from text: all
// <tool_call> blocks, the <ToolName> spans of each extracted call, and any
// bare <invoke> blocks. Blank lines left behind are collapsed. Prose outside
// the removed spans is preserved verbatim and in order.
func Strip(text string, calls []protocol.ToolCall) string {
	result := removeSpans(text, "<tool_call>", "</tool_call>")
	for _, call := range calls {
		name := call.Function.Name
		result = removeSpans(result, "<"+name+">", "</"+name+">")
	}
	result = removeSpans(result, "<invoke", "</invoke>")

	lines := strings.Split(result, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// removeSpans deletes every open..close span. An unterminated open marker is
// left in place.
func removeSpans(text, open, closeMarker string) string {
	for {
		start := strings.Index(text, open)
		if start < 0 {
			return text
		}
		rel := strings.Index(text[start:], closeMarker)
		if rel < 0 {
			return text
		}
		end := start + rel + len(closeMarker)
		text = text[:start] + text[end:]
	}
}
