// Package xmltool implements the inline XML tool-call encoding: projecting
// tool definitions and results into XML appended to message text, and
// detecting, extracting and stripping XML tool invocations from streamed
// assistant output.
package xmltool

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poekit/poekit/protocol"
)

// EscapeText replaces the five XML special characters with entities.
func EscapeText(text string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(text)
}

// UnescapeText decodes the five XML entities back to literal characters.
func UnescapeText(text string) string {
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(text)
}

// ToolXML renders one tool definition as an XML block keyed by the tool name.
func ToolXML(tool protocol.ToolDefinition) string {
	fn := tool.Function

	var b strings.Builder
	fmt.Fprintf(&b, "<%s>", fn.Name)

	if fn.Description != "" {
		fmt.Fprintf(&b, "\n<description>%s</description>", EscapeText(fn.Description))
	}

	if fn.Parameters != nil {
		b.WriteString("\n<parameters>")
		for _, name := range sortedKeys(fn.Parameters.Properties) {
			writeParameterXML(&b, name, fn.Parameters.Properties[name], required(fn.Parameters, name))
		}
		b.WriteString("\n</parameters>")
	}

	fmt.Fprintf(&b, "\n</%s>", fn.Name)
	return b.String()
}

// ToolsXML renders a tool list as a <tools> block, or "" for an empty list.
func ToolsXML(tools []protocol.ToolDefinition) string {
	if len(tools) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n<tools>")
	for _, tool := range tools {
		b.WriteByte('\n')
		b.WriteString(ToolXML(tool))
	}
	b.WriteString("\n</tools>")
	return b.String()
}

func writeParameterXML(b *strings.Builder, name string, prop any, required bool) {
	fmt.Fprintf(b, "\n<%s_name>%s</%s_name>", name, name, name)

	props, _ := prop.(map[string]any)
	if t, ok := props["type"].(string); ok {
		fmt.Fprintf(b, "\n<%s_type>%s</%s_type>", name, t, name)
	}
	if desc, ok := props["description"].(string); ok {
		fmt.Fprintf(b, "\n<%s_description>%s</%s_description>", name, EscapeText(desc), name)
	}
	fmt.Fprintf(b, "\n<%s_required>%t</%s_required>", name, required, name)

	if enum, ok := props["enum"].([]any); ok {
		fmt.Fprintf(b, "\n<%s_enum>", name)
		for _, v := range enum {
			if s, ok := v.(string); ok {
				fmt.Fprintf(b, "\n<option>%s</option>", EscapeText(s))
			}
		}
		fmt.Fprintf(b, "\n</%s_enum>", name)
	}
}

func required(params *protocol.ToolParameters, name string) bool {
	for _, r := range params.Required {
		if r == name {
			return true
		}
	}
	return false
}

// ResultXML renders one tool result. Content starting with "ERROR:" or
// "Error:" is wrapped in an <error> tag instead of <output>.
func ResultXML(result protocol.ToolResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  <result tool_call_id=%q>", EscapeText(result.ToolCallID))

	trimmed := strings.TrimSpace(result.Content)
	if strings.HasPrefix(trimmed, "ERROR:") || strings.HasPrefix(trimmed, "Error:") {
		b.WriteString("\n    <error>")
		b.WriteString(EscapeText(result.Content))
		b.WriteString("</error>")
	} else {
		b.WriteString("\n    <output>")
		b.WriteString(EscapeText(result.Content))
		b.WriteString("</output>")
	}

	b.WriteString("\n  </result>")
	return b.String()
}

// ResultsXML renders a result list as a <tool_results> block, or "" for an
// empty list.
func ResultsXML(results []protocol.ToolResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n<tool_results>")
	for _, result := range results {
		b.WriteByte('\n')
		b.WriteString(ResultXML(result))
	}
	b.WriteString("\n</tool_results>")
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic output keeps the projected prompt stable across calls.
	sort.Strings(keys)
	return keys
}
