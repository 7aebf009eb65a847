package xmltool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poekit/poekit/protocol"
)

// IDGenerator produces identifiers for extracted tool calls.
type IDGenerator func() string

// sequentialIDs returns the default generator: call_1, call_2, ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("call_%d", n)
	}
}

// candidate is a matched tool invocation before an ID is assigned.
type candidate struct {
	name      string
	arguments string
}

// matcher scans text for one encoding of a tool invocation. Matchers are
// tried in order and their candidates de-duplicated by (name, arguments).
type matcher func(text string, tools []protocol.ToolDefinition) []candidate

// Extractor finds XML-encoded tool calls in assistant text. The zero value is
// not usable; construct with NewExtractor. An Extractor owns its ID counter,
// so extraction state never leaks between streams.
type Extractor struct {
	tools    []protocol.ToolDefinition
	nextID   IDGenerator
	matchers []matcher
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithIDGenerator overrides the default sequential call_<n> generator.
func WithIDGenerator(gen IDGenerator) ExtractorOption {
	return func(e *Extractor) {
		e.nextID = gen
	}
}

// NewExtractor creates an extractor aware of the given tool definitions.
// Definitions enable the direct <ToolName> tag encoding; the generic
// <tool_call> wrapper is always recognized.
func NewExtractor(tools []protocol.ToolDefinition, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		tools:    tools,
		nextID:   sequentialIDs(),
		matchers: []matcher{matchWrapped, matchDefinedTags},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns every complete tool call found in text. Malformed or
// unterminated spans yield no match for that span; they never fail the whole
// extraction.
func (e *Extractor) Extract(text string) []protocol.ToolCall {
	var seen []candidate
	var calls []protocol.ToolCall
	for _, match := range e.matchers {
		for _, c := range match(text, e.tools) {
			if containsCandidate(seen, c) {
				continue
			}
			seen = append(seen, c)
			calls = append(calls, protocol.ToolCall{
				ID:   e.nextID(),
				Type: "function",
				Function: protocol.FunctionCall{
					Name:      c.name,
					Arguments: c.arguments,
				},
			})
		}
	}
	return calls
}

// Contains reports whether text holds a recognizable tool-call encoding:
// a complete <tool_call> or <invoke> pair, or an opening tag of any defined
// tool. An opening defined-tool tag alone counts, so a caller may see
// Contains true while Extract still returns nothing; that means the call is
// not complete yet.
func (e *Extractor) Contains(text string) bool {
	if strings.Contains(text, "<tool_call>") && strings.Contains(text, "</tool_call>") {
		return true
	}
	if strings.Contains(text, "<invoke") && strings.Contains(text, "</invoke>") {
		return true
	}
	for _, tool := range e.tools {
		if strings.Contains(text, "<"+tool.Function.Name+">") {
			return true
		}
	}
	return false
}

func containsCandidate(list []candidate, c candidate) bool {
	for _, have := range list {
		if have == c {
			return true
		}
	}
	return false
}

// matchWrapped finds non-overlapping <tool_call>...</tool_call> blocks, left
// to right.
func matchWrapped(text string, _ []protocol.ToolDefinition) []candidate {
	const open, close = "<tool_call>", "</tool_call>"

	var out []candidate
	pos := 0
	for {
		start := strings.Index(text[pos:], open)
		if start < 0 {
			break
		}
		start += pos
		rel := strings.Index(text[start:], close)
		if rel < 0 {
			// Unterminated block: stop rather than guess.
			break
		}
		end := start + rel + len(close)
		if c, ok := parseWrappedBlock(text[start:end]); ok {
			out = append(out, c)
		}
		pos = end
	}
	return out
}

// parseWrappedBlock parses the contents of one <tool_call> block: the
// <invoke name="..."> form first, then the simplified direct-tag form where
// the first unambiguous inner tag names the tool.
func parseWrappedBlock(block string) (candidate, bool) {
	if name, ok := invokeName(block); ok {
		return candidate{name: name, arguments: parametersJSON(block)}, true
	}
	if name, inner, ok := directInnerTag(block); ok {
		return candidate{name: name, arguments: parametersJSON(inner)}, true
	}
	return candidate{}, false
}

// invokeName pulls the tool name out of an <invoke name="..."> tag.
func invokeName(block string) (string, bool) {
	start := strings.Index(block, "<invoke")
	if start < 0 {
		return "", false
	}
	rest := block[start:]
	nameStart := strings.Index(rest, `name="`)
	if nameStart < 0 {
		return "", false
	}
	rest = rest[nameStart+len(`name="`):]
	nameEnd := strings.IndexByte(rest, '"')
	if nameEnd < 0 {
		return "", false
	}
	return rest[:nameEnd], true
}

// directInnerTag finds the first plain tag pair inside a <tool_call> block
// and returns its name and inner content. Closing tags, comments, and the
// invoke/parameter markers themselves do not qualify.
func directInnerTag(block string) (name, inner string, ok bool) {
	const open, close = "<tool_call>", "</tool_call>"

	start := strings.Index(block, open)
	if start < 0 {
		return "", "", false
	}
	end := strings.Index(block, close)
	if end < 0 {
		return "", "", false
	}
	content := strings.TrimSpace(block[start+len(open) : end])
	if !strings.HasPrefix(content, "<") {
		return "", "", false
	}
	tagEnd := strings.IndexByte(content, '>')
	if tagEnd < 0 {
		return "", "", false
	}
	tag := content[1:tagEnd]
	if strings.HasPrefix(tag, "/") || strings.HasPrefix(tag, "!") ||
		strings.Contains(tag, "invoke") || strings.Contains(tag, "parameter") ||
		strings.Contains(tag, " ") {
		return "", "", false
	}
	closeTag := "</" + tag + ">"
	closePos := strings.Index(content, closeTag)
	if closePos < 0 {
		return "", "", false
	}
	return tag, content[tagEnd+1 : closePos], true
}

// matchDefinedTags scans for <ToolName>...</ToolName> spans of each defined
// tool, anywhere in the text.
func matchDefinedTags(text string, tools []protocol.ToolDefinition) []candidate {
	var out []candidate
	for _, tool := range tools {
		name := tool.Function.Name
		open := "<" + name + ">"
		closeTag := "</" + name + ">"

		pos := 0
		for {
			start := strings.Index(text[pos:], open)
			if start < 0 {
				break
			}
			contentStart := pos + start + len(open)
			rel := strings.Index(text[contentStart:], closeTag)
			if rel < 0 {
				break
			}
			inner := text[contentStart : contentStart+rel]
			out = append(out, candidate{name: name, arguments: parametersJSON(inner)})
			pos = contentStart + rel + len(closeTag)
		}
	}
	return out
}

// parametersJSON extracts parameters from a block and encodes them as a JSON
// object string. <parameter name="K">V</parameter> tags are preferred; when
// none are present, every direct child tag is treated as a key/value pair.
// Values are XML-entity-decoded. An empty parameter set encodes as "{}".
func parametersJSON(content string) string {
	params := parseParameterTags(content)
	if len(params) == 0 {
		params = parseChildTags(content)
	}
	if len(params) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func parseParameterTags(content string) map[string]string {
	params := make(map[string]string)
	pos := 0
	for {
		start := strings.Index(content[pos:], "<parameter")
		if start < 0 {
			break
		}
		start += pos

		rest := content[start:]
		nameStart := strings.Index(rest, `name="`)
		if nameStart < 0 {
			pos = start + 1
			continue
		}
		rest = rest[nameStart+len(`name="`):]
		nameEnd := strings.IndexByte(rest, '"')
		if nameEnd < 0 {
			pos = start + 1
			continue
		}
		name := rest[:nameEnd]

		rest = rest[nameEnd:]
		valueStart := strings.IndexByte(rest, '>')
		if valueStart < 0 {
			pos = start + 1
			continue
		}
		rest = rest[valueStart+1:]
		valueEnd := strings.Index(rest, "</parameter>")
		if valueEnd < 0 {
			pos = start + 1
			continue
		}
		if value := strings.TrimSpace(rest[:valueEnd]); value != "" {
			params[name] = UnescapeText(value)
		}
		pos = start + 1
	}
	if len(params) == 0 {
		return nil
	}
	return params
}

func parseChildTags(content string) map[string]string {
	params := make(map[string]string)
	pos := 0
	for pos < len(content) {
		start := strings.Index(content[pos:], "<")
		if start < 0 {
			break
		}
		start += pos

		rest := content[start:]
		if strings.HasPrefix(rest, "</") || strings.HasPrefix(rest, "<!--") ||
			strings.HasPrefix(rest, "<invoke") || strings.HasPrefix(rest, "<parameter") ||
			strings.HasPrefix(rest, "<tool_call") {
			pos = start + 1
			continue
		}

		tagEnd := strings.IndexByte(content[start+1:], '>')
		if tagEnd < 0 {
			pos = start + 1
			continue
		}
		tag := content[start+1 : start+1+tagEnd]
		if strings.Contains(tag, " ") || strings.HasSuffix(tag, "/") {
			pos = start + 1 + tagEnd + 1
			continue
		}

		valueStart := start + 1 + tagEnd + 1
		closeTag := "</" + tag + ">"
		closePos := strings.Index(content[valueStart:], closeTag)
		if closePos < 0 {
			pos = start + 1
			continue
		}
		if value := strings.TrimSpace(content[valueStart : valueStart+closePos]); value != "" {
			params[tag] = UnescapeText(value)
		}
		pos = valueStart + closePos + len(closeTag)
	}
	if len(params) == 0 {
		return nil
	}
	return params
}
