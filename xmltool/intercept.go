package xmltool

import (
	"strings"

	"github.com/poekit/poekit/protocol"
)

// releaseThreshold is the buffer size above which angle-bracket text that
// shows none of the tool-call markers is released as plain prose. The value
// is carried over from the original tuning and has no deeper rationale.
const releaseThreshold = 200

// Result is what an Interceptor decides for one fed fragment: zero or more
// complete tool calls, and text to pass through (residual prose after
// extraction, or a released buffer). Both may be empty while the interceptor
// keeps buffering.
type Result struct {
	Calls []protocol.ToolCall
	Text  string
}

// Interceptor watches a stream of assistant text fragments for inline XML
// tool calls. While a potential call is being received the text is buffered
// instead of passed through; once a complete call is found the calls and the
// stripped residual prose are released together.
//
// An Interceptor is owned by a single decoding stream and is not safe for
// concurrent use.
type Interceptor struct {
	extractor *Extractor
	tools     []protocol.ToolDefinition
	buf       strings.Builder
	active    bool
}

// NewInterceptor creates an interceptor recognizing the generic markers and
// the tags of the given tool definitions.
func NewInterceptor(tools []protocol.ToolDefinition, opts ...ExtractorOption) *Interceptor {
	return &Interceptor{
		extractor: NewExtractor(tools, opts...),
		tools:     tools,
	}
}

// Active reports whether the interceptor is currently buffering.
func (i *Interceptor) Active() bool {
	return i.active
}

// Feed processes one text fragment. When detection is inactive and the
// fragment shows no tool-call marker, the fragment passes straight through.
func (i *Interceptor) Feed(fragment string) Result {
	if !i.active {
		if !i.hasMarker(fragment) {
			return Result{Text: fragment}
		}
		i.active = true
		i.buf.Reset()
	}

	i.buf.WriteString(fragment)
	buffered := i.buf.String()

	if i.extractor.Contains(buffered) {
		calls := i.extractor.Extract(buffered)
		if len(calls) == 0 {
			// A call has started but is not complete yet.
			return Result{}
		}
		i.reset()
		residual := Strip(buffered, calls)
		if strings.TrimSpace(residual) == "" {
			residual = ""
		}
		return Result{Calls: calls, Text: residual}
	}

	if i.shouldRelease(buffered) {
		i.reset()
		return Result{Text: buffered}
	}
	return Result{}
}

// Flush drains the buffer at end of stream, extracting if possible and
// otherwise releasing the text verbatim.
func (i *Interceptor) Flush() Result {
	if !i.active || strings.TrimSpace(i.buf.String()) == "" {
		i.reset()
		return Result{}
	}
	buffered := i.buf.String()
	i.reset()

	if i.extractor.Contains(buffered) {
		if calls := i.extractor.Extract(buffered); len(calls) > 0 {
			residual := Strip(buffered, calls)
			if strings.TrimSpace(residual) == "" {
				residual = ""
			}
			return Result{Calls: calls, Text: residual}
		}
	}
	return Result{Text: buffered}
}

func (i *Interceptor) reset() {
	i.buf.Reset()
	i.active = false
}

// hasMarker reports whether text contains any tool-call opening marker.
func (i *Interceptor) hasMarker(text string) bool {
	if strings.Contains(text, "<tool_call>") || strings.Contains(text, "<invoke") {
		return true
	}
	for _, tool := range i.tools {
		if strings.Contains(text, "<"+tool.Function.Name+">") {
			return true
		}
	}
	return false
}

// shouldRelease applies the escape policy for buffered angle-bracket text
// that is evidently not a tool call: multi-line, past the size threshold,
// and free of every opening or closing marker.
func (i *Interceptor) shouldRelease(buffered string) bool {
	if !strings.Contains(buffered, "\n") || len(buffered) <= releaseThreshold {
		return false
	}
	if strings.Contains(buffered, "<tool_call>") || strings.Contains(buffered, "<invoke") {
		return false
	}
	for _, tool := range i.tools {
		name := tool.Function.Name
		if strings.Contains(buffered, "<"+name+">") || strings.Contains(buffered, "</"+name+">") {
			return false
		}
	}
	return true
}
