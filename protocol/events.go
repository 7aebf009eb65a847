package protocol

// Event is one decoded response-stream event. It is a closed union: the only
// implementations are TextEvent, ReplaceResponseEvent, ToolCallsEvent,
// FileEvent, ErrorEvent and DoneEvent.
type Event interface {
	isEvent()
}

// TextEvent carries an incremental text fragment. When the fragment is a raw
// JSON delta passed through from a json event, Text holds the raw payload.
type TextEvent struct {
	Text string
}

// ReplaceResponseEvent carries text that replaces everything emitted so far
// in this response.
type ReplaceResponseEvent struct {
	Text string
}

// ToolCallsEvent carries one or more complete tool calls.
type ToolCallsEvent struct {
	Calls []ToolCall
}

// FileEvent carries a file emitted by the bot.
type FileEvent struct {
	File FileData
}

// ErrorEvent is an in-band error from the service. AllowRetry hints whether
// the caller may retry the request; the client itself never retries.
type ErrorEvent struct {
	Text       string
	AllowRetry bool
}

// DoneEvent marks the end of one logical response turn.
type DoneEvent struct{}

func (TextEvent) isEvent()            {}
func (ReplaceResponseEvent) isEvent() {}
func (ToolCallsEvent) isEvent()       {}
func (FileEvent) isEvent()            {}
func (ErrorEvent) isEvent()           {}
func (DoneEvent) isEvent()            {}
