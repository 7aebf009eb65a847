// Package protocol defines the wire types for the Poe bot query protocol:
// requests, messages, tool definitions and calls, and the typed events a
// response stream yields.
package protocol

// ChatRequest is the JSON body of a streaming query to a bot.
type ChatRequest struct {
	Version        string             `json:"version"`
	Type           string             `json:"type"`
	Query          []Message          `json:"query"`
	UserID         string             `json:"user_id"`
	ConversationID string             `json:"conversation_id"`
	MessageID      string             `json:"message_id"`
	Temperature    *float64           `json:"temperature,omitempty"`
	Tools          []ToolDefinition   `json:"tools,omitempty"`
	ToolCalls      []ToolCall         `json:"tool_calls,omitempty"`
	ToolResults    []ToolResult       `json:"tool_results,omitempty"`
	LogitBias      map[string]float64 `json:"logit_bias,omitempty"`
	StopSequences  []string           `json:"stop_sequences,omitempty"`
}

// Message is a single protocol message in a query.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ContentType string       `json:"content_type"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Name        string `json:"name"`
}

// ToolDefinition declares a tool the bot may call.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function and its parameter schema.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  *ToolParameters `json:"parameters,omitempty"`
}

// ToolParameters is a JSON-Schema-shaped parameter description.
type ToolParameters struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// ToolCall is a complete tool invocation requested by the bot.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names a function and carries its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult carries the output of one executed tool call back to the bot.
type ToolResult struct {
	Role       string `json:"role,omitempty"`
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name,omitempty"`
	Content    string `json:"content"`
}

// FileData describes a file emitted by the bot during a response.
type FileData struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	InlineRef   string `json:"inline_ref,omitempty"`
}

// FileUploadRequest describes one file to upload: either a local path or a
// remote URL for the service to fetch. Exactly one of File or DownloadURL
// should be set.
type FileUploadRequest struct {
	// File is a local filesystem path.
	File string
	// MimeType overrides the content type for a local file.
	MimeType string
	// DownloadURL asks the service to fetch the file itself.
	DownloadURL string
}

// FileUploadResponse is the service's answer to a file upload.
type FileUploadResponse struct {
	AttachmentURL string `json:"attachment_url"`
	MimeType      string `json:"mime_type,omitempty"`
	Size          int64  `json:"size,omitempty"`
}

// ModelInfo is one entry in a model listing.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelResponse is a model listing.
type ModelResponse struct {
	Data []ModelInfo `json:"data"`
}

// SettingsResponse is a bot's server-side settings document.
type SettingsResponse struct {
	ServerBotDependencies map[string]int `json:"server_bot_dependencies,omitempty"`
	AllowAttachments      *bool          `json:"allow_attachments,omitempty"`
	IntroductionMessage   string         `json:"introduction_message,omitempty"`
}
