package protocol

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentTypeMarkdown is the default content type for outgoing messages.
const ContentTypeMarkdown = "text/markdown"

// ContentTypePlain is used for plain-text message content.
const ContentTypePlain = "text/plain"

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{
		Role:        RoleSystem,
		Content:     content,
		ContentType: ContentTypeMarkdown,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{
		Role:        RoleUser,
		Content:     content,
		ContentType: ContentTypeMarkdown,
	}
}

// UserMessageWithAttachments creates a user message carrying attachments.
func UserMessageWithAttachments(content string, attachments ...Attachment) Message {
	return Message{
		Role:        RoleUser,
		Content:     content,
		ContentType: ContentTypeMarkdown,
		Attachments: attachments,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{
		Role:        RoleAssistant,
		Content:     content,
		ContentType: ContentTypeMarkdown,
	}
}
