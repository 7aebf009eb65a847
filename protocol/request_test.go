package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	req := NewQuery(SystemMessage("Be terse."), UserMessage("hi"))

	assert.Equal(t, Version, req.Version)
	assert.Equal(t, TypeQuery, req.Type)
	require.Len(t, req.Query, 2)
	assert.Equal(t, RoleSystem, req.Query[0].Role)
	assert.Equal(t, RoleUser, req.Query[1].Role)
	assert.True(t, strings.HasPrefix(req.UserID, "u-"))
	assert.True(t, strings.HasPrefix(req.ConversationID, "c-"))
	assert.True(t, strings.HasPrefix(req.MessageID, "m-"))
}

func TestMessageConstructors(t *testing.T) {
	tests := []struct {
		name     string
		message  Message
		wantRole string
	}{
		{name: "system", message: SystemMessage("x"), wantRole: RoleSystem},
		{name: "user", message: UserMessage("x"), wantRole: RoleUser},
		{name: "assistant", message: AssistantMessage("x"), wantRole: RoleAssistant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRole, tt.message.Role)
			assert.Equal(t, "x", tt.message.Content)
			assert.Equal(t, ContentTypeMarkdown, tt.message.ContentType)
		})
	}
}

func TestUserMessageWithAttachments(t *testing.T) {
	att := Attachment{URL: "https://example.com/a.png", ContentType: "image/png", Name: "a.png"}

	msg := UserMessageWithAttachments("look", att)

	assert.Equal(t, RoleUser, msg.Role)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "a.png", msg.Attachments[0].Name)
}

func TestChatRequest_JSONShape(t *testing.T) {
	temp := 0.7
	req := ChatRequest{
		Version:     Version,
		Type:        TypeQuery,
		Query:       []Message{UserMessage("hi")},
		UserID:      "u-1",
		Temperature: &temp,
		LogitBias:   map[string]float64{"50256": -100},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "1.0", decoded["version"])
	assert.Equal(t, "query", decoded["type"])
	assert.Equal(t, "u-1", decoded["user_id"])
	assert.Equal(t, 0.7, decoded["temperature"])
	assert.NotContains(t, decoded, "tools")
	assert.NotContains(t, decoded, "stop_sequences")
}
