package protocol

// Protocol version and request kind sent with every query.
const (
	Version   = "1.0"
	TypeQuery = "query"
)

// NewQuery builds a query request over the given messages with freshly
// generated user, conversation and message identifiers. Callers continuing an
// existing conversation should overwrite the identifiers afterwards.
func NewQuery(messages ...Message) ChatRequest {
	return ChatRequest{
		Version:        Version,
		Type:           TypeQuery,
		Query:          messages,
		UserID:         NewUserID(),
		ConversationID: NewConversationID(),
		MessageID:      NewMessageID(),
	}
}
