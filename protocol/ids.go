package protocol

import gonanoid "github.com/matoous/go-nanoid/v2"

// idAlphabet keeps generated identifiers URL- and log-safe.
const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const idLength = 21

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return "m-" + gonanoid.MustGenerate(idAlphabet, idLength)
}

// NewConversationID returns a fresh conversation identifier.
func NewConversationID() string {
	return "c-" + gonanoid.MustGenerate(idAlphabet, idLength)
}

// NewUserID returns a fresh user identifier.
func NewUserID() string {
	return "u-" + gonanoid.MustGenerate(idAlphabet, idLength)
}
