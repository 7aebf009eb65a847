package poe

import (
	"log/slog"
	"net/http"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL. Trailing slashes are stripped.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithFileUploadURL sets a custom file upload endpoint.
func WithFileUploadURL(url string) Option {
	return func(c *Client) {
		c.fileUploadURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. The client must support
// concurrent use; it is shared by every call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the structured logger. If unset, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithXMLToolCalls toggles the inline XML tool-call mode: outgoing tool
// definitions and results are projected into message text, and assistant
// output is watched for XML invocations.
func WithXMLToolCalls(enabled bool) Option {
	return func(c *Client) {
		c.xmlToolCalls = enabled
	}
}
