// Package poe is a client for the Poe bot query protocol: streaming chat
// requests decoded into typed events, tool-call accumulation, optional inline
// XML tool-call detection, file uploads and model listing.
package poe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/poekit/poekit/protocol"
	"github.com/poekit/poekit/xmltool"
)

const (
	defaultBaseURL       = "https://api.poe.com"
	defaultFileUploadURL = "https://www.quora.com/poe_api/file_upload_3RD_PARTY_POST"
)

// Client issues requests for one bot. The zero value is not usable;
// construct with New. A Client is safe for concurrent use: every streaming
// call gets its own decoder state and connection.
type Client struct {
	botName       string
	accessKey     string
	baseURL       string
	fileUploadURL string
	httpClient    *http.Client
	logger        *slog.Logger
	xmlToolCalls  bool
}

// New creates a client for the named bot. The access key falls back to the
// POE_ACCESS_KEY environment variable when empty.
func New(botName, accessKey string, opts ...Option) (*Client, error) {
	if accessKey == "" {
		accessKey = os.Getenv("POE_ACCESS_KEY")
	}
	if accessKey == "" {
		return nil, ErrAccessKeyRequired
	}
	if botName == "" {
		return nil, ErrBotNameRequired
	}

	c := &Client{
		botName:       botName,
		accessKey:     accessKey,
		baseURL:       defaultBaseURL,
		fileUploadURL: defaultFileUploadURL,
		httpClient:    http.DefaultClient,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	c.fileUploadURL = strings.TrimRight(c.fileUploadURL, "/")
	return c, nil
}

// StreamRequest sends a chat request and returns the decoded event stream.
//
// When XML tool calls are enabled, a working copy of the request is rewritten
// before transmission: tool definitions and tool results are projected into
// XML appended to the last user message and the native fields cleared, and
// the response decoder watches assistant text for inline XML invocations.
func (c *Client) StreamRequest(ctx context.Context, req protocol.ChatRequest) (*Stream, error) {
	var interceptor *xmltool.Interceptor
	if c.xmlToolCalls {
		tools := req.Tools
		if len(req.Tools) > 0 {
			xmltool.AppendToolsAsXML(&req)
			req.Tools = nil
		}
		if len(req.ToolResults) > 0 {
			xmltool.AppendToolResultsAsXML(&req)
			req.ToolCalls = nil
			req.ToolResults = nil
		}
		interceptor = xmltool.NewInterceptor(tools)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/bot/%s", c.baseURL, c.botName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessKey)

	c.logger.Debug("sending streaming request", "bot", c.botName, "url", url)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer func() { _ = httpResp.Body.Close() }()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &APIError{StatusCode: httpResp.StatusCode, Message: string(respBody)}
	}

	return newStream(httpResp.Body, newDecoder(c.logger, interceptor)), nil
}

// SendToolResults continues a conversation turn with executed tool results.
// The original request is resent with the calls and results attached; in XML
// mode they are projected into the message text instead of the native fields.
func (c *Client) SendToolResults(ctx context.Context, req protocol.ChatRequest, calls []protocol.ToolCall, results []protocol.ToolResult) (*Stream, error) {
	req.ToolCalls = calls
	req.ToolResults = results
	return c.StreamRequest(ctx, req)
}

// get issues a bearer-authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}
