// Package mcp exposes tools served over the Model Context Protocol as
// protocol tool definitions, so an MCP server's tool surface can be declared
// in chat requests.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poekit/poekit/protocol"
)

// Client wraps an MCP client session.
type Client struct {
	mcpClient *mcp.Client
	session   *mcp.ClientSession
}

// NewStdioClient connects to an MCP server running as a subprocess over
// stdio.
//
// Example:
//
//	client, err := mcp.NewStdioClient(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	defs, err := client.Definitions(ctx)
func NewStdioClient(ctx context.Context, command string, args []string) (*Client, error) {
	mcpClient := mcp.NewClient(&mcp.Implementation{
		Name:    "poekit",
		Version: "0.1.0",
	}, nil)

	cmd := exec.Command(command, args...)
	session, err := mcpClient.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to MCP server: %w", err)
	}

	return &Client{mcpClient: mcpClient, session: session}, nil
}

// Definitions lists the server's tools as protocol tool definitions. The
// definitions only describe the tools; running a call the bot requests is the
// caller's job, via the MCP session or otherwise.
func (c *Client) Definitions(ctx context.Context) ([]protocol.ToolDefinition, error) {
	result, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("listing MCP tools: %w", err)
	}

	defs := make([]protocol.ToolDefinition, 0, len(result.Tools))
	for _, tool := range result.Tools {
		defs = append(defs, toDefinition(tool))
	}
	return defs, nil
}

// Close closes the MCP client connection.
func (c *Client) Close() error {
	return c.session.Close()
}

// toDefinition converts one MCP tool. An input schema that cannot be
// converted degrades to a bare object schema rather than failing the listing.
func toDefinition(tool *mcp.Tool) protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Type: "function",
		Function: protocol.FunctionDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  convertSchema(tool.InputSchema),
		},
	}
}

func convertSchema(schema any) *protocol.ToolParameters {
	fallback := &protocol.ToolParameters{Type: "object"}
	if schema == nil {
		return fallback
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return fallback
	}
	var params protocol.ToolParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return fallback
	}
	if params.Type == "" {
		params.Type = "object"
	}
	return &params
}
