package poe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poekit/poekit/protocol"
)

// GetSettings fetches the bot's server-side settings document.
func (c *Client) GetSettings(ctx context.Context) (*protocol.SettingsResponse, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/bot/%s/settings", c.baseURL, c.botName))
	if err != nil {
		return nil, err
	}

	var resp protocol.SettingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	return &resp, nil
}
