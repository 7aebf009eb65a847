package poe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/poekit/poekit/protocol"
)

const (
	gqlURL           = "https://poe.com/api/gql_POST"
	gqlModelHash     = "b24b2f2f6da147b3345eec1a433ed17b6e1332df97dea47622868f41078a40cc"
	gqlModelRevision = "e2acc7025b43e08e88164ba8105273f37fbeaa26"

	gqlUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrEmptyModelList is returned when a listing endpoint answers with no
// usable models.
var ErrEmptyModelList = errors.New("model list is empty")

// ListModels fetches the bearer-authenticated /v1/models listing.
func (c *Client) ListModels(ctx context.Context) (*protocol.ModelResponse, error) {
	body, err := c.get(ctx, c.baseURL+"/v1/models")
	if err != nil {
		return nil, err
	}

	var resp protocol.ModelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing model list: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyModelList
	}
	return &resp, nil
}

// GQLOption configures ListExploreBots.
type GQLOption func(*gqlConfig)

type gqlConfig struct {
	url        string
	httpClient *http.Client
}

// WithGQLURL overrides the GraphQL endpoint.
func WithGQLURL(url string) GQLOption {
	return func(cfg *gqlConfig) {
		cfg.url = url
	}
}

// WithGQLHTTPClient sets the HTTP client used for the GraphQL request.
func WithGQLHTTPClient(client *http.Client) GQLOption {
	return func(cfg *gqlConfig) {
		if client != nil {
			cfg.httpClient = client
		}
	}
}

// ListExploreBots fetches the public explore-bots listing through the fixed
// GraphQL query. It needs no access key. A non-empty languageCode is sent as
// the Poe-Language-Code cookie so handles localize accordingly.
func ListExploreBots(ctx context.Context, languageCode string, opts ...GQLOption) (*protocol.ModelResponse, error) {
	cfg := &gqlConfig{url: gqlURL, httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(cfg)
	}

	payload := map[string]any{
		"queryName": "ExploreBotsListPaginationQuery",
		"variables": map[string]any{
			"categoryName": "defaultCategory",
			"count":        150,
		},
		"extensions": map[string]any{
			"hash": gqlModelHash,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "*/*")
	httpReq.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")
	httpReq.Header.Set("User-Agent", gqlUserAgent)
	httpReq.Header.Set("Origin", "https://poe.com")
	httpReq.Header.Set("Referer", "https://poe.com")
	httpReq.Header.Set("Sec-Fetch-Dest", "empty")
	httpReq.Header.Set("Sec-Fetch-Mode", "cors")
	httpReq.Header.Set("Sec-Fetch-Site", "same-origin")
	httpReq.Header.Set("poe-revision", gqlModelRevision)
	httpReq.Header.Set("poegraphql", "1")
	if languageCode != "" {
		httpReq.Header.Set("Cookie", fmt.Sprintf("Poe-Language-Code=%s; p-b=1", languageCode))
	}

	httpResp, err := cfg.httpClient.Do(httpReq)
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

	var parsed struct {
		Data struct {
			ExploreBotsConnection struct {
				Edges []struct {
					Node struct {
						Handle string `json:"handle"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"exploreBotsConnection"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var resp protocol.ModelResponse
	for _, edge := range parsed.Data.ExploreBotsConnection.Edges {
		if edge.Node.Handle == "" {
			continue
		}
		resp.Data = append(resp.Data, protocol.ModelInfo{
			ID:      edge.Node.Handle,
			Object:  "model",
			Created: 0,
			OwnedBy: "poe",
		})
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyModelList
	}
	return &resp, nil
}
