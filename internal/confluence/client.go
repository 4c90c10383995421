package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type ClientConfig struct {
	BaseURL             string
	Username            string
	APIToken            string
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// Client is a thin HTTP client for the Confluence search API.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *http.Client
}

func NewClient(config ClientConfig) *Client {
	return &Client{
		baseURL:  config.BaseURL,
		username: config.Username,
		apiToken: config.APIToken,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
			},
		},
	}
}

// Search runs a site search and returns at most limit results in the
// provider's ranking order.
func (c *Client) Search(ctx context.Context, text string, limit int) ([]SearchResult, error) {
	query := url.Values{}
	query.Set("cql", fmt.Sprintf(`siteSearch ~ "%s"`, text))
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/rest/api/search?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build confluence request: %w", err)
	}
	req.SetBasicAuth(c.username, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("confluence search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("confluence search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode confluence response: %w", err)
	}

	results := make([]SearchResult, 0, len(body.Results))
	for _, entry := range body.Results {
		results = append(results, SearchResult{
			Title:   entry.Title,
			Excerpt: entry.Excerpt,
			WebURL:  entry.Content.Links.WebUI,
		})
	}

	return results, nil
}
