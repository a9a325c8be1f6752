// Package vectorstore is a client for the knowledge retrieval service that
// backs retrieval capabilities.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hupe1980/agenthub/tool"
)

// ErrNotConfigured is returned by a client without a base URL.
var ErrNotConfigured = errors.New("vector store client is not configured")

type Client struct {
	baseURL    string
	httpClient *resty.Client
}

type QueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type QueryResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Distance *float64       `json:"distance"`
}

type QueryResponse struct {
	Results []QueryResult `json:"results"`
}

// NewClient returns nil when baseURL is empty.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "agenthub-vectorstore/1.0").
		SetTimeout(timeout)

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) IsEnabled() bool {
	return c != nil && c.baseURL != ""
}

// Query implements tool.Retriever.
func (c *Client) Query(ctx context.Context, collection, query string, topK int) ([]tool.Document, error) {
	if !c.IsEnabled() {
		return nil, ErrNotConfigured
	}

	var resp QueryResponse
	httpResp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(QueryRequest{Query: query, TopK: topK}).
		SetResult(&resp).
		Post("/collections/" + url.PathEscape(collection) + "/query")
	if err != nil {
		return nil, fmt.Errorf("vector store query request failed: %w", err)
	}
	if httpResp.IsError() {
		return nil, fmt.Errorf("vector store query error (%d): %s", httpResp.StatusCode(), httpResp.String())
	}

	docs := make([]tool.Document, len(resp.Results))
	for i, r := range resp.Results {
		docs[i] = tool.Document{
			Content:  r.Content,
			Metadata: r.Metadata,
			Distance: r.Distance,
			Rank:     i + 1,
		}
	}
	return docs, nil
}

var _ tool.Retriever = (*Client)(nil)
