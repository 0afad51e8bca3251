// Package memory wraps the mem0-style long-term memory service. The
// service owns every record; this client only searches and appends.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizforge/internal/config"
	"quizforge/internal/domain"
)

const (
	searchPath = "/v2/memories/search"
	addPath    = "/v1/memories/"

	// Fixed search query; the filter on candidate id does the scoping.
	searchQuery = "candidate background, preferences and past quiz performance"
	searchLimit = 5

	// Fixed user-role note paired with the serialized summary.
	summaryNote = "Store this quiz session summary for the candidate."

	dependency = "mem0"
)

// Client is a thin HTTP client for the memory store.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a memory store client. Missing credentials are
// reported at call time, not here.
func NewClient(cfg config.MemoryConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

type searchRequest struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters"`
	Limit   int               `json:"limit"`
}

type searchResult struct {
	Memory string `json:"memory"`
	Text   string `json:"text"`
}

// Search issues a filtered semantic search scoped to the candidate and
// returns the free-text memories in relevance order. Empty extractions
// are dropped; no results is an empty slice.
func (c *Client) Search(ctx context.Context, candidateID string) ([]string, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	body, status, err := c.post(ctx, searchPath, searchRequest{
		Query:   searchQuery,
		Filters: map[string]string{"user_id": candidateID},
		Limit:   searchLimit,
	})
	if err != nil {
		return nil, domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if status >= http.StatusBadRequest {
		return nil, domain.NewUpstreamError(dependency, fmt.Sprintf("memory search failed: %s", string(body)), nil)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, domain.NewUpstreamError(dependency, "unexpected memory search response", err)
	}

	memories := make([]string, 0, len(results))
	for _, r := range results {
		text := r.Memory
		if text == "" {
			text = r.Text
		}
		if text == "" {
			continue
		}
		memories = append(memories, text)
	}
	return memories, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type addRequest struct {
	Messages []message         `json:"messages"`
	UserID   string            `json:"user_id"`
	Metadata map[string]string `json:"metadata"`
}

// AddSummary appends the session summary as a two-turn exchange tagged
// with fixed metadata.
func (c *Client) AddSummary(ctx context.Context, candidateID string, summary domain.SessionSummary) error {
	if err := c.checkConfig(); err != nil {
		return err
	}
	serialized, err := json.Marshal(summary)
	if err != nil {
		return domain.NewInternalError("failed to serialize session summary", err)
	}

	body, status, err := c.post(ctx, addPath, addRequest{
		Messages: []message{
			{Role: "user", Content: summaryNote},
			{Role: "assistant", Content: string(serialized)},
		},
		UserID: candidateID,
		Metadata: map[string]string{
			"app":      "quizforge",
			"category": "quiz_summary",
		},
	})
	if err != nil {
		return domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if status >= http.StatusBadRequest {
		return domain.NewUpstreamError(dependency, fmt.Sprintf("memory add failed: %s", string(body)), nil)
	}
	return nil
}

func (c *Client) checkConfig() error {
	if c.baseURL == "" {
		return domain.NewMisconfiguredError("memory.base_url")
	}
	if c.apiKey == "" {
		return domain.NewMisconfiguredError("memory.api_key")
	}
	return nil
}

// post sends a JSON payload and returns the raw response body and status.
// Transport errors come back as errors; HTTP error statuses do not.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

var _ domain.MemoryService = (*Client)(nil)
