// Package vectorstore wraps the Chroma v2 REST API. Collections are
// scoped by tenant and database; get-or-create semantics are delegated
// to the store so concurrent resolution never duplicates a collection.
package vectorstore

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

const dependency = "chroma"

// Client is a thin HTTP client for the Chroma vector store.
type Client struct {
	baseURL    string
	tenant     string
	database   string
	httpClient *http.Client
}

// NewClient creates a vector store client. A missing base URL is
// reported at call time, not here.
func NewClient(cfg config.ChromaConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tenant:   cfg.Tenant,
		database: cfg.Database,
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

func (c *Client) collectionsURL() string {
	return c.tenantDatabaseURL() + "/collections"
}

type collectionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type createCollectionRequest struct {
	Name        string            `json:"name"`
	GetOrCreate bool              `json:"get_or_create"`
	Metadata    map[string]string `json:"metadata"`
}

// ResolveCollection returns the identifier of the named collection,
// creating it with get-or-create semantics when no exact match exists.
func (c *Client) ResolveCollection(ctx context.Context, name string) (string, error) {
	if c.baseURL == "" {
		return "", domain.NewMisconfiguredError("chroma.base_url")
	}

	body, status, err := c.do(ctx, http.MethodGet, c.collectionsURL(), nil)
	if err != nil {
		return "", domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if status >= http.StatusBadRequest {
		return "", domain.NewUpstreamError(dependency, fmt.Sprintf("list collections failed: %s", string(body)), nil)
	}

	// The list endpoint is assumed array-shaped. An enveloped response
	// simply finds no match and falls through to get-or-create, which
	// the store keeps idempotent.
	var collections []collectionInfo
	if err := json.Unmarshal(body, &collections); err == nil {
		for _, col := range collections {
			if col.Name == name {
				return col.ID, nil
			}
		}
	}

	body, status, err = c.do(ctx, http.MethodPost, c.collectionsURL(), createCollectionRequest{
		Name:        name,
		GetOrCreate: true,
		Metadata:    map[string]string{"purpose": "quizforge"},
	})
	if err != nil {
		return "", domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if status >= http.StatusBadRequest {
		return "", domain.NewUpstreamError(dependency, fmt.Sprintf("create collection failed: %s", string(body)), nil)
	}

	var created collectionInfo
	if err := json.Unmarshal(body, &created); err != nil {
		return "", domain.NewUpstreamError(dependency, "unexpected create collection response", err)
	}
	if created.ID == "" {
		return "", domain.NewUpstreamError(dependency, "create collection returned no id", nil)
	}
	return created.ID, nil
}

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
	Include    []string `json:"include"`
}

type queryResponse struct {
	Documents [][]string `json:"documents"`
}

// QuerySimilar returns the document text of up to n matches, most
// similar first. Similarity results are an optional enrichment, so every
// failure degrades to an empty result instead of an error.
func (c *Client) QuerySimilar(ctx context.Context, collectionID, queryText string, n int) domain.SimilarResult {
	if n <= 0 {
		n = 3
	}
	if c.baseURL == "" {
		return domain.SimilarResult{Degraded: true, Err: domain.NewMisconfiguredError("chroma.base_url")}
	}

	url := fmt.Sprintf("%s/collections/%s/query", c.tenantDatabaseURL(), collectionID)
	body, status, err := c.do(ctx, http.MethodPost, url, queryRequest{
		QueryTexts: []string{queryText},
		NResults:   n,
		Include:    []string{"documents", "metadatas", "distances"},
	})
	if err != nil {
		return domain.SimilarResult{Degraded: true, Err: err}
	}
	if status >= http.StatusBadRequest {
		return domain.SimilarResult{
			Degraded: true,
			Err:      fmt.Errorf("similarity query failed with status %d: %s", status, string(body)),
		}
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.SimilarResult{Degraded: true, Err: err}
	}
	if len(parsed.Documents) == 0 {
		return domain.SimilarResult{}
	}
	return domain.SimilarResult{Documents: parsed.Documents[0]}
}

type upsertRequest struct {
	IDs       []string                 `json:"ids"`
	Documents []string                 `json:"documents"`
	Metadatas []map[string]interface{} `json:"metadatas"`
}

// Upsert stores or overwrites a single document keyed by id.
func (c *Client) Upsert(ctx context.Context, collectionID, id, document string, metadata map[string]interface{}) error {
	if c.baseURL == "" {
		return domain.NewMisconfiguredError("chroma.base_url")
	}

	url := fmt.Sprintf("%s/collections/%s/upsert", c.tenantDatabaseURL(), collectionID)
	body, status, err := c.do(ctx, http.MethodPost, url, upsertRequest{
		IDs:       []string{id},
		Documents: []string{document},
		Metadatas: []map[string]interface{}{metadata},
	})
	if err != nil {
		return domain.NewUpstreamError(dependency, err.Error(), err)
	}
	if status >= http.StatusBadRequest {
		return domain.NewUpstreamError(dependency, fmt.Sprintf("upsert failed: %s", string(body)), nil)
	}
	return nil
}

func (c *Client) tenantDatabaseURL() string {
	return fmt.Sprintf("%s/api/v2/tenants/%s/databases/%s", c.baseURL, c.tenant, c.database)
}

// do sends an optional JSON payload and returns the raw response body
// and status. Transport errors come back as errors; HTTP error statuses
// do not.
func (c *Client) do(ctx context.Context, method, url string, payload interface{}) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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

var _ domain.VectorStore = (*Client)(nil)
