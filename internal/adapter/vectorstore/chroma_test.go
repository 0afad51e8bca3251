package vectorstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"quizforge/internal/adapter/vectorstore"
	"quizforge/internal/config"
	"quizforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChroma is a minimal in-memory Chroma v2 stand-in for the
// tenant/database-scoped collection endpoints.
type fakeChroma struct {
	mu          sync.Mutex
	collections map[string]string // name -> id
	createCalls int
}

func newFakeChroma() *fakeChroma {
	return &fakeChroma{collections: make(map[string]string)}
}

func (f *fakeChroma) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if r.URL.Path != "/api/v2/tenants/default_tenant/databases/default_database/collections" {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			list := make([]map[string]string, 0, len(f.collections))
			for name, id := range f.collections {
				list = append(list, map[string]string{"id": id, "name": name})
			}
			_ = json.NewEncoder(w).Encode(list)
		case http.MethodPost:
			var req struct {
				Name        string `json:"name"`
				GetOrCreate bool   `json:"get_or_create"`
			}
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &req)
			f.createCalls++
			id, ok := f.collections[req.Name]
			if !ok {
				id = fmt.Sprintf("col-%d", len(f.collections)+1)
				f.collections[req.Name] = id
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "name": req.Name})
		default:
			http.NotFound(w, r)
		}
	})
}

func testChromaConfig(baseURL string) config.ChromaConfig {
	return config.ChromaConfig{
		BaseURL:    baseURL,
		Tenant:     "default_tenant",
		Database:   "default_database",
		Collection: "quizzes",
	}
}

func TestClient_ResolveCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("get-or-create is idempotent", func(t *testing.T) {
		fake := newFakeChroma()
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))

		first, err := client.ResolveCollection(ctx, "quizzes")
		require.NoError(t, err)
		second, err := client.ResolveCollection(ctx, "quizzes")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, fake.createCalls, "second resolve should find the collection in the listing")
		assert.Len(t, fake.collections, 1)
	})

	t.Run("existing collection is returned without create", func(t *testing.T) {
		fake := newFakeChroma()
		fake.collections["quizzes"] = "col-existing"
		server := httptest.NewServer(fake.handler())
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		id, err := client.ResolveCollection(ctx, "quizzes")
		require.NoError(t, err)
		assert.Equal(t, "col-existing", id)
		assert.Equal(t, 0, fake.createCalls)
	})

	t.Run("list failure is an upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("chroma down"))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		_, err := client.ResolveCollection(ctx, "quizzes")
		require.Error(t, err)

		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrUpstreamFailure, domainErr.Code)
		assert.Equal(t, "chroma", domainErr.Dependency)
		assert.Contains(t, domainErr.Message, "chroma down")
	})

	t.Run("missing base URL is misconfigured", func(t *testing.T) {
		client := vectorstore.NewClient(config.ChromaConfig{Tenant: "t", Database: "d"})
		_, err := client.ResolveCollection(ctx, "quizzes")

		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrMisconfigured, domainErr.Code)
	})
}

func TestClient_QuerySimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents in store order", func(t *testing.T) {
		var gotBody map[string]interface{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/tenants/default_tenant/databases/default_database/collections/col-1/query", r.URL.Path)
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			_, _ = w.Write([]byte(`{"documents": [["quiz A", "quiz B"]], "distances": [[0.1, 0.4]]}`))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		result := client.QuerySimilar(ctx, "col-1", "backend go sql", 3)

		assert.False(t, result.Degraded)
		assert.Equal(t, []string{"quiz A", "quiz B"}, result.Documents)
		assert.Equal(t, float64(3), gotBody["n_results"])
		assert.Equal(t, []interface{}{"backend go sql"}, gotBody["query_texts"])
	})

	t.Run("upstream error degrades to empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("query exploded"))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		result := client.QuerySimilar(ctx, "col-1", "anything", 3)

		assert.True(t, result.Degraded)
		assert.Error(t, result.Err)
		assert.Empty(t, result.Documents)
	})

	t.Run("malformed body degrades to empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json at all`))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		result := client.QuerySimilar(ctx, "col-1", "anything", 3)

		assert.True(t, result.Degraded)
		assert.Empty(t, result.Documents)
	})

	t.Run("unreachable store degrades to empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // connection refused from here on

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		result := client.QuerySimilar(ctx, "col-1", "anything", 3)

		assert.True(t, result.Degraded)
		assert.Error(t, result.Err)
		assert.Empty(t, result.Documents)
	})

	t.Run("no matches is not degraded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"documents": [[]]}`))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		result := client.QuerySimilar(ctx, "col-1", "anything", 3)

		assert.False(t, result.Degraded)
		assert.Empty(t, result.Documents)
	})
}

func TestClient_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stores document with metadata", func(t *testing.T) {
		var gotBody struct {
			IDs       []string                 `json:"ids"`
			Documents []string                 `json:"documents"`
			Metadatas []map[string]interface{} `json:"metadatas"`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/tenants/default_tenant/databases/default_database/collections/col-1/upsert", r.URL.Path)
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &gotBody))
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		metadata := map[string]interface{}{"candidate_id": "c1", "quiz_title": "Backend Basics"}
		require.NoError(t, client.Upsert(ctx, "col-1", "quiz-c1-123", `{"title":"Backend Basics"}`, metadata))

		assert.Equal(t, []string{"quiz-c1-123"}, gotBody.IDs)
		assert.Equal(t, []string{`{"title":"Backend Basics"}`}, gotBody.Documents)
		require.Len(t, gotBody.Metadatas, 1)
		assert.Equal(t, "c1", gotBody.Metadatas[0]["candidate_id"])
	})

	t.Run("non-success carries upstream body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("bad metadata"))
		}))
		defer server.Close()

		client := vectorstore.NewClient(testChromaConfig(server.URL))
		err := client.Upsert(ctx, "col-1", "id", "doc", nil)
		require.Error(t, err)

		var domainErr *domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrUpstreamFailure, domainErr.Code)
		assert.Contains(t, domainErr.Message, "bad metadata")
	})
}
