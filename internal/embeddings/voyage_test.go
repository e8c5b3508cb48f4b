package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "pa-test-key",
		BaseURL: server.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	return client, server
}

func TestNewClientValidation(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewClient(Config{}, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative rate limit", func(t *testing.T) {
		_, err := NewClient(Config{APIKey: "pa-test-key", RequestsPerSecond: -1}, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("defaults applied", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "pa-test-key"}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, client.Model())
		assert.Equal(t, DefaultBaseURL, client.config.BaseURL)
	})
}

func TestEmbedQuery(t *testing.T) {
	var gotAuth string
	var gotReq voyageRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := voyageResponse{
			Data:  []voyageEmbedding{{Embedding: []float64{0.1, 0.2, 0.3}, Index: 0}},
			Model: DefaultModel,
			Usage: voyageUsage{TotalTokens: 7},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	vec, err := client.EmbedQuery(context.Background(), "connection pool timeout")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer pa-test-key", gotAuth)
	assert.Equal(t, []string{"connection pool timeout"}, gotReq.Input)
	assert.Equal(t, DefaultModel, gotReq.Model)
}

func TestEmbedQueryBlankInput(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	for _, text := range []string{"", "   ", "\t\n"} {
		vec, err := client.EmbedQuery(context.Background(), text)
		require.NoError(t, err)
		assert.Nil(t, vec)
	}

	assert.Equal(t, int64(0), calls.Load(), "blank input must not reach the API")
}

func TestEmbedDocuments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Deliver embeddings out of order; the client restores input order.
		resp := voyageResponse{
			Data: []voyageEmbedding{
				{Embedding: []float64{2, 2}, Index: 1},
				{Embedding: []float64{1, 1}, Index: 0},
			},
			Usage: voyageUsage{TotalTokens: 12},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	vectors, err := client.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 1}, vectors[0])
	assert.Equal(t, []float64{2, 2}, vectors[1])
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.EmbedDocuments(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	})

	_, err := client.EmbedQuery(context.Background(), "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Contains(t, err.Error(), "401")
}

func TestEmbedMalformedResponse(t *testing.T) {
	t.Run("count mismatch", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			resp := voyageResponse{
				Data: []voyageEmbedding{{Embedding: []float64{1}, Index: 0}},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		})

		_, err := client.EmbedDocuments(context.Background(), []string{"a", "b"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
	})

	t.Run("index out of range", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			resp := voyageResponse{
				Data: []voyageEmbedding{{Embedding: []float64{1}, Index: 5}},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		})

		_, err := client.EmbedQuery(context.Background(), "query")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmbeddingFailed)
	})

	t.Run("not json", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>gateway error</html>"))
		})

		_, err := client.EmbedQuery(context.Background(), "query")
		require.Error(t, err)
	})
}
