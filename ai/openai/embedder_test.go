package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/folio/ai"
)

// embeddingServer answers OpenAI embedding requests with one vector per
// input whose single component is the input length. It counts requests
// into calls when calls is non-nil.
func embeddingServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i, in := range req.Input {
			data[i] = item{Object: "embedding", Embedding: []float32{float32(len(in))}, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedder(t *testing.T) {
	srv := embeddingServer(t, nil)
	cfg := ai.NewConfig(ai.WithEmbeddingHost(srv.URL), ai.WithEmbeddingModel("test-embed"))

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()
	assert.Equal(t, srv.URL+"/v1", provider.(*Provider).Host())
	assert.Equal(t, "test-embed", provider.(*Provider).Model())

	ctx := context.Background()
	v, err := provider.Embedder().EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5}, v)

	vs, err := provider.Embedder().EmbedTexts(ctx, []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {3}}, vs)

	vs, err = provider.Embedder().EmbedTexts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestEmbedderBatchSize(t *testing.T) {
	var calls atomic.Int32
	srv := embeddingServer(t, &calls)
	cfg := ai.NewConfig(ai.WithEmbeddingHost(srv.URL), ai.WithEmbeddingModel("test-embed"), ai.WithBatchSize(2))

	e, err := NewEmbedder(cfg)
	require.NoError(t, err)

	vs, err := e.EmbedTexts(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}, {3}, {4}, {5}}, vs)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNewProviderRejectsInvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.ErrorContains(t, err, "EmbeddingModel")
}

func TestNewEmbedderRejectsInvalidConfig(t *testing.T) {
	_, err := NewEmbedder(&ai.Config{EmbeddingHost: "http://localhost"})
	assert.Error(t, err)
}
