package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://custom:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithAPIKey("sk-test"),
			WithBatchSize(16),
		)

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, 16, cfg.BatchSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			EmbeddingHost:  "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
		}

		require.NoError(t, cfg.Validate())
		// Should also normalize
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("missing embedding host", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: "nomic-embed-text"}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost")
	})

	t.Run("missing embedding model", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1"}

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel")
	})

	t.Run("negative batch size", func(t *testing.T) {
		cfg := NewConfig(WithBatchSize(-1))

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "BatchSize")
	})

	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})
}

func TestConfigToken(t *testing.T) {
	assert.Equal(t, "none", (&Config{}).Token())
	assert.Equal(t, "sk-test", (&Config{APIKey: "sk-test"}).Token())
}

type fixedEmbedder struct {
	err error
}

func (f fixedEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, f.err
}

func (f fixedEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, f.err
}

func TestAsLangchain(t *testing.T) {
	ctx := context.Background()
	e := AsLangchain(fixedEmbedder{})

	q, err := e.EmbedQuery(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, q)

	docs, err := e.EmbedDocuments(ctx, []string{"a", "abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {4}}, docs)

	boom := errors.New("boom")
	_, err = AsLangchain(fixedEmbedder{err: boom}).EmbedQuery(ctx, "x")
	assert.ErrorIs(t, err, boom)
}
