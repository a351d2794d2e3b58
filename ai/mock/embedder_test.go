package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorIsDeterministicUnitVector(t *testing.T) {
	a := Vector("hello")
	b := Vector("hello")
	c := Vector("world")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	require.Len(t, a, Dimensions)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	v, err := m.EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, Vector("hello"), v)

	vs, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	assert.Equal(t, 2, m.CallCount())

	boom := errors.New("boom")
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) { return nil, boom }
	_, err = m.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	_, err = m.EmbedText(ctx, "x")
	assert.NoError(t, err)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	require.NotNil(t, p.Embedder())
	assert.Same(t, p.(*MockProvider).GetMockEmbedder(), p.Embedder())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, p.(*MockProvider).CloseCount())
}
