package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	single int
	batch  int
	texts  [][]string
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.single++
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	c.batch++
	c.texts = append(c.texts, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func (c *countingEmbedder) ModelName() string { return "counting" }

func TestWrapLRU_MemoizesEmbed(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 16, time.Minute)

	first, err := e.Embed(context.Background(), "question", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), "question", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.single)

	// a different task type is a different cache entry
	_, err = e.Embed(context.Background(), "question", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 2, inner.single)
}

func TestWrapLRU_BatchFetchesOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 16, time.Minute)

	_, err := e.Embed(context.Background(), "aa", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)

	out, err := e.EmbedBatch(context.Background(), []string{"aa", "bbbb"}, "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, []float32{2}, out[0])
	require.Equal(t, []float32{4}, out[1])

	require.Equal(t, 1, inner.batch)
	require.Equal(t, []string{"bbbb"}, inner.texts[0])
}

func TestWrapLRU_CachedSlicesAreIsolated(t *testing.T) {
	inner := &countingEmbedder{}
	e := WrapLRU(inner, 16, time.Minute)

	first, err := e.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	first[0] = -1

	second, err := e.Embed(context.Background(), "text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{4}, second)
}

func TestWrapLRU_DisabledPassthrough(t *testing.T) {
	inner := &countingEmbedder{}
	require.Equal(t, inner, WrapLRU(inner, 0, time.Minute))
	require.Equal(t, inner, WrapLRU(inner, 16, 0))
}

func TestBuildCacheKey(t *testing.T) {
	a := buildCacheKey("m", "T", "text")
	b := buildCacheKey("m", "T", "text")
	require.Equal(t, a, b)
	require.NotEqual(t, a, buildCacheKey("m", "T", "other"))
	require.NotEqual(t, a, buildCacheKey("other", "T", "text"))
	require.Contains(t, buildCacheKey("", "T", "text"), "embed:unknown:")
}
