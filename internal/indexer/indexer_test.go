package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Araychaudhur/portfolio-2025/internal/content"
	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/source"
)

type fakeEmbedder struct {
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	out, err := f.EmbedBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

type fakeStore struct {
	ops       []string
	purged    []string
	upserted  [][]model.StoredChunk
	purgeErr  error
	upsertErr error
}

func (f *fakeStore) PurgeByBase(ctx context.Context, base string) (int64, error) {
	f.ops = append(f.ops, "purge")
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.purged = append(f.purged, base)
	return 1, nil
}

func (f *fakeStore) UpsertBatch(ctx context.Context, chunks []model.StoredChunk) error {
	f.ops = append(f.ops, "upsert")
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, chunks)
	return nil
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func newTestIndexer(t *testing.T, root string, store *fakeStore, emb *fakeEmbedder, batchSize int) *Indexer {
	t.Helper()
	extractor := content.NewExtractor(source.NewLocal(root), content.ExtractorConfig{
		CaseDir:         "case-studies",
		ReplayDir:       "replays",
		ProfileDir:      "profile",
		AllowedSlugs:    []string{"rag-at-scale", "other"},
		MaxSectionChars: 4000,
	})
	return New(extractor, emb, store, batchSize)
}

func seedCaseStudy(t *testing.T, root string) {
	writeFile(t, root, "case-studies/rag-at-scale.mdx",
		"---\nslug: rag-at-scale\n---\n"+
			"## Design\nChunk per heading so the anchors stay stable across edits.\n\n"+
			"## Results\nLatency p95 dropped once retrieval was batched properly.\n")
}

func TestIndexerRun_EmptyCorpusSucceeds(t *testing.T) {
	store := &fakeStore{}
	ix := newTestIndexer(t, t.TempDir(), store, &fakeEmbedder{}, 64)
	summary, err := ix.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, summary.Indexed)
	require.Empty(t, store.ops)
}

func TestIndexerRun_PurgesBeforeUpsert(t *testing.T) {
	root := t.TempDir()
	seedCaseStudy(t, root)
	writeFile(t, root, "profile/ml.json",
		`{"track": "ml", "steps": [{"id": "s1", "label": "Serving", "body": "moved to vllm"}]}`)

	store := &fakeStore{}
	emb := &fakeEmbedder{}
	ix := newTestIndexer(t, root, store, emb, 64)

	summary, err := ix.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Indexed)
	require.Equal(t, []string{"/case-studies/rag-at-scale", "/profile"}, store.purged)
	require.Equal(t, []string{"purge", "purge", "upsert"}, store.ops)

	require.Len(t, store.upserted, 1)
	require.Len(t, store.upserted[0], 3)
	require.NotEmpty(t, store.upserted[0][0].Embedding)
	// embedding input is heading + body, not the bare body
	require.Contains(t, emb.batches[0][0], "Design\n\n")
}

func TestIndexerRun_PurgeFailureIsNonFatal(t *testing.T) {
	root := t.TempDir()
	seedCaseStudy(t, root)

	store := &fakeStore{purgeErr: errors.New("lock timeout")}
	ix := newTestIndexer(t, root, store, &fakeEmbedder{}, 64)

	summary, err := ix.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, summary.Indexed)
	require.Len(t, store.upserted, 1)
}

func TestIndexerRun_UpsertFailureAborts(t *testing.T) {
	root := t.TempDir()
	seedCaseStudy(t, root)

	store := &fakeStore{upsertErr: errors.New("conn reset")}
	ix := newTestIndexer(t, root, store, &fakeEmbedder{}, 64)

	_, err := ix.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "conn reset")
}

func TestIndexerRun_EmbedFailureAborts(t *testing.T) {
	root := t.TempDir()
	seedCaseStudy(t, root)

	store := &fakeStore{}
	ix := newTestIndexer(t, root, store, &fakeEmbedder{err: errors.New("quota")}, 64)

	_, err := ix.Run(context.Background())
	require.Error(t, err)
	require.Empty(t, store.upserted)
}

func TestIndexerRun_Batches(t *testing.T) {
	root := t.TempDir()
	var steps string
	for i := 0; i < 5; i++ {
		if i > 0 {
			steps += ","
		}
		steps += `{"id": "s` + string(rune('1'+i)) + `", "label": "Step", "body": "body text"}`
	}
	writeFile(t, root, "replays/other.json", `{"slug": "other", "steps": [`+steps+`]}`)

	store := &fakeStore{}
	emb := &fakeEmbedder{}
	ix := newTestIndexer(t, root, store, emb, 2)

	summary, err := ix.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, summary.Indexed)
	require.Len(t, store.upserted, 3)
	require.Len(t, store.upserted[0], 2)
	require.Len(t, store.upserted[2], 1)
}
