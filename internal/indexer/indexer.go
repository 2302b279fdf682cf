package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/ai"
	"github.com/Araychaudhur/portfolio-2025/internal/content"
	"github.com/Araychaudhur/portfolio-2025/internal/model"
)

// DocumentStore is the write side of the index.
type DocumentStore interface {
	PurgeByBase(ctx context.Context, base string) (int64, error)
	UpsertBatch(ctx context.Context, chunks []model.StoredChunk) error
}

type Summary struct {
	Extracted int
	Deduped   int
	Bases     int
	Indexed   int
	Duration  time.Duration
}

// Indexer runs the offline pipeline: extract, dedupe, purge touched bases,
// embed in batches, upsert. Re-running with unchanged sources reproduces the
// same store state, so the recovery story for any failure is "run it again".
type Indexer struct {
	extractor *content.Extractor
	embedder  ai.IEmbedder
	store     DocumentStore
	batchSize int
}

func New(extractor *content.Extractor, embedder ai.IEmbedder, store DocumentStore, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Indexer{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

func (ix *Indexer) Run(ctx context.Context) (*Summary, error) {
	logger := logutil.GetLogger(ctx)
	start := time.Now()

	records, err := ix.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if len(records) == 0 {
		logger.Info("nothing to index")
		return &Summary{Duration: time.Since(start)}, nil
	}

	deduped := content.Dedupe(records)
	removed := len(records) - len(deduped)
	if removed > 0 {
		logger.Info("deduped rows on (url, heading)", zap.Int("removed", removed))
	}

	bases := collectBases(deduped)
	logger.Info("purging stale rows", zap.Int("bases", len(bases)))
	for _, base := range bases {
		deleted, err := ix.store.PurgeByBase(ctx, base)
		if err != nil {
			// Best-effort: a stale row survives until the next successful
			// purge, or is overwritten by the upsert below.
			logger.Warn("purge failed", zap.String("base", base), zap.Error(err))
			continue
		}
		logger.Info("purged base", zap.String("base", base), zap.Int64("rows", deleted))
	}

	logger.Info("embedding and upserting",
		zap.Int("rows", len(deduped)), zap.Int("batch_size", ix.batchSize))
	indexed := 0
	for offset := 0; offset < len(deduped); offset += ix.batchSize {
		end := offset + ix.batchSize
		if end > len(deduped) {
			end = len(deduped)
		}
		batch := deduped[offset:end]
		if err := ix.writeBatch(ctx, batch); err != nil {
			return nil, err
		}
		indexed += len(batch)
		logger.Info("upserted batch", zap.Int("rows", len(batch)))
	}

	summary := &Summary{
		Extracted: len(records),
		Deduped:   removed,
		Bases:     len(bases),
		Indexed:   indexed,
		Duration:  time.Since(start),
	}
	logger.Info("indexing done",
		zap.Int("chunks", summary.Indexed),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (ix *Indexer) writeBatch(ctx context.Context, batch []model.ContentRecord) error {
	texts := make([]string, 0, len(batch))
	for _, rec := range batch {
		texts = append(texts, rec.Heading+"\n\n"+rec.Content)
	}
	embeddings, err := ix.embedder.EmbedBatch(ctx, texts, ai.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	chunks := make([]model.StoredChunk, 0, len(batch))
	for i, rec := range batch {
		chunks = append(chunks, model.StoredChunk{
			ContentRecord: rec,
			Embedding:     embeddings[i],
		})
	}
	if err := ix.store.UpsertBatch(ctx, chunks); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// collectBases returns the distinct base paths of the record set in
// first-seen order.
func collectBases(records []model.ContentRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var bases []string
	for _, rec := range records {
		base := model.BasePath(rec.URL)
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		bases = append(bases, base)
	}
	return bases
}
