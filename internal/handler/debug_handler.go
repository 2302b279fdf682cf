package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Araychaudhur/portfolio-2025/internal/ai"
	"github.com/Araychaudhur/portfolio-2025/internal/content"
	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/pkg/response"
	"github.com/Araychaudhur/portfolio-2025/internal/rag"
)

// DocumentReader is the introspection surface of the index store. Debug
// endpoints are operational aids only; the answer path never goes through
// them.
type DocumentReader interface {
	Count(ctx context.Context) (int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	EmbeddingCounts(ctx context.Context) (int64, int64, error)
	Sample(ctx context.Context, n int) ([]model.ContentRecord, error)
}

type DebugHandler struct {
	docs     DocumentReader
	searcher rag.Searcher
	embedder ai.IEmbedder
}

func NewDebugHandler(docs DocumentReader, searcher rag.Searcher, embedder ai.IEmbedder) *DebugHandler {
	return &DebugHandler{docs: docs, searcher: searcher, embedder: embedder}
}

// Count reports total rows plus per-case-study counts the owner checks after
// a reindex.
func (h *DebugHandler) Count(c *gin.Context) {
	ctx := c.Request.Context()
	var errMsgs []string
	total, err := h.docs.Count(ctx)
	if err != nil {
		errMsgs = append(errMsgs, err.Error())
	}
	ragCount, err := h.docs.CountByPrefix(ctx, "/case-studies/rag-at-scale")
	if err != nil {
		errMsgs = append(errMsgs, err.Error())
	}
	obsCount, err := h.docs.CountByPrefix(ctx, "/case-studies/observability-program")
	if err != nil {
		errMsgs = append(errMsgs, err.Error())
	}
	response.JSON(c, gin.H{
		"ok":            len(errMsgs) == 0,
		"total":         total,
		"ragAtScale":    ragCount,
		"observability": obsCount,
		"errors":        errMsgs,
	})
}

func (h *DebugHandler) Embeddings(c *gin.Context) {
	ctx := c.Request.Context()
	withEmb, withoutEmb, err := h.docs.EmbeddingCounts(ctx)
	if err != nil {
		response.Error(c, 500, err.Error())
		return
	}
	sample, err := h.docs.Sample(ctx, 3)
	if err != nil {
		response.Error(c, 500, err.Error())
		return
	}
	response.JSON(c, gin.H{
		"ok": true,
		"counts": gin.H{
			"total":            withEmb + withoutEmb,
			"withEmbedding":    withEmb,
			"withoutEmbedding": withoutEmb,
		},
		"sample": sample,
	})
}

// Search exposes the raw nearest-neighbor ranking for a question, before any
// re-ranking.
func (h *DebugHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error(c, 400, "pass ?q=question")
		return
	}
	n, err := strconv.Atoi(c.Query("n"))
	if err != nil || n <= 0 {
		n = 8
	}
	ctx := c.Request.Context()
	embedding, err := h.embedder.Embed(ctx, q, ai.TaskRetrievalQuery)
	if err != nil {
		handleError(c, err)
		return
	}
	rows, err := h.searcher.Search(ctx, embedding, n)
	if err != nil {
		handleError(c, err)
		return
	}
	type debugRow struct {
		Rank       int    `json:"rank"`
		Similarity string `json:"similarity"`
		URL        string `json:"url"`
		Heading    string `json:"heading"`
		Excerpt    string `json:"excerpt"`
	}
	top := make([]debugRow, 0, len(rows))
	for i, row := range rows {
		top = append(top, debugRow{
			Rank:       i + 1,
			Similarity: strconv.FormatFloat(row.Similarity, 'f', 4, 64),
			URL:        row.URL,
			Heading:    row.Heading,
			Excerpt:    content.Excerpt(row.Content, 180),
		})
	}
	response.JSON(c, gin.H{"ok": true, "q": q, "n": len(top), "top": top})
}

// Selftest probes each dependency the ask path needs: the embedding provider
// and the index store.
func (h *DebugHandler) Selftest(c *gin.Context) {
	ctx := c.Request.Context()
	result := gin.H{}

	embedding, err := h.embedder.Embed(ctx, "ping", ai.TaskRetrievalQuery)
	if err != nil {
		result["embed"] = gin.H{"ok": false, "error": err.Error()}
	} else {
		result["embed"] = gin.H{"ok": true, "dim": len(embedding)}
	}

	total, err := h.docs.Count(ctx)
	if err != nil {
		result["store"] = gin.H{"ok": false, "error": err.Error()}
	} else {
		result["store"] = gin.H{"ok": true, "rows": total}
	}

	response.JSON(c, result)
}
