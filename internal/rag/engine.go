package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/ai"
	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/pkg/errs"
)

// RefusalAnswer is the fixed sentence callers and tests pattern-match on.
// The model is instructed to emit it verbatim and the engine falls back to it
// whenever grounded answering is impossible.
const RefusalAnswer = "I can’t answer from the portfolio yet."

// Searcher is the nearest-neighbor lookup against the index store.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, count int) ([]model.RetrievedChunk, error)
}

type Answer struct {
	Answer    string           `json:"answer"`
	Citations []model.Citation `json:"citations"`
}

type EngineConfig struct {
	// FetchCount over-fetches candidates so the re-ranker has material to
	// work with beyond the final Take.
	FetchCount int
	Take       int
}

// Engine is the online query pipeline: embed the question, fetch candidates,
// re-rank, compose a grounded answer. Stateless across requests; safe for
// concurrent use.
type Engine struct {
	embedder   ai.IEmbedder
	generator  ai.IGenerator
	searcher   Searcher
	classifier IntentClassifier
	cfg        EngineConfig
}

func NewEngine(embedder ai.IEmbedder, generator ai.IGenerator, searcher Searcher, classifier IntentClassifier, cfg EngineConfig) *Engine {
	if cfg.FetchCount <= 0 {
		cfg.FetchCount = 12
	}
	if cfg.Take <= 0 {
		cfg.Take = 4
	}
	return &Engine{
		embedder:   embedder,
		generator:  generator,
		searcher:   searcher,
		classifier: classifier,
		cfg:        cfg,
	}
}

func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errs.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("question", question))

	embedding, err := e.embedder.Embed(ctx, question, ai.TaskRetrievalQuery)
	if err != nil {
		logger.Error("failed to embed question", zap.Error(err))
		return nil, fmt.Errorf("embed question: %w", err)
	}

	pool, err := e.searcher.Search(ctx, embedding, e.cfg.FetchCount)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(pool) == 0 {
		// Empty corpus is a defined success, not an error.
		logger.Info("no candidates in corpus")
		return &Answer{Answer: RefusalAnswer, Citations: []model.Citation{}}, nil
	}

	chosen := Rerank(e.classifier, question, pool, e.cfg.Take)

	answer, err := e.compose(ctx, question, chosen)
	if err != nil {
		logger.Error("completion failed", zap.Error(err))
		return nil, fmt.Errorf("compose answer: %w", err)
	}

	citations := make([]model.Citation, 0, len(chosen))
	for i, c := range chosen {
		citations = append(citations, model.Citation{Ref: i + 1, URL: c.URL, Heading: c.Heading})
	}
	logger.Info("answered", zap.Int("citations", len(citations)))
	return &Answer{Answer: answer, Citations: citations}, nil
}

// AskScoped asks once, and when a focus slug is set but missing from the
// citations, re-asks exactly once with the question rewritten to constrain
// the answer to that case study. The first answer stands if the retry fails.
func (e *Engine) AskScoped(ctx context.Context, question string, focusSlug string) (*Answer, error) {
	first, err := e.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	focusSlug = strings.TrimSpace(focusSlug)
	if focusSlug == "" || citationsIncludeSlug(first.Citations, focusSlug) {
		return first, nil
	}
	strict := fmt.Sprintf(
		"Answer strictly using content from /case-studies/%s. "+
			"If information is not present there, say you cannot answer from the portfolio. "+
			"Question: %s", focusSlug, question)
	second, err := e.Ask(ctx, strict)
	if err != nil {
		logutil.GetLogger(ctx).Warn("scoped retry failed", zap.String("focus", focusSlug), zap.Error(err))
		return first, nil
	}
	return second, nil
}

func (e *Engine) compose(ctx context.Context, question string, chosen []model.RankedChunk) (string, error) {
	var blocks []string
	for i, c := range chosen {
		heading := c.Heading
		if heading == "" {
			heading = "(no heading)"
		}
		blocks = append(blocks, fmt.Sprintf("[#%d] %s\nURL: %s\n---\n%s", i+1, heading, c.URL, c.Content))
	}
	system := strings.Join([]string{
		"You answer strictly from the provided context (a portfolio site).",
		"Cite as [#n] where n is the block number.",
		fmt.Sprintf("If the context doesn’t contain the answer, say: “%s”", RefusalAnswer),
	}, " ")
	prompt := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, strings.Join(blocks, "\n\n"))

	answer, err := e.generator.Generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = RefusalAnswer
	}
	return answer, nil
}

func citationsIncludeSlug(citations []model.Citation, slug string) bool {
	low := strings.ToLower(slug)
	for _, c := range citations {
		if strings.ToLower(SlugFromURL(c.URL)) == low {
			return true
		}
	}
	return false
}
