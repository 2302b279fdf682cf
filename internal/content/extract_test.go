package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/source"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func newTestExtractor(t *testing.T, root string, allowed []string) *Extractor {
	t.Helper()
	return NewExtractor(source.NewLocal(root), ExtractorConfig{
		CaseDir:         "case-studies",
		ReplayDir:       "replays",
		ProfileDir:      "profile",
		AllowedSlugs:    allowed,
		MaxSectionChars: 4000,
	})
}

func recordByURL(records []model.ContentRecord, url string) (model.ContentRecord, bool) {
	for _, r := range records {
		if r.URL == url {
			return r, true
		}
	}
	return model.ContentRecord{}, false
}

func TestExtract_CaseStudySections(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "case-studies/rag-at-scale.mdx",
		"---\nslug: rag-at-scale\ntitle: RAG at Scale\n---\n"+
			"## Design\nChunking happens per heading so anchors stay stable over edits.\n\n"+
			"## Results\nLatency p95: 420ms -> 270ms after the retrieval rewrite.\n")

	e := newTestExtractor(t, root, []string{"rag-at-scale"})
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	r, ok := recordByURL(records, "/case-studies/rag-at-scale#results")
	require.True(t, ok)
	require.Equal(t, "Results", r.Heading)
	require.Contains(t, r.Content, "420ms")
}

func TestExtract_SkipsSlugsOutsideRunbook(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "case-studies/unlisted.mdx",
		"## Section\nThis page is not in the runbook and must be skipped.\n")
	writeFile(t, root, "case-studies/listed.md",
		"## Section\nThis page is in the runbook and must be kept around.\n")

	e := newTestExtractor(t, root, []string{"listed"})
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "/case-studies/listed#section", records[0].URL)
}

func TestExtract_ReplayStepsWithMetrics(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "replays/rag-at-scale.json", `{
		"slug": "rag-at-scale",
		"steps": [
			{"id": "s1", "label": "Baseline", "body": "Single giant prompt.",
			 "metrics": [{"name": "p95", "before": 420, "after": 270, "unit": "ms"}]},
			{"body": "Unlabeled step."}
		]
	}`)

	e := newTestExtractor(t, root, nil)
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	r, ok := recordByURL(records, "/case-studies/rag-at-scale#s1")
	require.True(t, ok)
	require.Equal(t, "Baseline", r.Heading)
	require.Contains(t, r.Content, "p95: 420ms → 270ms")

	fallback, ok := recordByURL(records, "/case-studies/rag-at-scale#step")
	require.True(t, ok)
	require.Equal(t, "Step", fallback.Heading)
}

func TestExtract_ProfileStepsWithSkills(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "profile/ml-systems.json", `{
		"track": "ML Systems",
		"steps": [
			{"id": "serving", "label": "Serving", "body": "Moved to vLLM.",
			 "skills": ["vllm", "cuda"]}
		]
	}`)

	e := newTestExtractor(t, root, nil)
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "/profile#ml-systems-serving", records[0].URL)
	require.Contains(t, records[0].Content, "skills: vllm, cuda")
}

func TestExtract_SkipsMalformedJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "replays/broken.json", `{"slug": "x", "steps": [`)
	writeFile(t, root, "replays/good.json", `{"slug": "good", "steps": [{"id": "s1", "label": "Step One", "body": "fine"}]}`)

	e := newTestExtractor(t, root, nil)
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "/case-studies/good#s1", records[0].URL)
}

func TestExtract_MissingDirsAreEmptyInput(t *testing.T) {
	e := newTestExtractor(t, t.TempDir(), []string{"anything"})
	records, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSplitFrontmatter(t *testing.T) {
	meta, body := splitFrontmatter("---\nslug: a-slug\n---\n## H\nbody")
	require.Equal(t, "a-slug", meta.Slug)
	require.Equal(t, "## H\nbody", body)

	meta, body = splitFrontmatter("no frontmatter here")
	require.Empty(t, meta.Slug)
	require.Equal(t, "no frontmatter here", body)

	meta, body = splitFrontmatter("---\n: bad [yaml\n---\nbody")
	require.Empty(t, meta.Slug)
	require.Contains(t, body, "bad [yaml")
}
