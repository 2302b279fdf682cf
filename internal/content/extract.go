package content

import (
	"context"
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Araychaudhur/portfolio-2025/internal/model"
	"github.com/Araychaudhur/portfolio-2025/internal/source"
)

type ExtractorConfig struct {
	CaseDir         string
	ReplayDir       string
	ProfileDir      string
	AllowedSlugs    []string
	MaxSectionChars int
}

// Extractor walks the content store and flattens case studies, replay
// transcripts and profile transcripts into ContentRecords.
type Extractor struct {
	store    source.Store
	cfg      ExtractorConfig
	allowed  map[string]struct{}
	maxChars int
}

func NewExtractor(store source.Store, cfg ExtractorConfig) *Extractor {
	allowed := make(map[string]struct{}, len(cfg.AllowedSlugs))
	for _, slug := range cfg.AllowedSlugs {
		allowed[slug] = struct{}{}
	}
	maxChars := cfg.MaxSectionChars
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &Extractor{store: store, cfg: cfg, allowed: allowed, maxChars: maxChars}
}

// Extract produces the combined record set of one indexing run. Individual
// malformed documents are skipped with a warning; only store-level failures
// abort.
func (e *Extractor) Extract(ctx context.Context) ([]model.ContentRecord, error) {
	caseRecords, err := e.extractCaseStudies(ctx)
	if err != nil {
		return nil, err
	}
	replayRecords, err := e.extractReplays(ctx)
	if err != nil {
		return nil, err
	}
	profileRecords, err := e.extractProfiles(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]model.ContentRecord, 0, len(caseRecords)+len(replayRecords)+len(profileRecords))
	all = append(all, caseRecords...)
	all = append(all, replayRecords...)
	all = append(all, profileRecords...)
	return all, nil
}

func (e *Extractor) extractCaseStudies(ctx context.Context) ([]model.ContentRecord, error) {
	logger := logutil.GetLogger(ctx)
	files, err := e.store.List(ctx, e.cfg.CaseDir, ".mdx", ".md")
	if err != nil {
		return nil, err
	}
	var records []model.ContentRecord
	for _, key := range files {
		raw, err := e.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		meta, body := splitFrontmatter(string(raw))
		slug := meta.Slug
		if slug == "" {
			slug = baseName(key)
		}
		if _, ok := e.allowed[slug]; !ok {
			logger.Info("skipping case study not in runbook", zap.String("slug", slug))
			continue
		}
		baseURL := "/case-studies/" + slug
		sections := SplitSections(body, e.maxChars)
		for _, s := range sections {
			records = append(records, model.ContentRecord{
				URL:     baseURL + "#" + Slugify(s.Heading),
				Heading: s.Heading,
				Content: s.Content,
			})
		}
		logger.Info("case study parsed", zap.String("base", baseURL), zap.Int("sections", len(sections)))
	}
	return records, nil
}

type transcriptStep struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Body    string   `json:"body"`
	Skills  []string `json:"skills"`
	Metrics []metric `json:"metrics"`
}

type metric struct {
	Name   string      `json:"name"`
	Before interface{} `json:"before"`
	After  interface{} `json:"after"`
	Unit   string      `json:"unit"`
}

type replayDoc struct {
	Slug  string           `json:"slug"`
	Steps []transcriptStep `json:"steps"`
}

type profileDoc struct {
	Track string           `json:"track"`
	Steps []transcriptStep `json:"steps"`
}

func (e *Extractor) extractReplays(ctx context.Context) ([]model.ContentRecord, error) {
	logger := logutil.GetLogger(ctx)
	files, err := e.store.List(ctx, e.cfg.ReplayDir, ".json")
	if err != nil {
		return nil, err
	}
	var records []model.ContentRecord
	for _, key := range files {
		raw, err := e.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		var doc replayDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			logger.Warn("skipped invalid replay json", zap.String("file", path.Base(key)), zap.Error(err))
			continue
		}
		slug := doc.Slug
		if slug == "" {
			slug = baseName(key)
		}
		if slug == "" {
			continue
		}
		baseURL := "/case-studies/" + slug
		count := 0
		for _, step := range doc.Steps {
			label, id := stepIdentity(step)
			parts := []string{label, step.Body, formatMetrics(step.Metrics)}
			records = append(records, model.ContentRecord{
				URL:     baseURL + "#" + id,
				Heading: label,
				Content: Truncate(joinNonEmpty(parts), e.maxChars),
			})
			count++
		}
		logger.Info("replay parsed", zap.String("base", baseURL), zap.Int("steps", count))
	}
	return records, nil
}

func (e *Extractor) extractProfiles(ctx context.Context) ([]model.ContentRecord, error) {
	logger := logutil.GetLogger(ctx)
	files, err := e.store.List(ctx, e.cfg.ProfileDir, ".json")
	if err != nil {
		return nil, err
	}
	var records []model.ContentRecord
	for _, key := range files {
		raw, err := e.store.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		var doc profileDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			logger.Warn("skipped invalid profile json", zap.String("file", path.Base(key)), zap.Error(err))
			continue
		}
		track := doc.Track
		if track == "" {
			track = baseName(key)
		}
		// Profile anchors use a hyphen between track and step id, unlike the
		// '#' form of replay steps. Both schemes are live in published links.
		baseURL := "/profile#" + Slugify(track)
		count := 0
		for _, step := range doc.Steps {
			label, id := stepIdentity(step)
			var skills string
			if step.Skills != nil {
				skills = "skills: " + strings.Join(step.Skills, ", ")
			}
			parts := []string{label, step.Body, skills, formatMetrics(step.Metrics)}
			records = append(records, model.ContentRecord{
				URL:     baseURL + "-" + id,
				Heading: label,
				Content: Truncate(joinNonEmpty(parts), e.maxChars),
			})
			count++
		}
		logger.Info("profile parsed", zap.String("base", baseURL), zap.Int("steps", count))
	}
	return records, nil
}

func stepIdentity(step transcriptStep) (label, id string) {
	label = step.Label
	if label == "" {
		label = step.ID
	}
	if label == "" {
		label = "Step"
	}
	id = step.ID
	if id == "" {
		id = Slugify(label)
	}
	return label, id
}

// formatMetrics flattens a metrics list into "name: before<unit> → after<unit>"
// pairs joined by "; ". The arrow form is what the replay player renders, so
// questions about deltas embed close to the stored text.
func formatMetrics(metrics []metric) string {
	if len(metrics) == 0 {
		return ""
	}
	parts := make([]string, 0, len(metrics))
	for _, m := range metrics {
		parts = append(parts, m.Name+": "+formatMetricValue(m.Before)+m.Unit+" → "+formatMetricValue(m.After)+m.Unit)
	}
	return strings.Join(parts, "; ")
}

func formatMetricValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func baseName(key string) string {
	name := path.Base(key)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
