package rag

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Araychaudhur/portfolio-2025/internal/model"
)

const caseStudyPrefix = "/case-studies/"

// Boost weights layered on top of raw similarity. The preferred-slug bonus is
// deliberately larger than any realistic similarity gap so a topical match
// dominates; the change-intent bonuses nudge before/after sections upward.
const (
	preferredSlugBonus = 0.6
	changeHeadingBonus = 0.25
	changeAnchorBonus  = 0.25
	designAnchorBonus  = 0.25
)

var (
	slugFromURLRe   = regexp.MustCompile(`^/case-studies/([^#]+)`)
	anchorFromURLRe = regexp.MustCompile(`#(.+)$`)
)

// SlugFromURL extracts the case-study slug from a chunk URL, or "" for
// non-case-study chunks.
func SlugFromURL(u string) string {
	m := slugFromURLRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

func anchorFromURL(u string) string {
	m := anchorFromURLRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return m[1]
}

// Rerank reorders the candidate pool with domain heuristics and truncates to
// take. Pure function of the question and the pool.
//
// Case-study chunks are preferred outright when any exist. When the intent
// classifier names a slug that is present in the pool, the pool is restricted
// to that slug: recall is sacrificed for precision when the topic is
// unambiguous. The restriction is skipped when it would empty the pool.
func Rerank(classifier IntentClassifier, question string, pool []model.RetrievedChunk, take int) []model.RankedChunk {
	preferred := ""
	if classifier != nil {
		preferred = classifier.Match(question)
	}

	onlyCases := make([]model.RetrievedChunk, 0, len(pool))
	for _, c := range pool {
		if strings.HasPrefix(c.URL, caseStudyPrefix) {
			onlyCases = append(onlyCases, c)
		}
	}
	if len(onlyCases) > 0 {
		pool = onlyCases
	}

	if preferred != "" && hasSlug(pool, preferred) {
		filtered := make([]model.RetrievedChunk, 0, len(pool))
		for _, c := range pool {
			if SlugFromURL(c.URL) == preferred {
				filtered = append(filtered, c)
			}
		}
		pool = filtered
	}

	changeIntent := wantsChanged(question)

	scored := make([]model.RankedChunk, 0, len(pool))
	for _, c := range pool {
		slug := SlugFromURL(c.URL)
		heading := strings.ToLower(c.Heading)
		anchor := strings.ToLower(anchorFromURL(c.URL))

		score := c.Similarity
		if preferred != "" && slug == preferred {
			score += preferredSlugBonus
		}
		if changeIntent {
			if strings.Contains(heading, "what") && strings.Contains(heading, "chang") {
				score += changeHeadingBonus
			}
			if strings.Contains(anchor, "what") && strings.Contains(anchor, "chang") {
				score += changeAnchorBonus
			}
			if preferred == "rag-at-scale" && (anchor == "design" || strings.Contains(anchor, "what-changed")) {
				score += designAnchorBonus
			}
		}
		scored = append(scored, model.RankedChunk{RetrievedChunk: c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if take > 0 && len(scored) > take {
		scored = scored[:take]
	}
	return scored
}

func hasSlug(pool []model.RetrievedChunk, slug string) bool {
	for _, c := range pool {
		if SlugFromURL(c.URL) == slug {
			return true
		}
	}
	return false
}
