package rag

import (
	"regexp"
	"strings"
)

// IntentClassifier maps a question to the case-study slug the asker most
// likely means, or "" when the topic is ambiguous. Injected into the
// re-ranker so the keyword table can be replaced without touching ranking.
type IntentClassifier interface {
	Match(question string) string
}

type keywordRule struct {
	re   *regexp.Regexp
	slug string
}

type keywordClassifier struct {
	rules []keywordRule
}

// NewKeywordClassifier returns the default topic table. Rules are checked in
// order; the first hit wins.
func NewKeywordClassifier() IntentClassifier {
	return &keywordClassifier{rules: []keywordRule{
		{re: regexp.MustCompile(`\brag\b|docqa|grounded`), slug: "rag-at-scale"},
		{re: regexp.MustCompile(`observability|grafana|prometheus|slo|otel`), slug: "observability-program"},
		{re: regexp.MustCompile(`vllm|cost.*latency|latency.*cost`), slug: "cost-latency-vllm"},
	}}
}

func (c *keywordClassifier) Match(question string) string {
	q := strings.ToLower(question)
	for _, rule := range c.rules {
		if rule.re.MatchString(q) {
			return rule.slug
		}
	}
	return ""
}

var changedIntentRe = regexp.MustCompile(`what\s+changed|what\s+did\s+you\s+change`)

// wantsChanged reports whether the question asks about before/after deltas.
func wantsChanged(question string) bool {
	return changedIntentRe.MatchString(strings.ToLower(question))
}
