package content

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText flattens markdown to its visible text, dropping formatting and
// code fences. Used for the human-facing excerpts of the debug search view.
func PlainText(md string) string {
	parser := goldmark.New().Parser()
	reader := text.NewReader([]byte(md))
	doc := parser.Parse(reader)

	var sb strings.Builder
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(reader.Source()))
			sb.WriteByte(' ')
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(sb.String(), " "))
}

// Excerpt returns the first max runes of the flattened text, with an ellipsis
// when anything was cut.
func Excerpt(md string, max int) string {
	flat := PlainText(md)
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	return string(runes[:max]) + "…"
}
