package content

import (
	"strings"

	"gopkg.in/yaml.v3"
)

type frontmatter struct {
	Slug string `yaml:"slug"`
}

// splitFrontmatter separates an optional leading "---" yaml block from the
// markdown body. A block that fails to parse is treated as absent; the body is
// still indexed under the filename-derived slug.
func splitFrontmatter(raw string) (frontmatter, string) {
	var meta frontmatter
	src := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(src, "---\n") {
		return meta, src
	}
	rest := src[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, src
	}
	block := rest[:end]
	body := rest[end+len("\n---"):]
	if strings.HasPrefix(body, "\n") {
		body = body[1:]
	}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return frontmatter{}, src
	}
	return meta, body
}
