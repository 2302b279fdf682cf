package content

import (
	"regexp"
	"strings"
)

var (
	nonWordRe  = regexp.MustCompile(`[^\w\s-]`)
	spaceRunRe = regexp.MustCompile(`\s+`)
	dashRunRe  = regexp.MustCompile(`-+`)
)

// Slugify turns a heading into its anchor id. The anchors are part of
// published URLs, so the transformation is frozen: lowercase, "&" becomes
// "and", everything outside word/space/hyphen is dropped, whitespace runs and
// hyphen runs collapse to a single hyphen.
func Slugify(input string) string {
	s := strings.ToLower(input)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonWordRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaceRunRe.ReplaceAllString(s, "-")
	s = dashRunRe.ReplaceAllString(s, "-")
	return s
}
