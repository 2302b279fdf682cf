package content

import (
	"regexp"
	"strings"
)

// A section body must exceed this many characters after whitespace collapsing
// to be worth embedding; shorter sections are noise (stray separators, empty
// intro paragraphs).
const minSectionChars = 20

var (
	codeFenceRe = regexp.MustCompile("(?s)```.*?```")
	headingRe   = regexp.MustCompile(`^\s{0,3}(#{2,6})\s+(.+?)\s*$`)
)

type Section struct {
	Heading string
	Content string
}

// SplitSections segments a markdown body on heading markers (levels 2-6).
// Fenced code blocks are stripped first so code is never chunked or altered.
// Text before the first heading gets the implicit heading "Introduction".
// Each section's content is truncated to maxChars.
func SplitSections(md string, maxChars int) []Section {
	src := strings.ReplaceAll(md, "\r\n", "\n")
	stripped := codeFenceRe.ReplaceAllString(src, "")
	lines := strings.Split(stripped, "\n")

	var out []Section
	heading := "Introduction"
	var buf []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		collapsed := spaceRunRe.ReplaceAllString(body, " ")
		if len(body) > 0 && len(collapsed) > minSectionChars {
			out = append(out, Section{
				Heading: strings.TrimSpace(heading),
				Content: Truncate(body, maxChars),
			})
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			heading = m[2]
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return out
}

// Truncate bounds s to max runes. Truncation, not wrapping: the tail is
// simply dropped to keep embedding inputs small and prompt context compact.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
