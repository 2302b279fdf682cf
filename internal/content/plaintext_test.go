package content

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	md := "## Heading\n\nSome **bold** text with a [link](https://example.com).\n\n```go\nfmt.Println(\"code\")\n```\n\nTail."
	flat := PlainText(md)
	require.Contains(t, flat, "Heading")
	require.Contains(t, flat, "Some bold text with a link")
	require.Contains(t, flat, "Tail.")
	require.NotContains(t, flat, "fmt.Println")
	require.NotContains(t, flat, "**")
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "short text", Excerpt("short text", 50))
	out := Excerpt("one two three four five six seven eight nine ten", 10)
	require.Len(t, []rune(out), 11)
	require.Equal(t, "…", string([]rune(out)[10]))
}
