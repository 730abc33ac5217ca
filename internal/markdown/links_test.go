package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks_InlineLink(t *testing.T) {
	links := ExtractLinks([]byte("See [API](api.md) for details."))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
}

func TestExtractLinks_ImageLink(t *testing.T) {
	links := ExtractLinks([]byte("![Diagram](diagram.png)"))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindImage, links[0].Kind)
	require.Equal(t, "diagram.png", links[0].Destination)
}

func TestExtractLinks_AutoLink(t *testing.T) {
	links := ExtractLinks([]byte("<https://example.com/path>"))
	require.Len(t, links, 1)
	require.Equal(t, LinkKindAuto, links[0].Kind)
	require.Equal(t, "https://example.com/path", links[0].Destination)
}

func TestExtractLinks_ReferenceLinkUsageAndDefinition(t *testing.T) {
	links := ExtractLinks([]byte("See [API][ref].\n\n[ref]: api.md\n"))

	require.Len(t, links, 2)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
	require.Equal(t, LinkKindReferenceDefinition, links[1].Kind)
	require.Equal(t, "api.md", links[1].Destination)
}

func TestExtractLinks_SkipsInlineCodeAndCodeBlocks(t *testing.T) {
	src := []byte("" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Real: [OK](./real.md)\n")

	links := ExtractLinks(src)
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Destination)
}

func TestExtractRawHTML_BlocksAndInline(t *testing.T) {
	body := []byte("Intro with <kbd>Ctrl</kbd>.\n\n<script>\nalert(1)\n</script>\n\n```html\n<script>ignored()</script>\n```\n")
	frags := ExtractRawHTML(body)
	require.Len(t, frags, 3)
	require.Equal(t, "<kbd>", frags[0].HTML)
	require.Equal(t, 1, frags[0].Line)
	require.Contains(t, frags[2].HTML, "<script>")
	require.Equal(t, 3, frags[2].Line)
}

func TestHasTruncateMarker(t *testing.T) {
	require.True(t, HasTruncateMarker([]byte("a\n<!-- truncate -->\nb")))
	require.True(t, HasTruncateMarker([]byte("a\n{/* truncate */}\nb")))
	require.False(t, HasTruncateMarker([]byte("no marker here")))
}
