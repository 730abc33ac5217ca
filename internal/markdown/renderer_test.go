package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_HeadingsAndTitle(t *testing.T) {
	r := NewRenderer(Options{})
	res, err := r.Render([]byte("# Getting Started\n\nIntro.\n\n## Install the CLI\n\n### Linux {#linux-install}\n\n#### Deep\n"), nil)
	require.NoError(t, err)

	require.Equal(t, "Getting Started", res.Title)
	require.Equal(t, []Heading{
		{Level: 2, Text: "Install the CLI", ID: "install-the-cli"},
		{Level: 3, Text: "Linux", ID: "linux-install"},
	}, res.Headings)
	require.Contains(t, string(res.HTML), `<h2 id="install-the-cli">`)
	require.False(t, res.Truncated)
	require.Empty(t, res.Excerpt)
}

func TestRender_NoLeadingH1(t *testing.T) {
	res, err := NewRenderer(Options{}).Render([]byte("Text first.\n\n# Later\n"), nil)
	require.NoError(t, err)
	require.Empty(t, res.Title)
}

func TestRender_TruncateMarker(t *testing.T) {
	for _, marker := range []string{"<!-- truncate -->", "<!--truncate-->", "{/* truncate */}"} {
		t.Run(marker, func(t *testing.T) {
			body := "Summary paragraph.\n\n" + marker + "\n\nRest of the post.\n"
			res, err := NewRenderer(Options{}).Render([]byte(body), nil)
			require.NoError(t, err)

			require.True(t, res.Truncated)
			require.Contains(t, string(res.Excerpt), "Summary paragraph.")
			require.NotContains(t, string(res.Excerpt), "Rest of the post.")
			require.Contains(t, string(res.HTML), "Rest of the post.")
			require.NotContains(t, string(res.HTML), "truncate")
		})
	}
}

func TestRender_Mermaid(t *testing.T) {
	body := []byte("```mermaid\ngraph TD\n  A-->B\n```\n\n```go\nfunc main() {}\n```\n")

	res, err := NewRenderer(Options{Mermaid: true}).Render(body, nil)
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<pre class=\"mermaid\">graph TD\n  A--&gt;B\n</pre>")
	require.Contains(t, string(res.HTML), `class="chroma"`)

	plain, err := NewRenderer(Options{}).Render(body, nil)
	require.NoError(t, err)
	require.NotContains(t, string(plain.HTML), `class="mermaid"`)
}

func TestRender_LinkResolver(t *testing.T) {
	resolve := func(dest string) (string, bool) {
		if dest == "./other.md#setup" {
			return "/docs/other/#setup", true
		}
		return "", false
	}
	res, err := NewRenderer(Options{}).Render([]byte("[Other](./other.md#setup) and [ext](https://example.com)\n"), resolve)
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), `href="/docs/other/#setup"`)
	require.Contains(t, string(res.HTML), `href="https://example.com"`)
}

func TestRender_Admonitions(t *testing.T) {
	body := []byte(":::tip[Pro tip]\n\nUse **bold**.\n\n:::\n\n```\n:::note\n```\n")
	res, err := NewRenderer(Options{}).Render(body, nil)
	require.NoError(t, err)

	out := string(res.HTML)
	require.Contains(t, out, `<div class="admonition admonition-tip">`)
	require.Contains(t, out, `<div class="admonition-heading">Pro tip</div>`)
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, ":::note", "fenced code stays literal")
}

func TestRender_GFMTable(t *testing.T) {
	res, err := NewRenderer(Options{}).Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"), nil)
	require.NoError(t, err)
	require.Contains(t, string(res.HTML), "<table>")
}

func TestReadingTime(t *testing.T) {
	require.Equal(t, 1, readingTime(nil))
	require.Equal(t, 1, readingTime([]byte(strings.Repeat("word ", 200))))
	require.Equal(t, 2, readingTime([]byte(strings.Repeat("word ", 201))))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Getting Started":       "getting-started",
		"  Café & Crème brûlée": "cafe-creme-brulee",
		"CI/CD -- pipelines!":   "ci-cd-pipelines",
		"2025 Roadmap":          "2025-roadmap",
		"---":                   "",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestHighlightCSS(t *testing.T) {
	css, err := HighlightCSS("github", "dracula")
	require.NoError(t, err)
	require.Contains(t, css, ".chroma {")
	require.Contains(t, css, "[data-theme='dark'] .chroma {")
	require.Contains(t, css, "[data-theme='dark'] .bg {")
}
