package content

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

func quietCollector() *diagnostics.Collector {
	return diagnostics.NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var siteFixture = map[string]string{
	"docs/intro.md":                   "---\ntitle: Introduction\nsidebar_position: 1\n---\n\n## Start\n\nSee [setup](guides/01-setup.md).\n",
	"docs/guides/_category_.json":     `{"label": "Guides", "position": 2}`,
	"docs/guides/01-setup.md":         "# Setup\n\nBack to [intro](../intro.md#start). ![diagram](./diagram.png)\n",
	"docs/guides/02-deploy.md":        "---\nsidebar_label: Deploying\n---\n# Deploy\n",
	"docs/guides/diagram.png":         "png",
	"docs/draft.md":                   "---\ndraft: true\n---\n# Draft\n",
	"docs/_partial.md":                "# Partial\n",
	"blog/authors.yml":                "bryce:\n  name: Bryce Seefieldt\n  title: Maintainer\n",
	"blog/tags.yml":                   "release:\n  label: Release\n  description: Release notes\n",
	"blog/2024-05-01-welcome.md":      "---\ntitle: Welcome\nauthors: bryce\ntags: [release]\n---\nIntro.\n\n<!-- truncate -->\n\nMore.\n",
	"blog/2024-06-10-second/index.md": "---\nauthors:\n  - name: Guest\ntags: [misc]\n---\n# Second post\n\nBody.\n",
}

func discoverFixture(t *testing.T, files map[string]string) (*Site, string, *diagnostics.Collector) {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, files)
	diag := quietCollector()
	cfg := config.Resolve(config.MapLookup(nil))
	site, err := Discover(context.Background(), cfg, Options{Root: root, Diagnostics: diag})
	require.NoError(t, err)
	return site, root, diag
}

func TestDiscover_Docs(t *testing.T) {
	site, _, _ := discoverFixture(t, siteFixture)

	require.Len(t, site.Docs, 3)
	intro := site.DocByID("intro")
	require.NotNil(t, intro)
	require.Equal(t, "/docs/intro/", intro.Permalink)
	require.Equal(t, "Introduction", intro.Title)

	setup := site.DocByID("guides/setup")
	require.NotNil(t, setup)
	require.Equal(t, "/docs/guides/setup/", setup.Permalink)
	require.Equal(t, "Setup", setup.Title, "title falls back to the leading H1")
	require.InDelta(t, 1.0, *setup.SidebarPosition, 0)
	require.Equal(t, "docs/guides/01-setup.md", setup.RelPath)

	deploy := site.DocByID("guides/deploy")
	require.Equal(t, "Deploying", deploy.Label())
}

func TestDiscover_Sidebar(t *testing.T) {
	site, _, _ := discoverFixture(t, siteFixture)

	require.Len(t, site.Sidebar, 2)
	require.Equal(t, "Introduction", site.Sidebar[0].Label)
	require.False(t, site.Sidebar[0].IsCategory())

	guides := site.Sidebar[1]
	require.Equal(t, "Guides", guides.Label)
	require.True(t, guides.IsCategory())
	require.Len(t, guides.Items, 2)
	require.Equal(t, "Setup", guides.Items[0].Label)
	require.Equal(t, "Deploying", guides.Items[1].Label)

	intro := site.DocByID("intro")
	setup := site.DocByID("guides/setup")
	deploy := site.DocByID("guides/deploy")
	require.Same(t, intro, site.FirstDoc())
	require.Same(t, setup, intro.Next)
	require.Same(t, deploy, setup.Next)
	require.Same(t, setup, deploy.Prev)
	require.Nil(t, deploy.Next)
}

func TestDiscover_Blog(t *testing.T) {
	site, _, diag := discoverFixture(t, siteFixture)

	require.Len(t, site.Posts, 2)
	second, welcome := site.Posts[0], site.Posts[1]
	require.Equal(t, "/blog/2024/06/10/second/", second.Permalink)
	require.Equal(t, "Second post", second.Title)
	require.Equal(t, "/blog/2024/05/01/welcome/", welcome.Permalink)

	require.Len(t, welcome.Authors, 1)
	require.Equal(t, "Bryce Seefieldt", welcome.Authors[0].Name)
	require.False(t, welcome.Authors[0].Inline)
	require.True(t, second.Authors[0].Inline)

	require.Len(t, site.Tags, 2)
	require.Equal(t, "misc", site.Tags[0].Tag.Label)
	require.True(t, site.Tags[0].Tag.Inline)
	require.Equal(t, "Release", site.Tags[1].Tag.Label)
	require.Equal(t, "/blog/tags/release/", site.Tags[1].Tag.Permalink)

	rules := map[string]bool{}
	for _, w := range diag.Warnings() {
		rules[w.Rule] = true
	}
	require.Equal(t, map[string]bool{"inline-authors": true, "inline-tags": true}, rules)
}

func TestRender_ResolvesLinksAndReportsUntruncatedPosts(t *testing.T) {
	site, root, diag := discoverFixture(t, siteFixture)

	err := Render(context.Background(), site, root, markdown.NewRenderer(markdown.Options{Mermaid: true}), diag)
	require.NoError(t, err)

	intro := site.DocByID("intro")
	require.Contains(t, string(intro.HTML), `href="/docs/guides/setup/"`)
	require.False(t, intro.ContentTitle)

	setup := site.DocByID("guides/setup")
	require.Contains(t, string(setup.HTML), `href="/docs/intro/#start"`)
	require.Contains(t, string(setup.HTML), `src="/assets/files/docs/guides/diagram.png"`)
	require.True(t, setup.ContentTitle)
	require.Equal(t, "assets/files/docs/guides/diagram.png", site.Assets["docs/guides/diagram.png"])

	welcome := site.Posts[1]
	require.True(t, welcome.Truncated)
	require.Contains(t, string(welcome.Excerpt), "Intro.")
	require.NotContains(t, string(welcome.Excerpt), "More.")

	var untruncated int
	for _, w := range diag.Warnings() {
		if w.Rule == "untruncated-post" {
			untruncated++
			require.Equal(t, "blog/2024-06-10-second/index.md", w.Source)
		}
	}
	require.Equal(t, 1, untruncated)
}

func TestDiscover_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "duplicate doc id",
			files: map[string]string{
				"docs/a.md": "---\nid: same\n---\nA\n",
				"docs/b.md": "---\nid: same\n---\nB\n",
			},
		},
		{
			name: "post without date",
			files: map[string]string{
				"docs/a.md":       "A\n",
				"blog/undated.md": "---\ntitle: Undated\n---\nBody\n",
			},
		},
		{
			name: "unknown author",
			files: map[string]string{
				"docs/a.md":               "A\n",
				"blog/2024-01-01-post.md": "---\nauthors: nobody\n---\nBody\n",
			},
		},
		{
			name: "invalid front matter",
			files: map[string]string{
				"docs/a.md": "---\ntitle: [broken\n---\nA\n",
			},
		},
		{
			name: "blog tag without a permalink",
			files: map[string]string{
				"docs/a.md":               "A\n",
				"blog/2024-01-01-post.md": "---\ntags: [\"+++\"]\n---\nBody\n",
			},
		},
		{
			name: "doc tag without a permalink",
			files: map[string]string{
				"docs/a.md": "---\ntags: [\"+++\"]\n---\nA\n",
			},
		},
		{
			name: "doc slug leaving the docs route",
			files: map[string]string{
				"docs/a.md":    "A\n",
				"docs/evil.md": "---\nslug: /..\n---\nEvil doc.\n",
			},
		},
		{
			name: "post slug on the blog root",
			files: map[string]string{
				"docs/a.md":               "A\n",
				"blog/2024-01-01-post.md": "---\nslug: /\n---\nBody\n",
			},
		},
		{
			name:  "missing docs dir",
			files: map[string]string{"README.md": "x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tt.files)
			cfg := config.Resolve(config.MapLookup(nil))
			_, err := Discover(context.Background(), cfg, Options{Root: root, Diagnostics: quietCollector()})
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryContent))
		})
	}
}

func TestDiscover_DocTags(t *testing.T) {
	site, _, _ := discoverFixture(t, map[string]string{
		"docs/a.md":      "---\ntags: [Ops, \"CI/CD\"]\n---\nA\n",
		"docs/b.md":      "---\ntags: [ops]\n---\nB\n",
		"docs/hidden.md": "---\nunlisted: true\ntags: [ops]\n---\nHidden\n",
	})

	a := site.DocByID("a")
	require.Equal(t, "/docs/tags/ops/", a.Tags[0].Permalink)
	require.Len(t, site.DocTags, 2)
	require.Equal(t, "CI/CD", site.DocTags[0].Tag.Label)
	ops := site.DocTags[1]
	require.Equal(t, "/docs/tags/ops/", ops.Tag.Permalink)
	require.Equal(t, 2, ops.Count(), "unlisted docs stay out of tag pages")
	require.Empty(t, ops.Posts)
}

func TestTagPath(t *testing.T) {
	p, err := tagPath("Getting Started", "", "docs/a.md")
	require.NoError(t, err)
	require.Equal(t, "getting-started", p)

	p, err = tagPath("x", "/custom/path/", "docs/a.md")
	require.NoError(t, err)
	require.Equal(t, "custom/path", p)

	for _, tt := range []struct{ label, permalink string }{{"+++", ""}, {"x", "/.."}, {"x", "/"}} {
		_, err := tagPath(tt.label, tt.permalink, "docs/a.md")
		require.Error(t, err, tt)
		require.True(t, errors.HasCategory(err, errors.CategoryContent))
	}
}

func TestDiscover_ThrowPolicyFailsOnInlineTags(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/a.md":               "A\n",
		"blog/tags.yml":           "known:\n  label: Known\n",
		"blog/2024-01-01-post.md": "---\ntags: [unknown]\n---\nBody\n",
	})
	cfg := config.Resolve(config.MapLookup(nil))
	cfg.Blog.OnInlineTags = config.PolicyThrow

	_, err := Discover(context.Background(), cfg, Options{Root: root, Diagnostics: quietCollector()})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryContent))
}

func TestParseNumberPrefix(t *testing.T) {
	name, pos := parseNumberPrefix("02-deploy")
	require.Equal(t, "deploy", name)
	require.InDelta(t, 2.0, *pos, 0)

	name, pos = parseNumberPrefix("2024-01-01-post")
	require.Equal(t, "2024-01-01-post", name)
	require.Nil(t, pos)

	name, pos = parseNumberPrefix("intro")
	require.Equal(t, "intro", name)
	require.Nil(t, pos)
}

func TestLeadingH1(t *testing.T) {
	require.Equal(t, "Hello", leadingH1([]byte("\n\n# Hello #\nbody")))
	require.Empty(t, leadingH1([]byte("para\n# Late heading")))
	require.Empty(t, leadingH1([]byte("## Second level")))
}
