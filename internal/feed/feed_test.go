package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
)

func post(cfg *config.SiteConfig, slug string, date time.Time) *content.Post {
	return &content.Post{
		Doc: content.Doc{
			Title:     "Post " + slug,
			Permalink: cfg.Route("blog", slug),
			HTML:      `<p>See <a href="/docs/intro/">intro</a></p>`,
		},
		Date:    date,
		Excerpt: "<p>Excerpt</p>",
		Authors: []content.Author{{Name: "Bryce Seefieldt", Email: "bryce@example.com"}},
	}
}

func TestWrite_RSSAndAtomWithXSLT(t *testing.T) {
	cfg := config.Resolve(config.MapLookup(nil))
	out := t.TempDir()
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	posts := []*content.Post{
		post(cfg, "newer", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
		post(cfg, "older", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
	}

	written, err := Write(out, cfg, posts, now)
	require.NoError(t, err)
	require.Len(t, written, 6)

	rss, err := os.ReadFile(filepath.Join(out, "blog", "rss.xml"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(rss), `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+`<?xml-stylesheet type="text/xsl" href="rss.xsl"?>`))
	require.Less(t, strings.Index(string(rss), "Post newer"), strings.Index(string(rss), "Post older"))
	require.Contains(t, string(rss), "https://bns-portfolio-docs.vercel.app/blog/newer/")
	require.Contains(t, string(rss), "https://bns-portfolio-docs.vercel.app/docs/intro/")

	atom, err := os.ReadFile(filepath.Join(out, "blog", "atom.xml"))
	require.NoError(t, err)
	require.Contains(t, string(atom), `href="atom.xsl"`)
	require.Contains(t, string(atom), "<name>Bryce Seefieldt</name>")

	for _, name := range []string{"rss.xsl", "atom.xsl", "rss.css", "atom.css"} {
		require.FileExists(t, filepath.Join(out, "blog", name))
	}
}

func TestWrite_NoPostsNoFeed(t *testing.T) {
	cfg := config.Resolve(config.MapLookup(nil))
	out := t.TempDir()
	written, err := Write(out, cfg, nil, time.Now())
	require.NoError(t, err)
	require.Empty(t, written)
	require.NoFileExists(t, filepath.Join(out, "blog", "rss.xml"))
}

func TestWrite_WithoutXSLT(t *testing.T) {
	cfg := config.Resolve(config.MapLookup(nil))
	cfg.Blog.Feed.XSLT = false
	cfg.Blog.Feed.Types = []string{"rss"}
	out := t.TempDir()

	_, err := Write(out, cfg, []*content.Post{post(cfg, "a", time.Now())}, time.Now())
	require.NoError(t, err)
	rss, err := os.ReadFile(filepath.Join(out, "blog", "rss.xml"))
	require.NoError(t, err)
	require.NotContains(t, string(rss), "xml-stylesheet")
	require.NoFileExists(t, filepath.Join(out, "blog", "atom.xml"))
}

func TestBuild_LimitsItems(t *testing.T) {
	cfg := config.Resolve(config.MapLookup(nil))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var posts []*content.Post
	for i := 30; i > 0; i-- {
		posts = append(posts, post(cfg, fmt.Sprintf("p%d", i), base.AddDate(0, 0, i)))
	}

	f := Build(cfg, posts, base)
	require.Len(t, f.Items, MaxItems)
	require.Equal(t, "Post p30", f.Items[0].Title)
	require.True(t, f.Updated.Equal(base.AddDate(0, 0, 30)))
}
