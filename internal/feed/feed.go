// Package feed writes the blog's RSS and Atom feeds.
package feed

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// MaxItems caps the number of posts in a feed.
const MaxItems = 20

//go:embed xslt/*
var xsltFS embed.FS

var rootRelative = regexp.MustCompile(`(href|src)="/`)

// Write renders the configured feed types into <outDir>/<blog route>/ and
// returns the written paths. Nothing is written without posts.
func Write(outDir string, cfg *config.SiteConfig, posts []*content.Post, now time.Time) ([]string, error) {
	if !cfg.BlogEnabled() || len(posts) == 0 {
		return nil, nil
	}
	blogDir := filepath.Join(outDir, filepath.FromSlash(cfg.Blog.RoutePrefix))
	if err := os.MkdirAll(blogDir, 0o750); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create feed directory").
			WithContext("path", blogDir).Build()
	}

	f := Build(cfg, posts, now)
	var written []string
	for _, kind := range cfg.Blog.Feed.Types {
		var (
			body string
			err  error
		)
		switch kind {
		case "rss":
			body, err = f.ToRss()
		case "atom":
			body, err = f.ToAtom()
		default:
			return written, errors.ConfigError("unsupported feed type").WithContext("type", kind).Build()
		}
		if err != nil {
			return written, errors.WrapError(err, errors.CategoryRender, "failed to encode feed").
				Fatal().WithContext("type", kind).Build()
		}
		if cfg.Blog.Feed.XSLT {
			body = withStylesheet(body, kind+".xsl")
			paths, err := writeXSLT(blogDir, kind)
			if err != nil {
				return written, err
			}
			written = append(written, paths...)
		}
		p := filepath.Join(blogDir, kind+".xml")
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write feed").
				WithContext("path", p).Build()
		}
		written = append(written, p)
	}
	return written, nil
}

// Build assembles the feed from posts sorted newest first.
func Build(cfg *config.SiteConfig, posts []*content.Post, now time.Time) *feeds.Feed {
	limit := cfg.Blog.Feed.Limit
	if limit <= 0 || limit > MaxItems {
		limit = MaxItems
	}
	origin := strings.TrimSuffix(cfg.URL, "/")
	blogURL := cfg.AbsoluteURL(cfg.Route(cfg.Blog.RoutePrefix))

	f := &feeds.Feed{
		Title:       cfg.Title,
		Link:        &feeds.Link{Href: blogURL},
		Description: cfg.Title + " Blog",
		Id:          blogURL,
		Copyright:   strings.ReplaceAll(cfg.Footer.Copyright, "{year}", now.Format("2006")),
		Created:     now,
	}

	for _, p := range posts {
		if p.FrontMatter.Unlisted {
			continue
		}
		if len(f.Items) == limit {
			break
		}
		link := cfg.AbsoluteURL(p.Permalink)
		item := &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Created:     p.Date,
			Description: p.Description,
			Content:     absolutize(string(p.HTML), origin),
		}
		if item.Description == "" {
			item.Description = absolutize(string(p.Excerpt), origin)
		}
		if len(p.Authors) > 0 {
			item.Author = &feeds.Author{Name: authorNames(p.Authors), Email: p.Authors[0].Email}
		}
		if f.Updated.IsZero() || p.Date.After(f.Updated) {
			f.Updated = p.Date
		}
		f.Add(item)
	}
	return f
}

func authorNames(authors []content.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return strings.Join(names, ", ")
}

// absolutize rewrites root-relative href and src attributes to absolute URLs.
func absolutize(html, origin string) string {
	return rootRelative.ReplaceAllString(html, `$1="`+origin+`/`)
}

// withStylesheet inserts an xml-stylesheet processing instruction after the XML declaration.
func withStylesheet(doc, href string) string {
	pi := fmt.Sprintf(`<?xml-stylesheet type="text/xsl" href="%s"?>`, href)
	if strings.HasPrefix(doc, "<?xml") {
		if i := strings.Index(doc, "?>"); i >= 0 {
			return doc[:i+2] + "\n" + pi + "\n" + strings.TrimLeft(doc[i+2:], "\n")
		}
	}
	return pi + "\n" + doc
}

func writeXSLT(dir, kind string) ([]string, error) {
	files := map[string]string{
		kind + ".xsl": "xslt/" + kind + ".xsl",
		kind + ".css": "xslt/feed.css",
	}
	var written []string
	for name, src := range files {
		data, err := xsltFS.ReadFile(src)
		if err != nil {
			return written, errors.InternalError("missing embedded stylesheet").WithCause(err).WithContext("file", src).Build()
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write feed stylesheet").
				WithContext("path", p).Build()
		}
		written = append(written, p)
	}
	return written, nil
}
