package content

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
	"github.com/bryce-seefieldt/portfolio-docs/internal/git"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
)

// Options configures discovery.
type Options struct {
	// Root is the site directory; the docs and blog dirs are relative to it.
	Root        string
	History     git.UpdateLookup
	Diagnostics *diagnostics.Collector
}

// Discover loads docs and, when enabled, blog posts.
func Discover(ctx context.Context, cfg *config.SiteConfig, opts Options) (*Site, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.History == nil {
		opts.History = git.NoHistory{}
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = diagnostics.NewCollector(nil)
	}

	site := &Site{Config: cfg, Authors: map[string]Author{}}

	docsDir := filepath.Join(opts.Root, cfg.Docs.Dir)
	docs, err := discoverDocs(ctx, cfg, docsDir, opts)
	if err != nil {
		return nil, err
	}
	site.Docs = docs
	site.DocTags = indexDocTags(docs)

	sidebar, err := buildSidebar(docsDir, docs)
	if err != nil {
		return nil, err
	}
	site.Sidebar = sidebar
	linkPrevNext(flattenSidebar(sidebar))

	if cfg.BlogEnabled() {
		if err := discoverBlog(ctx, cfg, site, opts); err != nil {
			return nil, err
		}
	}
	return site, nil
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// skipName reports whether a file or directory is excluded from content.
func skipName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// walkMarkdown calls fn for every markdown file under dir in lexical order.
func walkMarkdown(ctx context.Context, dir string, fn func(path string) error) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		if skipName(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		return fn(p)
	})
}

func readSource(root, p string) (*frontmatter.Document, string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = p
	}
	rel = filepath.ToSlash(rel)

	data, err := os.ReadFile(filepath.Clean(p))
	if err != nil {
		return nil, rel, errors.WrapError(err, errors.CategoryFileSystem, "failed to read source").
			WithContext("source", rel).Build()
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, rel, errors.WrapError(err, errors.CategoryContent, "invalid front matter").
			Fatal().WithContext("source", rel).Build()
	}
	return doc, rel, nil
}

func lookupLastUpdate(h git.UpdateLookup, p, rel string) *git.LastUpdate {
	lu, err := h.LastUpdate(p)
	if err != nil {
		slog.Debug("Last update lookup failed", logfields.Source(rel), logfields.Error(err))
		return nil
	}
	return lu
}

var (
	numberPrefix = regexp.MustCompile(`^(\d+)\s*[-_.]+\s*([^-_.\s].*)$`)
	datePrefix   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// parseNumberPrefix splits "01-setup" into "setup" and position 1.
// Date-like names are left alone.
func parseNumberPrefix(name string) (string, *float64) {
	if datePrefix.MatchString(name) {
		return name, nil
	}
	m := numberPrefix.FindStringSubmatch(name)
	if m == nil {
		return name, nil
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return name, nil
	}
	return m[2], &n
}

func stripNumberPrefixes(dir string) string {
	if dir == "." || dir == "" {
		return ""
	}
	parts := strings.Split(dir, "/")
	for i, p := range parts {
		parts[i], _ = parseNumberPrefix(p)
	}
	return path.Join(parts...)
}

// leadingH1 returns the text of an ATX heading on the first content line.
func leadingH1(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "import ") {
			continue
		}
		if !strings.HasPrefix(line, "# ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(line, "# "), "#"))
	}
	return ""
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
