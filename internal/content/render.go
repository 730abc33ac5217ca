package content

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

// AssetsDir is the output directory for files linked from markdown.
const AssetsDir = "assets/files"

// Render converts every doc and post to HTML. Relative links to markdown
// sources become permalinks; relative links to other files become asset
// paths recorded in site.Assets. root is the site directory.
func Render(ctx context.Context, site *Site, root string, r *markdown.Renderer, diag *diagnostics.Collector) error {
	if diag == nil {
		diag = diagnostics.NewCollector(nil)
	}
	if site.Assets == nil {
		site.Assets = map[string]string{}
	}
	sources := map[string]string{}
	for _, d := range site.Docs {
		sources[d.RelPath] = d.Permalink
	}
	for _, p := range site.Posts {
		sources[p.RelPath] = p.Permalink
	}
	lr := &linkResolver{site: site, root: root, sources: sources}

	for _, d := range site.Docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.Render(d.Body, lr.forSource(d.RelPath))
		if err != nil {
			return renderError(err, d.RelPath)
		}
		applyResult(d, res)
	}

	cfg := site.Config
	for _, p := range site.Posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := r.Render(p.Body, lr.forSource(p.RelPath))
		if err != nil {
			return renderError(err, p.RelPath)
		}
		applyResult(&p.Doc, res)
		p.Truncated = res.Truncated
		p.ReadingTime = res.ReadingTime
		p.Excerpt = res.HTML
		if res.Truncated {
			p.Excerpt = res.Excerpt
			continue
		}
		err = diag.Report(cfg.Blog.OnUntruncatedBlogPosts, diagnostics.Finding{
			Category: errors.CategoryContent,
			Rule:     "untruncated-post",
			Source:   p.RelPath,
			Message:  "blog post has no truncate marker; add <!-- truncate --> after the summary",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func applyResult(d *Doc, res *markdown.Result) {
	d.HTML = res.HTML
	d.Headings = res.Headings
	d.ContentTitle = res.Title != ""
	if d.FrontMatter.Title == "" && res.Title != "" {
		d.Title = res.Title
	}
}

func renderError(err error, source string) error {
	return errors.WrapError(err, errors.CategoryRender, "failed to render markdown").
		Fatal().WithContext("source", source).Build()
}

type linkResolver struct {
	site    *Site
	root    string
	sources map[string]string
}

func (lr *linkResolver) forSource(source string) markdown.LinkResolver {
	return func(dest string) (string, bool) {
		return lr.resolve(source, dest)
	}
}

func (lr *linkResolver) resolve(source, dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") || hasScheme(dest) {
		return "", false
	}
	target, frag := dest, ""
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target, frag = target[:i], target[i:]
	}
	base := lr.site.Config.BaseURL

	var rel string
	if strings.HasPrefix(target, "/") {
		rel = strings.TrimPrefix(path.Clean(target), "/")
	} else {
		rel = path.Clean(path.Join(path.Dir(source), target))
	}

	if isMarkdown(target) {
		if permalink, ok := lr.sources[rel]; ok {
			return permalink + frag, true
		}
		return "", false
	}

	if strings.HasPrefix(target, "/") {
		if base == "/" || strings.HasPrefix(dest, base) {
			return "", false
		}
		return strings.TrimSuffix(base, "/") + dest, true
	}

	if strings.HasPrefix(rel, "../") {
		return "", false
	}
	fi, err := os.Stat(filepath.Join(lr.root, filepath.FromSlash(rel)))
	if err != nil || fi.IsDir() {
		return "", false
	}
	out := path.Join(AssetsDir, rel)
	lr.site.Assets[rel] = out
	return path.Join(base, out) + frag, true
}

func hasScheme(s string) bool {
	i := strings.Index(s, ":")
	if i <= 0 {
		return false
	}
	for _, c := range s[:i] {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.') {
			return false
		}
	}
	return true
}
