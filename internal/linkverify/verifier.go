package linkverify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
)

// Finding is a link that does not resolve inside the built site.
type Finding struct {
	// Page is the site path of the page containing the link.
	Page string
	Link string
	Tag  string
	Line int
}

func (f Finding) String() string {
	return fmt.Sprintf("%s -> %s", f.Page, f.Link)
}

// Report is the outcome of a verification pass.
type Report struct {
	Pages   int
	Checked int
	// BrokenLinks are hyperlinks to missing pages.
	BrokenLinks []Finding
	// BrokenAnchors point at an existing page lacking the fragment id.
	BrokenAnchors []Finding
	// BrokenAssets are embedded resources (images, scripts, styles) that are missing.
	BrokenAssets []Finding
}

// OK reports whether nothing is broken.
func (r *Report) OK() bool {
	return len(r.BrokenLinks) == 0 && len(r.BrokenAnchors) == 0 && len(r.BrokenAssets) == 0
}

// Verifier checks internal links of a built site on disk.
type Verifier struct {
	siteURL     string
	baseURL     string
	concurrency int
}

// NewVerifier returns a verifier for the site's URL and base path.
func NewVerifier(cfg *config.SiteConfig) *Verifier {
	return &Verifier{
		siteURL:     cfg.URL,
		baseURL:     cfg.BaseURL,
		concurrency: min(runtime.GOMAXPROCS(0), 8),
	}
}

// Verify parses every HTML page under outDir and resolves its internal links
// and anchors against the files that exist.
func (v *Verifier) Verify(ctx context.Context, outDir string) (*Report, error) {
	siteURL := v.siteURL
	if _, err := url.Parse(siteURL); err != nil {
		siteURL = ""
	}

	files := map[string]bool{}
	var pages []string
	err := filepath.WalkDir(outDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files[rel] = true
		if strings.HasSuffix(rel, ".html") {
			pages = append(pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan output").
			WithContext("path", outDir).Build()
	}
	sort.Strings(pages)

	docs, err := v.parsePages(ctx, outDir, pages, siteURL)
	if err != nil {
		return nil, err
	}

	report := &Report{Pages: len(pages)}
	for _, page := range pages {
		pagePath := v.pagePath(page)
		for _, link := range docs[page].Links {
			v.check(report, files, docs, page, pagePath, link)
		}
	}
	return report, nil
}

func (v *Verifier) parsePages(ctx context.Context, outDir string, pages []string, siteURL string) (map[string]*Document, error) {
	docs := make(map[string]*Document, len(pages))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	sem := make(chan struct{}, max(v.concurrency, 1))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(page string) {
			defer wg.Done()
			defer func() { <-sem }()

			doc, err := parseFile(filepath.Join(outDir, filepath.FromSlash(page)), siteURL)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			docs[page] = doc
		}(page)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return docs, nil
}

func parseFile(p, siteURL string) (*Document, error) {
	f, err := os.Open(filepath.Clean(p))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").WithContext("html_path", p).Build()
	}
	defer func() {
		_ = f.Close() // read-only
	}()
	return Parse(f, siteURL)
}

func (v *Verifier) check(report *Report, files map[string]bool, docs map[string]*Document, page, pagePath string, link *Link) {
	finding := Finding{Page: pagePath, Link: link.URL, Tag: link.Tag, Line: link.Line}

	if strings.HasPrefix(link.URL, "#") {
		frag, err := url.PathUnescape(strings.TrimPrefix(link.URL, "#"))
		if err != nil || frag == "" {
			return
		}
		report.Checked++
		if _, ok := docs[page].IDs[frag]; !ok {
			report.BrokenAnchors = append(report.BrokenAnchors, finding)
		}
		return
	}
	if !ShouldVerifyLink(link) {
		return
	}
	report.Checked++

	u, err := url.Parse(link.URL)
	if err != nil {
		v.broken(report, link, finding)
		return
	}
	target := (&url.URL{Path: pagePath}).ResolveReference(u)
	rel, ok := v.stripBase(target.Path)
	if !ok {
		v.broken(report, link, finding)
		return
	}
	file, ok := resolveFile(files, rel)
	if !ok {
		v.broken(report, link, finding)
		return
	}
	if target.Fragment == "" || !strings.HasSuffix(file, ".html") {
		return
	}
	if doc, ok := docs[file]; ok {
		if _, ok := doc.IDs[target.Fragment]; !ok {
			report.BrokenAnchors = append(report.BrokenAnchors, finding)
		}
	}
}

func (v *Verifier) broken(report *Report, link *Link, f Finding) {
	if link.IsNavigation() {
		report.BrokenLinks = append(report.BrokenLinks, f)
		return
	}
	report.BrokenAssets = append(report.BrokenAssets, f)
}

// pagePath maps an output file to the path it is served under.
func (v *Verifier) pagePath(rel string) string {
	switch {
	case rel == "index.html":
		return v.baseURL
	case strings.HasSuffix(rel, "/index.html"):
		return v.baseURL + strings.TrimSuffix(rel, "index.html")
	default:
		return v.baseURL + rel
	}
}

// stripBase removes the base URL from a site path. Paths outside the base fail.
func (v *Verifier) stripBase(p string) (string, bool) {
	if p+"/" == v.baseURL {
		return "", true
	}
	if !strings.HasPrefix(p, v.baseURL) {
		return "", false
	}
	return strings.TrimPrefix(p, v.baseURL), true
}

// resolveFile finds the output file a path is served from, trying the
// directory index, the path itself and a .html extension.
func resolveFile(files map[string]bool, rel string) (string, bool) {
	var candidates []string
	if rel == "" || strings.HasSuffix(rel, "/") {
		candidates = []string{rel + "index.html"}
	} else {
		candidates = []string{rel, rel + "/index.html", rel + ".html"}
	}
	for _, c := range candidates {
		if files[c] {
			return c, true
		}
	}
	return "", false
}

func logAttrs(f Finding) []any {
	return []any{logfields.Page(f.Page), logfields.Link(f.Link), slog.Int("line", f.Line)}
}
