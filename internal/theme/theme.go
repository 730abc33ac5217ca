// Package theme holds the page templates and stylesheet of the generated site.
package theme

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

// Page template names.
const (
	PageHome     = "home"
	PageDoc      = "doc"
	PageBlogList = "blog-list"
	PageBlogPost = "blog-post"
	PageTags     = "tags"
	PageDocTag   = "doc-tag"
	Page404      = "404"
	PageRedirect = "redirect"
)

var pageNames = []string{PageHome, PageDoc, PageBlogList, PageBlogPost, PageTags, PageDocTag, Page404, PageRedirect}

// StylesheetPath is where the generated stylesheet is written, relative to the output root.
const StylesheetPath = "assets/css/site.css"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed assets/site.css
var baseCSS []byte

// Theme renders pages for one site configuration.
type Theme struct {
	cfg     *config.SiteConfig
	now     func() time.Time
	version string
	pages   map[string]*template.Template
}

// Option customizes a Theme.
type Option func(*Theme)

// WithClock sets the clock used for the copyright year.
func WithClock(now func() time.Time) Option {
	return func(t *Theme) { t.now = now }
}

// WithVersion sets the generator version shown in page metadata.
func WithVersion(v string) Option {
	return func(t *Theme) { t.version = v }
}

// New parses the embedded templates.
func New(cfg *config.SiteConfig, opts ...Option) (*Theme, error) {
	t := &Theme{cfg: cfg, now: time.Now, version: "dev", pages: map[string]*template.Template{}}
	for _, opt := range opts {
		opt(t)
	}

	base, err := template.New("layout.html").Funcs(t.funcs()).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t.pages[name] = page
	}
	return t, nil
}

func (t *Theme) funcs() template.FuncMap {
	return template.FuncMap{
		"asset":                t.cfg.Asset,
		"abs":                  t.cfg.AbsoluteURL,
		"isoDate":              func(tm time.Time) string { return tm.UTC().Format(time.RFC3339) },
		"longDate":             func(tm time.Time) string { return tm.Format("January 2, 2006") },
		"showReadingTime":      func() bool { return t.cfg.Blog.ShowReadingTime },
		"showLastUpdateTime":   func() bool { return t.cfg.Docs.ShowLastUpdateTime },
		"showLastUpdateAuthor": func() bool { return t.cfg.Docs.ShowLastUpdateAuthor },
		"sidebarLevel": func(items []content.SidebarItem, active string) sidebarLevel {
			return sidebarLevel{Items: items, Active: active}
		},
	}
}

type sidebarLevel struct {
	Items  []content.SidebarItem
	Active string
}

// Render executes the named page template.
func (t *Theme) Render(w io.Writer, name string, p *Page) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}
	if err := tmpl.ExecuteTemplate(w, "layout", p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Stylesheet returns the site CSS: the base theme, the code highlighting
// styles, and the site's custom CSS appended last.
func (t *Theme) Stylesheet(custom []byte) ([]byte, error) {
	code, err := markdown.HighlightCSS(t.cfg.Theme.Prism.Light, t.cfg.Theme.Prism.Dark)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(baseCSS)
	buf.WriteString("\n/* code */\n")
	buf.WriteString(code)
	if len(custom) > 0 {
		buf.WriteString("\n/* custom */\n")
		buf.Write(custom)
	}
	return buf.Bytes(), nil
}

// Copyright returns the footer copyright with {year} replaced.
func (t *Theme) Copyright() string {
	return strings.ReplaceAll(t.cfg.Footer.Copyright, "{year}", t.now().Format("2006"))
}
