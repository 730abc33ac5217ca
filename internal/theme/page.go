package theme

import (
	"html/template"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
)

// Page is the data passed to page templates.
type Page struct {
	Site *SiteData

	Title       string
	Description string
	Permalink   string
	EditURL     string

	Features template.HTML

	Doc     *content.Doc
	Sidebar []content.SidebarItem

	Post      *content.Post
	NewerPost *content.Post
	OlderPost *content.Post
	Posts     []*content.Post
	Recent    []*content.Post
	Pager     *Pager

	Tag           *content.TagIndex
	Tags          []content.TagIndex
	TagsPermalink string

	RedirectTo string
}

// Pager links neighbouring blog list pages.
type Pager struct {
	Newer string
	Older string
}

// SiteData is the part of every page that depends only on the site.
type SiteData struct {
	Config     *config.SiteConfig
	Lang       string
	Version    string
	Home       string
	DocsHome   string
	Stylesheet string
	Mermaid    bool
	NavLeft    []Link
	NavRight   []Link
	Footer     []LinkColumn
	Copyright  string
	Feeds      []FeedLink
}

// Link is a resolved navigation link.
type Link struct {
	Label    string
	Href     string
	External bool
}

type LinkColumn struct {
	Title string
	Items []Link
}

// FeedLink is advertised with <link rel="alternate">.
type FeedLink struct {
	Type  string
	Href  string
	Title string
}

var feedTitles = map[string]string{"rss": "RSS", "atom": "Atom"}

// FeedFile returns the file name of a feed type ("rss" or "atom").
func FeedFile(kind string) string { return kind + ".xml" }

// SiteData resolves navbar and footer links against the discovered content.
func (t *Theme) SiteData(site *content.Site) *SiteData {
	cfg := t.cfg
	sd := &SiteData{
		Config:     cfg,
		Lang:       cfg.I18n.DefaultLocale,
		Version:    t.version,
		Home:       cfg.Route(),
		Stylesheet: cfg.Asset(StylesheetPath),
		Mermaid:    cfg.Markdown.Mermaid,
		Copyright:  t.Copyright(),
	}
	if first := site.FirstDoc(); first != nil {
		sd.DocsHome = first.Permalink
	}

	for _, item := range cfg.Navbar.Items {
		var link Link
		switch {
		case item.Type == "docSidebar":
			if sd.DocsHome == "" {
				continue
			}
			link = Link{Label: item.Label, Href: sd.DocsHome}
		default:
			link = resolveLink(cfg, item.Label, item.To, item.Href)
		}
		if item.Position == "right" {
			sd.NavRight = append(sd.NavRight, link)
		} else {
			sd.NavLeft = append(sd.NavLeft, link)
		}
	}

	for _, col := range cfg.Footer.Links {
		lc := LinkColumn{Title: col.Title}
		for _, item := range col.Items {
			lc.Items = append(lc.Items, resolveLink(cfg, item.Label, item.To, item.Href))
		}
		sd.Footer = append(sd.Footer, lc)
	}

	if cfg.BlogEnabled() && len(site.Posts) > 0 {
		for _, kind := range cfg.Blog.Feed.Types {
			sd.Feeds = append(sd.Feeds, FeedLink{
				Type:  "application/" + kind + "+xml",
				Href:  cfg.Route(cfg.Blog.RoutePrefix) + FeedFile(kind),
				Title: cfg.Title + " " + feedTitles[kind] + " Feed",
			})
		}
	}
	return sd
}

func resolveLink(cfg *config.SiteConfig, label, to, href string) Link {
	if href != "" {
		return Link{Label: label, Href: href, External: strings.Contains(href, "://")}
	}
	return Link{Label: label, Href: cfg.Link(to)}
}
