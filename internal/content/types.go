// Package content discovers the docs and blog sources of a site, resolves
// their permalinks and metadata, and renders them to HTML.
package content

import (
	"html/template"
	"time"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
	"github.com/bryce-seefieldt/portfolio-docs/internal/git"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

// Doc is a documentation page.
type Doc struct {
	ID string
	// SourcePath is the file on disk; RelPath is relative to the site root, slash separated.
	SourcePath string
	RelPath    string
	Permalink  string

	Title           string
	Description     string
	SidebarPosition *float64
	SidebarLabel    string
	Tags            []Tag

	FrontMatter frontmatter.FrontMatter
	Body        []byte
	LastUpdated *git.LastUpdate

	// Set by Render. ContentTitle is true when the body opens with its own H1.
	HTML         template.HTML
	Headings     []markdown.Heading
	ContentTitle bool

	Prev, Next *Doc
}

// Label is the text used for the doc in navigation.
func (d *Doc) Label() string {
	if d.SidebarLabel != "" {
		return d.SidebarLabel
	}
	return d.Title
}

// Post is a blog post.
type Post struct {
	Doc

	Date    time.Time
	Authors []Author

	// Set by Render.
	Excerpt     template.HTML
	Truncated   bool
	ReadingTime int
}

// Author is a resolved blog author.
type Author struct {
	Key      string
	Name     string
	Title    string
	URL      string
	ImageURL string
	Email    string
	Inline   bool
}

// Tag is a resolved tag with its listing page.
type Tag struct {
	Key         string
	Label       string
	Permalink   string
	Description string
	// Inline is true when the tag is not declared in the tags file.
	Inline bool
}

// TagIndex lists the posts (newest first) or docs carrying a tag.
type TagIndex struct {
	Tag   Tag
	Posts []*Post
	Docs  []*Doc
}

// Site is the discovered content of a site.
type Site struct {
	Config  *config.SiteConfig
	Docs    []*Doc
	Posts   []*Post
	Sidebar []SidebarItem
	Tags    []TagIndex
	// DocTags indexes the tags used by docs.
	DocTags []TagIndex
	Authors map[string]Author

	// Assets maps files referenced relatively from markdown (site-relative
	// source path) to their output path. Filled by Render.
	Assets map[string]string
}

// FirstDoc returns the first doc in sidebar order, or nil.
func (s *Site) FirstDoc() *Doc {
	if docs := flattenSidebar(s.Sidebar); len(docs) > 0 {
		return docs[0]
	}
	if len(s.Docs) > 0 {
		return s.Docs[0]
	}
	return nil
}

// DocByID looks a doc up by id.
func (s *Site) DocByID(id string) *Doc {
	for _, d := range s.Docs {
		if d.ID == id {
			return d
		}
	}
	return nil
}
