package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/features"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/theme"
)

// RecentPostsCount is the number of posts listed in the blog sidebar.
const RecentPostsCount = 5

func (r *run) assemble(ctx context.Context) error {
	sd := r.theme.SiteData(r.site)
	writers := []func(*theme.SiteData) error{
		r.writeHome,
		r.writeDocs,
		r.writeDocsIndex,
		r.writeDocTags,
		r.writeBlog,
		r.write404,
	}
	for _, w := range writers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w(sd); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) writeHome(sd *theme.SiteData) error {
	grid, err := features.Render()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to render feature grid").Fatal().Build()
	}
	return r.writePage(r.cfg.Route(), theme.PageHome, &theme.Page{
		Site:        sd,
		Description: r.cfg.Tagline,
		Permalink:   r.cfg.Route(),
		Features:    grid,
	})
}

func (r *run) writeDocs(sd *theme.SiteData) error {
	for _, d := range r.site.Docs {
		err := r.writePage(d.Permalink, theme.PageDoc, &theme.Page{
			Site:        sd,
			Title:       d.Title,
			Description: d.Description,
			Permalink:   d.Permalink,
			EditURL:     editURL(r.cfg.Docs.EditURL, d.RelPath),
			Doc:         d,
			Sidebar:     r.site.Sidebar,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeDocsIndex redirects the docs root to the first doc unless a doc owns it.
func (r *run) writeDocsIndex(sd *theme.SiteData) error {
	docsRoot := r.cfg.Route(r.cfg.Docs.RoutePrefix)
	first := r.site.FirstDoc()
	if first == nil {
		return nil
	}
	for _, d := range r.site.Docs {
		if d.Permalink == docsRoot {
			return nil
		}
	}
	return r.writePage(docsRoot, theme.PageRedirect, &theme.Page{
		Site:       sd,
		Title:      first.Title,
		RedirectTo: first.Permalink,
	})
}

func (r *run) writeBlog(sd *theme.SiteData) error {
	cfg := r.cfg
	if !cfg.BlogEnabled() || len(r.site.Posts) == 0 {
		return nil
	}
	listed := listedPosts(r.site.Posts)
	recent := listed[:min(RecentPostsCount, len(listed))]
	blogRoot := cfg.Route(cfg.Blog.RoutePrefix)

	perPage := cfg.Blog.PostsPerPage
	if perPage <= 0 {
		perPage = len(listed)
	}
	pages := paginate(listed, perPage)
	for i, posts := range pages {
		pager := &theme.Pager{}
		if i > 0 {
			pager.Newer = blogListPage(blogRoot, i)
		}
		if i < len(pages)-1 {
			pager.Older = blogListPage(blogRoot, i+2)
		}
		permalink := blogListPage(blogRoot, i+1)
		title := cfg.Blog.Title
		if i > 0 {
			title = fmt.Sprintf("%s - Page %d", cfg.Blog.Title, i+1)
		}
		err := r.writePage(permalink, theme.PageBlogList, &theme.Page{
			Site:        sd,
			Title:       title,
			Description: cfg.Blog.Description,
			Permalink:   permalink,
			Posts:       posts,
			Recent:      recent,
			Pager:       pager,
		})
		if err != nil {
			return err
		}
	}

	position := make(map[*content.Post]int, len(listed))
	for i, p := range listed {
		position[p] = i
	}
	for _, p := range r.site.Posts {
		page := &theme.Page{
			Site:        sd,
			Title:       p.Title,
			Description: p.Description,
			Permalink:   p.Permalink,
			EditURL:     editURL(cfg.Blog.EditURL, p.RelPath),
			Post:        p,
			Recent:      recent,
		}
		if i, ok := position[p]; ok {
			if i > 0 {
				page.NewerPost = listed[i-1]
			}
			if i < len(listed)-1 {
				page.OlderPost = listed[i+1]
			}
		}
		if err := r.writePage(p.Permalink, theme.PageBlogPost, page); err != nil {
			return err
		}
	}

	return r.writeTags(sd, recent)
}

func (r *run) writeTags(sd *theme.SiteData, recent []*content.Post) error {
	if len(r.site.Tags) == 0 {
		return nil
	}
	tagsRoot := r.cfg.Route(r.cfg.Blog.RoutePrefix, "tags")
	err := r.writePage(tagsRoot, theme.PageTags, &theme.Page{
		Site:      sd,
		Title:     "Tags",
		Permalink: tagsRoot,
		Tags:      r.site.Tags,
	})
	if err != nil {
		return err
	}
	for i := range r.site.Tags {
		tag := &r.site.Tags[i]
		noun := "posts"
		if len(tag.Posts) == 1 {
			noun = "post"
		}
		err := r.writePage(tag.Tag.Permalink, theme.PageBlogList, &theme.Page{
			Site:          sd,
			Title:         fmt.Sprintf("%d %s tagged with %q", len(tag.Posts), noun, tag.Tag.Label),
			Description:   tag.Tag.Description,
			Permalink:     tag.Tag.Permalink,
			Posts:         tag.Posts,
			Recent:        recent,
			Tag:           tag,
			TagsPermalink: tagsRoot,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) writeDocTags(sd *theme.SiteData) error {
	if len(r.site.DocTags) == 0 {
		return nil
	}
	tagsRoot := r.cfg.Route(r.cfg.Docs.RoutePrefix, "tags")
	err := r.writePage(tagsRoot, theme.PageTags, &theme.Page{
		Site:      sd,
		Title:     "Tags",
		Permalink: tagsRoot,
		Tags:      r.site.DocTags,
	})
	if err != nil {
		return err
	}
	for i := range r.site.DocTags {
		tag := &r.site.DocTags[i]
		noun := "docs"
		if len(tag.Docs) == 1 {
			noun = "doc"
		}
		err := r.writePage(tag.Tag.Permalink, theme.PageDocTag, &theme.Page{
			Site:          sd,
			Title:         fmt.Sprintf("%d %s tagged with %q", len(tag.Docs), noun, tag.Tag.Label),
			Description:   tag.Tag.Description,
			Permalink:     tag.Tag.Permalink,
			Tag:           tag,
			TagsPermalink: tagsRoot,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) write404(sd *theme.SiteData) error {
	var buf bytes.Buffer
	if err := r.theme.Render(&buf, theme.Page404, &theme.Page{Site: sd, Title: "Page Not Found"}); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to render page").
			Fatal().WithContext("template", theme.Page404).Build()
	}
	if err := r.writeFile(filepath.Join(r.outDir, "404.html"), buf.Bytes()); err != nil {
		return err
	}
	r.report.Pages++
	return nil
}

// writePage renders a page to <out>/<permalink without base>/index.html.
// Two pages on one route are a content error.
func (r *run) writePage(permalink, name string, p *theme.Page) error {
	if prev, ok := r.routes[permalink]; ok {
		return errors.ContentError("duplicate route").
			WithContext("page", permalink).WithContext("template", name).WithContext("other", prev).Build()
	}
	r.routes[permalink] = name

	var buf bytes.Buffer
	if err := r.theme.Render(&buf, name, p); err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to render page").
			Fatal().WithContext("template", name).WithContext("page", permalink).Build()
	}
	rel := strings.TrimPrefix(permalink, r.cfg.BaseURL)
	target := filepath.Join(r.outDir, filepath.FromSlash(rel), "index.html")
	if err := r.writeFile(target, buf.Bytes()); err != nil {
		return err
	}
	r.report.Pages++
	return nil
}

func (r *run) writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			Fatal().WithContext("path", filepath.Dir(target)).Build()
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").
			Fatal().WithContext("path", target).Build()
	}
	return nil
}

func listedPosts(posts []*content.Post) []*content.Post {
	out := make([]*content.Post, 0, len(posts))
	for _, p := range posts {
		if !p.FrontMatter.Unlisted {
			out = append(out, p)
		}
	}
	return out
}

func paginate(posts []*content.Post, size int) [][]*content.Post {
	if len(posts) == 0 {
		return [][]*content.Post{nil}
	}
	var pages [][]*content.Post
	for start := 0; start < len(posts); start += size {
		pages = append(pages, posts[start:min(start+size, len(posts))])
	}
	return pages
}

// blogListPage returns the permalink of list page n (1-based).
func blogListPage(blogRoot string, n int) string {
	if n <= 1 {
		return blogRoot
	}
	return blogRoot + "page/" + strconv.Itoa(n) + "/"
}

func editURL(base, rel string) string {
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + rel
}
