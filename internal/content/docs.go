package content

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
)

func discoverDocs(ctx context.Context, cfg *config.SiteConfig, docsDir string, opts Options) ([]*Doc, error) {
	if !isDir(docsDir) {
		return nil, errors.ContentError("docs directory not found").WithContext("path", docsDir).Build()
	}

	var docs []*Doc
	ids := map[string]string{}
	permalinks := map[string]string{}
	withHistory := cfg.Docs.ShowLastUpdateTime || cfg.Docs.ShowLastUpdateAuthor

	err := walkMarkdown(ctx, docsDir, func(p string) error {
		src, rel, err := readSource(opts.Root, p)
		if err != nil {
			return err
		}
		if src.FrontMatter.Draft {
			return nil
		}
		relDocs, _ := filepath.Rel(docsDir, p)
		d, err := newDoc(cfg, src, filepath.ToSlash(relDocs), rel)
		if err != nil {
			return err
		}
		d.SourcePath = p
		d.RelPath = rel

		if prev, ok := ids[d.ID]; ok {
			return errors.ContentError("duplicate doc id").
				WithContext("id", d.ID).WithContext("source", rel).WithContext("other", prev).Build()
		}
		ids[d.ID] = rel
		if prev, ok := permalinks[d.Permalink]; ok {
			return errors.ContentError("duplicate doc permalink").
				WithContext("permalink", d.Permalink).WithContext("source", rel).WithContext("other", prev).Build()
		}
		permalinks[d.Permalink] = rel

		if withHistory {
			d.LastUpdated = lookupLastUpdate(opts.History, p, rel)
		}
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk docs").
			WithContext("path", docsDir).Build()
	}
	return docs, nil
}

// newDoc derives id, permalink and title. relDocs is relative to the docs
// dir; rel, relative to the site root, is used in errors.
func newDoc(cfg *config.SiteConfig, src *frontmatter.Document, relDocs, rel string) (*Doc, error) {
	fm := src.FrontMatter
	dir := stripNumberPrefixes(path.Dir(relDocs))
	base := strings.TrimSuffix(path.Base(relDocs), path.Ext(relDocs))
	name, position := parseNumberPrefix(base)

	id := name
	if fm.ID != "" {
		id = fm.ID
	}
	if dir != "" {
		id = dir + "/" + id
	}

	var slug string
	switch {
	case strings.HasPrefix(fm.Slug, "/"):
		slug = fm.Slug
	case fm.Slug != "":
		slug = path.Join(dir, fm.Slug)
	case isIndexName(name, dir):
		slug = dir
	default:
		slug = path.Join(dir, name)
	}

	title := fm.Title
	if title == "" {
		title = leadingH1(src.Body)
	}
	if title == "" {
		title = name
	}
	if fm.SidebarPosition != nil {
		position = fm.SidebarPosition
	}

	docsRoot := cfg.Route(cfg.Docs.RoutePrefix)
	permalink := cfg.Route(cfg.Docs.RoutePrefix, slug)
	if !strings.HasPrefix(permalink, docsRoot) {
		return nil, errors.ContentError("doc slug leaves the docs route").
			WithContext("slug", fm.Slug).WithContext("permalink", permalink).WithContext("source", rel).Build()
	}

	tags := make([]Tag, 0, len(fm.Tags))
	for _, t := range fm.Tags {
		key, err := tagPath(t.Label, t.Permalink, rel)
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{
			Key:       key,
			Label:     t.Label,
			Permalink: cfg.Route(cfg.Docs.RoutePrefix, "tags", key),
			Inline:    true,
		})
	}

	return &Doc{
		ID:              id,
		Permalink:       permalink,
		Title:           title,
		Description:     fm.Description,
		SidebarPosition: position,
		SidebarLabel:    fm.SidebarLabel,
		Tags:            tags,
		FrontMatter:     fm,
		Body:            src.Body,
	}, nil
}

// isIndexName reports whether a doc is the index of its directory:
// index, readme, or a file named like its parent directory.
func isIndexName(name, dir string) bool {
	switch strings.ToLower(name) {
	case "index", "readme":
		return true
	}
	return dir != "" && name == path.Base(dir)
}
