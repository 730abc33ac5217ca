package content

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryce-seefieldt/portfolio-docs/internal/config"
	"github.com/bryce-seefieldt/portfolio-docs/internal/diagnostics"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
)

const (
	AuthorsFile = "authors.yml"
	TagsFile    = "tags.yml"
)

var postFileName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type authorEntry struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	ImageURL string `yaml:"image_url"`
	Email    string `yaml:"email"`
}

type tagEntry struct {
	Label       string `yaml:"label"`
	Permalink   string `yaml:"permalink"`
	Description string `yaml:"description"`
}

func discoverBlog(ctx context.Context, cfg *config.SiteConfig, site *Site, opts Options) error {
	blogDir := filepath.Join(opts.Root, cfg.Blog.Dir)
	if !isDir(blogDir) {
		return nil
	}

	authors, err := loadAuthors(filepath.Join(blogDir, AuthorsFile))
	if err != nil {
		return err
	}
	site.Authors = authors
	tags, hasTagsFile, err := loadTags(filepath.Join(blogDir, TagsFile))
	if err != nil {
		return err
	}

	permalinks := map[string]string{}
	err = walkMarkdown(ctx, blogDir, func(p string) error {
		src, rel, err := readSource(opts.Root, p)
		if err != nil {
			return err
		}
		if src.FrontMatter.Draft {
			return nil
		}
		relBlog, _ := filepath.Rel(blogDir, p)
		post, err := newPost(cfg, src, filepath.ToSlash(relBlog))
		if err != nil {
			return errors.WrapError(err, errors.CategoryContent, "invalid blog post").
				Fatal().WithContext("source", rel).Build()
		}
		post.SourcePath = p
		post.RelPath = rel

		if prev, ok := permalinks[post.Permalink]; ok {
			return errors.ContentError("duplicate blog permalink").
				WithContext("permalink", post.Permalink).WithContext("source", rel).WithContext("other", prev).Build()
		}
		permalinks[post.Permalink] = rel

		if err := resolveAuthors(cfg, post, authors, opts.Diagnostics); err != nil {
			return err
		}
		if err := resolveTags(cfg, post, tags, hasTagsFile, opts.Diagnostics); err != nil {
			return err
		}
		site.Posts = append(site.Posts, post)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) || ctx.Err() != nil {
			return err
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to walk blog").
			WithContext("path", blogDir).Build()
	}

	sort.SliceStable(site.Posts, func(i, j int) bool {
		if !site.Posts[i].Date.Equal(site.Posts[j].Date) {
			return site.Posts[i].Date.After(site.Posts[j].Date)
		}
		return site.Posts[i].Permalink < site.Posts[j].Permalink
	})
	site.Tags = indexTags(site.Posts)
	return nil
}

// newPost derives date and permalink. relBlog is relative to the blog dir;
// both "2024-01-31-name.md" and "2024-01-31-name/index.md" are accepted.
func newPost(cfg *config.SiteConfig, src *frontmatter.Document, relBlog string) (*Post, error) {
	fm := src.FrontMatter
	base := strings.TrimSuffix(path.Base(relBlog), path.Ext(relBlog))
	var nameSource string
	if strings.EqualFold(base, "index") && path.Dir(relBlog) != "." {
		nameSource = path.Dir(relBlog)
	} else {
		nameSource = path.Join(path.Dir(relBlog), base)
	}
	fileName := path.Base(nameSource)

	var date time.Time
	name := fileName
	if m := postFileName.FindStringSubmatch(fileName); m != nil {
		d, err := time.Parse("2006-01-02", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
		if err != nil {
			return nil, fmt.Errorf("invalid date in file name %q: %w", fileName, err)
		}
		date, name = d, m[4]
	}
	if fm.Date != "" {
		d, err := ParseDate(fm.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}
	if date.IsZero() {
		return nil, fmt.Errorf("post %q has no date: set date in front matter or prefix the file name with YYYY-MM-DD-", fileName)
	}

	slug := fm.Slug
	if slug == "" {
		slug = path.Join(date.Format("2006/01/02"), name)
	}

	blogRoot := cfg.Route(cfg.Blog.RoutePrefix)
	permalink := cfg.Route(cfg.Blog.RoutePrefix, slug)
	if permalink == blogRoot || !strings.HasPrefix(permalink, blogRoot) {
		return nil, fmt.Errorf("slug %q does not name a page below %s", slug, blogRoot)
	}

	title := fm.Title
	if title == "" {
		title = leadingH1(src.Body)
	}
	if title == "" {
		title = name
	}

	return &Post{
		Doc: Doc{
			ID:          strings.TrimPrefix(slug, "/"),
			Permalink:   permalink,
			Title:       title,
			Description: fm.Description,
			FrontMatter: fm,
			Body:        src.Body,
		},
		Date: date,
	}, nil
}

// ParseDate accepts the front matter date layouts used by blog posts.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func loadAuthors(p string) (map[string]Author, error) {
	entries := map[string]authorEntry{}
	if err := readYAMLFile(p, &entries); err != nil {
		return nil, err
	}
	authors := make(map[string]Author, len(entries))
	for key, e := range entries {
		authors[key] = Author{Key: key, Name: e.Name, Title: e.Title, URL: e.URL, ImageURL: e.ImageURL, Email: e.Email}
	}
	return authors, nil
}

func loadTags(p string) (map[string]tagEntry, bool, error) {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, false, nil
	}
	entries := map[string]tagEntry{}
	if err := readYAMLFile(p, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// readYAMLFile decodes p into v; a missing file leaves v untouched.
func readYAMLFile(p string, v any) error {
	data, err := os.ReadFile(filepath.Clean(p))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").WithContext("path", p).Build()
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.WrapError(err, errors.CategoryContent, "invalid YAML").Fatal().WithContext("path", p).Build()
	}
	return nil
}

func resolveAuthors(cfg *config.SiteConfig, post *Post, known map[string]Author, diag *diagnostics.Collector) error {
	for _, ref := range post.FrontMatter.Authors {
		if !ref.Inline {
			a, ok := known[ref.Key]
			if !ok {
				return errors.ContentError("unknown blog author").
					WithContext("author", ref.Key).WithContext("source", post.RelPath).
					WithContext("authors_file", path.Join(cfg.Blog.Dir, AuthorsFile)).Build()
			}
			post.Authors = append(post.Authors, a)
			continue
		}
		post.Authors = append(post.Authors, Author{
			Key: ref.Key, Name: ref.Name, Title: ref.Title, URL: ref.URL,
			ImageURL: ref.ImageURL, Email: ref.Email, Inline: true,
		})
		err := diag.Report(cfg.Blog.OnInlineAuthors, diagnostics.Finding{
			Category: errors.CategoryContent,
			Rule:     "inline-authors",
			Source:   post.RelPath,
			Target:   ref.Name,
			Message:  "blog post declares an inline author; move it to " + AuthorsFile,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func resolveTags(cfg *config.SiteConfig, post *Post, known map[string]tagEntry, hasTagsFile bool, diag *diagnostics.Collector) error {
	for _, t := range post.FrontMatter.Tags {
		if e, ok := known[t.Label]; ok && t.Permalink == "" {
			label := e.Label
			if label == "" {
				label = t.Label
			}
			permalink, err := tagPath(t.Label, e.Permalink, post.RelPath)
			if err != nil {
				return err
			}
			post.Tags = append(post.Tags, Tag{
				Key:         t.Label,
				Label:       label,
				Permalink:   cfg.Route(cfg.Blog.RoutePrefix, "tags", permalink),
				Description: e.Description,
			})
			continue
		}

		permalink, err := tagPath(t.Label, t.Permalink, post.RelPath)
		if err != nil {
			return err
		}
		post.Tags = append(post.Tags, Tag{
			Key:       permalink,
			Label:     t.Label,
			Permalink: cfg.Route(cfg.Blog.RoutePrefix, "tags", permalink),
			Inline:    true,
		})
		if !hasTagsFile {
			continue
		}
		err = diag.Report(cfg.Blog.OnInlineTags, diagnostics.Finding{
			Category: errors.CategoryContent,
			Rule:     "inline-tags",
			Source:   post.RelPath,
			Target:   t.Label,
			Message:  "blog post uses a tag not declared in " + TagsFile,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// indexTags groups posts by tag permalink, ordered by label.
func indexTags(posts []*Post) []TagIndex {
	byPermalink := map[string]*TagIndex{}
	var order []string
	for _, p := range posts {
		if p.FrontMatter.Unlisted {
			continue
		}
		for _, t := range p.Tags {
			idx, ok := byPermalink[t.Permalink]
			if !ok {
				idx = &TagIndex{Tag: t}
				byPermalink[t.Permalink] = idx
				order = append(order, t.Permalink)
			}
			idx.Posts = append(idx.Posts, p)
		}
	}
	return sortedTags(byPermalink, order)
}
