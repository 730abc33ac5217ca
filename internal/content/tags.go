package content

import (
	"path"
	"sort"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

// tagPath is the route segment of a tag below its tags root: the explicit
// permalink when set, else the slug of the label. A tag that would land on
// the tags root itself, or outside it, is a content error.
func tagPath(label, permalink, source string) (string, error) {
	p := permalink
	if p == "" {
		p = markdown.Slugify(label)
	}
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return "", errors.ContentError("tag has no usable permalink").
			WithContext("tag", label).WithContext("permalink", permalink).WithContext("source", source).Build()
	}
	return p, nil
}

// Count is the number of posts or docs carrying the tag.
func (t TagIndex) Count() int { return len(t.Posts) + len(t.Docs) }

// indexDocTags groups listed docs by tag permalink, ordered by label.
func indexDocTags(docs []*Doc) []TagIndex {
	byPermalink := map[string]*TagIndex{}
	var order []string
	for _, d := range docs {
		if d.FrontMatter.Unlisted {
			continue
		}
		for _, t := range d.Tags {
			idx, ok := byPermalink[t.Permalink]
			if !ok {
				idx = &TagIndex{Tag: t}
				byPermalink[t.Permalink] = idx
				order = append(order, t.Permalink)
			}
			idx.Docs = append(idx.Docs, d)
		}
	}
	return sortedTags(byPermalink, order)
}

func sortedTags(byPermalink map[string]*TagIndex, order []string) []TagIndex {
	out := make([]TagIndex, 0, len(order))
	for _, k := range order {
		out = append(out, *byPermalink[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Tag.Label) < strings.ToLower(out[j].Tag.Label)
	})
	return out
}
