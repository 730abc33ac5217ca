package content

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// SidebarItem is a doc link or a category of items.
type SidebarItem struct {
	Label     string
	Permalink string
	Position  *float64
	Items     []SidebarItem
	// Doc is the linked doc; for categories, their index doc if any.
	Doc       *Doc
	Collapsed bool

	sortKey string
}

// IsCategory reports whether the item groups other items.
func (i SidebarItem) IsCategory() bool { return len(i.Items) > 0 }

// categoryMeta is the content of a _category_.json or _category_.yml file.
// JSON is valid YAML, so one decoder reads both.
type categoryMeta struct {
	Label     string   `yaml:"label"`
	Position  *float64 `yaml:"position"`
	Collapsed *bool    `yaml:"collapsed"`
}

var categoryFiles = []string{"_category_.json", "_category_.yml", "_category_.yaml"}

func readCategory(dir string) (*categoryMeta, error) {
	for _, name := range categoryFiles {
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(filepath.Clean(p))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read category metadata").
				WithContext("path", p).Build()
		}
		var meta categoryMeta
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return nil, errors.WrapError(err, errors.CategoryContent, "invalid category metadata").
				Fatal().WithContext("path", p).Build()
		}
		return &meta, nil
	}
	return nil, nil
}

type sidebarNode struct {
	dirs map[string]*sidebarNode
	docs []*Doc
}

func newSidebarNode() *sidebarNode {
	return &sidebarNode{dirs: map[string]*sidebarNode{}}
}

// buildSidebar generates the sidebar from the directory layout of the docs.
// Unlisted docs are left out.
func buildSidebar(docsDir string, docs []*Doc) ([]SidebarItem, error) {
	root := newSidebarNode()
	for _, d := range docs {
		if d.FrontMatter.Unlisted {
			continue
		}
		rel, err := filepath.Rel(docsDir, d.SourcePath)
		if err != nil {
			return nil, err
		}
		n := root
		dir := path.Dir(filepath.ToSlash(rel))
		if dir != "." {
			for _, seg := range strings.Split(dir, "/") {
				child, ok := n.dirs[seg]
				if !ok {
					child = newSidebarNode()
					n.dirs[seg] = child
				}
				n = child
			}
		}
		n.docs = append(n.docs, d)
	}
	return sidebarItems(docsDir, root, true)
}

func sidebarItems(dir string, n *sidebarNode, isRoot bool) ([]SidebarItem, error) {
	var items []SidebarItem
	for _, d := range n.docs {
		if !isRoot && isIndexDoc(d) {
			continue
		}
		items = append(items, SidebarItem{
			Label:     d.Label(),
			Permalink: d.Permalink,
			Position:  d.SidebarPosition,
			Doc:       d,
			sortKey:   filepath.Base(d.SourcePath),
		})
	}

	for name, child := range n.dirs {
		childDir := filepath.Join(dir, name)
		children, err := sidebarItems(childDir, child, false)
		if err != nil {
			return nil, err
		}
		index := categoryIndex(child)
		if len(children) == 0 && index == nil {
			continue
		}

		label, position := parseNumberPrefix(name)
		item := SidebarItem{Label: label, Position: position, Items: children, Doc: index, sortKey: name}
		if index != nil {
			item.Permalink = index.Permalink
		}
		meta, err := readCategory(childDir)
		if err != nil {
			return nil, err
		}
		if meta != nil {
			if meta.Label != "" {
				item.Label = meta.Label
			}
			if meta.Position != nil {
				item.Position = meta.Position
			}
			if meta.Collapsed != nil {
				item.Collapsed = *meta.Collapsed
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Position, items[j].Position
		switch {
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		}
		return items[i].sortKey < items[j].sortKey
	})
	return items, nil
}

func isIndexDoc(d *Doc) bool {
	base := filepath.Base(d.SourcePath)
	name, _ := parseNumberPrefix(strings.TrimSuffix(base, filepath.Ext(base)))
	dir, _ := parseNumberPrefix(filepath.Base(filepath.Dir(d.SourcePath)))
	return isIndexName(name, dir)
}

func categoryIndex(n *sidebarNode) *Doc {
	for _, d := range n.docs {
		if isIndexDoc(d) {
			return d
		}
	}
	return nil
}

// flattenSidebar lists the docs in reading order.
func flattenSidebar(items []SidebarItem) []*Doc {
	var out []*Doc
	for _, it := range items {
		if it.Doc != nil {
			out = append(out, it.Doc)
		}
		out = append(out, flattenSidebar(it.Items)...)
	}
	return out
}

func linkPrevNext(docs []*Doc) {
	for i, d := range docs {
		if i > 0 {
			d.Prev = docs[i-1]
		}
		if i < len(docs)-1 {
			d.Next = docs[i+1]
		}
	}
}
