package frontmatter

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FrontMatter holds the fields the generator understands. Unknown keys are
// kept in Raw.
type FrontMatter struct {
	ID              string     `yaml:"id"`
	Title           string     `yaml:"title"`
	Description     string     `yaml:"description"`
	Slug            string     `yaml:"slug"`
	SidebarPosition *float64   `yaml:"sidebar_position"`
	SidebarLabel    string     `yaml:"sidebar_label"`
	Tags            TagList    `yaml:"tags"`
	Authors         AuthorRefs `yaml:"authors"`
	Date            string     `yaml:"date"`
	Draft           bool       `yaml:"draft"`
	Unlisted        bool       `yaml:"unlisted"`
	HideTitle       bool       `yaml:"hide_title"`

	Raw map[string]any `yaml:"-"`
}

// Document is a parsed markdown source.
type Document struct {
	FrontMatter FrontMatter
	Body        []byte
	// HadFrontMatter reports whether a delimited block was present.
	HadFrontMatter bool
}

// Parse splits content and decodes the front matter block.
func Parse(content []byte) (*Document, error) {
	raw, body, had, err := Split(content)
	if err != nil {
		return nil, err
	}
	doc := &Document{Body: body, HadFrontMatter: had}
	if !had {
		doc.FrontMatter.Raw = map[string]any{}
		return doc, nil
	}
	if err := yaml.Unmarshal(raw, &doc.FrontMatter); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	doc.FrontMatter.Raw = fields
	return doc, nil
}

// AuthorRef is either a key into the authors file or an inline author.
type AuthorRef struct {
	Key      string
	Name     string
	Title    string
	URL      string
	ImageURL string
	Email    string
	// Inline is true when the author was declared in the post itself.
	Inline bool
}

// AuthorRefs accepts a key, a list of keys, an inline object, or a list
// mixing keys and inline objects.
type AuthorRefs []AuthorRef

func (a *AuthorRefs) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value != "" {
			*a = AuthorRefs{{Key: n.Value}}
		}
		return nil
	case yaml.MappingNode:
		ref, err := decodeInlineAuthor(n)
		if err != nil {
			return err
		}
		*a = AuthorRefs{ref}
		return nil
	case yaml.SequenceNode:
		refs := make(AuthorRefs, 0, len(n.Content))
		for _, item := range n.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				refs = append(refs, AuthorRef{Key: item.Value})
			case yaml.MappingNode:
				ref, err := decodeInlineAuthor(item)
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			default:
				return fmt.Errorf("line %d: unsupported author entry", item.Line)
			}
		}
		*a = refs
		return nil
	default:
		return fmt.Errorf("line %d: authors must be a key, a list or an object", n.Line)
	}
}

func decodeInlineAuthor(n *yaml.Node) (AuthorRef, error) {
	var v struct {
		Key      string `yaml:"key"`
		Name     string `yaml:"name"`
		Title    string `yaml:"title"`
		URL      string `yaml:"url"`
		ImageURL string `yaml:"image_url"`
		Email    string `yaml:"email"`
	}
	if err := n.Decode(&v); err != nil {
		return AuthorRef{}, err
	}
	if v.Key != "" && v.Name == "" {
		// {key: x} references the authors file like a bare key.
		return AuthorRef{Key: v.Key}, nil
	}
	return AuthorRef{
		Key:      v.Key,
		Name:     v.Name,
		Title:    v.Title,
		URL:      v.URL,
		ImageURL: v.ImageURL,
		Email:    v.Email,
		Inline:   true,
	}, nil
}

// Tag is a front matter tag. Inline tags are not declared in the tags file.
type Tag struct {
	Label     string
	Permalink string
}

// TagList accepts a list of labels or {label, permalink} objects.
type TagList []Tag

func (t *TagList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: tags must be a list", n.Line)
	}
	tags := make(TagList, 0, len(n.Content))
	for _, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			tags = append(tags, Tag{Label: item.Value})
		case yaml.MappingNode:
			var v struct {
				Label     string `yaml:"label"`
				Permalink string `yaml:"permalink"`
			}
			if err := item.Decode(&v); err != nil {
				return err
			}
			tags = append(tags, Tag{Label: v.Label, Permalink: v.Permalink})
		default:
			return fmt.Errorf("line %d: unsupported tag entry", item.Line)
		}
	}
	*t = tags
	return nil
}

// Labels returns the tag labels in order.
func (t TagList) Labels() []string {
	out := make([]string, 0, len(t))
	for _, tag := range t {
		out = append(out, tag.Label)
	}
	return out
}
