package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// ExtractLinks parses a Markdown body (front matter already removed) and
// extracts link-like constructs. Code spans and code blocks are ignored.
func ExtractLinks(body []byte) []Link {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Reference-style links resolve to Link nodes with a Destination.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not in the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links
}

// RawHTML is an HTML fragment embedded in markdown.
type RawHTML struct {
	// Line is 1-based, relative to body.
	Line int
	HTML string
}

// ExtractRawHTML returns the HTML blocks and inline HTML of body in document
// order. HTML inside code spans and fences is not included.
func ExtractRawHTML(body []byte) []RawHTML {
	root := goldmark.New().Parser().Parse(text.NewReader(body))
	lineOf := func(offset int) int { return bytes.Count(body[:offset], []byte("\n")) + 1 }

	var out []RawHTML
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.HTMLBlock:
			lines := node.Lines()
			if lines.Len() == 0 {
				return gmast.WalkContinue, nil
			}
			var b bytes.Buffer
			for i := range lines.Len() {
				seg := lines.At(i)
				b.Write(seg.Value(body))
			}
			if node.HasClosure() {
				b.Write(node.ClosureLine.Value(body))
			}
			out = append(out, RawHTML{Line: lineOf(lines.At(0).Start), HTML: b.String()})
		case *gmast.RawHTML:
			if node.Segments.Len() == 0 {
				return gmast.WalkContinue, nil
			}
			var b bytes.Buffer
			for i := range node.Segments.Len() {
				seg := node.Segments.At(i)
				b.Write(seg.Value(body))
			}
			out = append(out, RawHTML{Line: lineOf(node.Segments.At(0).Start), HTML: b.String()})
		}
		return gmast.WalkContinue, nil
	})
	return out
}
