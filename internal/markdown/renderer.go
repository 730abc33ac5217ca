// Package markdown renders documentation sources to HTML and provides the
// link analysis used by the linter.
package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// WordsPerMinute is the reading speed used for reading-time estimates.
const WordsPerMinute = 200

var truncateMarker = regexp.MustCompile(`<!--\s*truncate\s*-->|\{/\*\s*truncate\s*\*/\}`)

// Options controls rendering features.
type Options struct {
	// Mermaid renders ```mermaid fences as client-side diagrams instead of code.
	Mermaid bool
}

// LinkResolver maps a markdown link destination to its published URL.
// It returns false when the destination should be left untouched.
type LinkResolver func(dest string) (string, bool)

// Heading is a section heading with its anchor id.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Result is the rendered form of a markdown body.
type Result struct {
	HTML template.HTML
	// Excerpt holds the content above the truncate marker; empty when Truncated is false.
	Excerpt   template.HTML
	Truncated bool
	// Title is the text of a leading H1, if the body starts with one.
	Title       string
	Headings    []Heading
	ReadingTime int // minutes, at least 1
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

var linkResolverKey = parser.NewContextKey()

// NewRenderer builds a goldmark pipeline: GFM, footnotes, heading ids,
// chroma highlighting with CSS classes, optional mermaid blocks.
func NewRenderer(opts Options) *Renderer {
	transformers := []util.PrioritizedValue{util.Prioritized(linkTransformer{}, 200)}
	var nodeRenderers []util.PrioritizedValue
	if opts.Mermaid {
		transformers = append(transformers, util.Prioritized(mermaidTransformer{}, 100))
		nodeRenderers = append(nodeRenderers, util.Prioritized(mermaidRenderer{}, 100))
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithHeadingAttribute(),
			parser.WithASTTransformers(transformers...),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(nodeRenderers...),
		),
	)
	return &Renderer{md: md}
}

// Render converts body (front matter removed). resolve may be nil.
func (r *Renderer) Render(body []byte, resolve LinkResolver) (*Result, error) {
	src := expandAdmonitions(body)

	res := &Result{ReadingTime: readingTime(body)}
	if loc := truncateMarker.FindIndex(src); loc != nil {
		excerpt, _, err := r.convert(src[:loc[0]], resolve)
		if err != nil {
			return nil, fmt.Errorf("render excerpt: %w", err)
		}
		res.Excerpt = excerpt
		res.Truncated = true
		src = truncateMarker.ReplaceAll(src, nil)
	}

	out, doc, err := r.convert(src, resolve)
	if err != nil {
		return nil, err
	}
	res.HTML = out

	if h, ok := doc.FirstChild().(*ast.Heading); ok && h.Level == 1 {
		res.Title = nodeText(h, src)
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		if h.Level == 2 || h.Level == 3 {
			res.Headings = append(res.Headings, Heading{Level: h.Level, Text: nodeText(h, src), ID: headingID(h)})
		}
		return ast.WalkSkipChildren, nil
	})
	return res, nil
}

func (r *Renderer) convert(src []byte, resolve LinkResolver) (template.HTML, ast.Node, error) {
	pc := parser.NewContext()
	if resolve != nil {
		pc.Set(linkResolverKey, resolve)
	}
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))
	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", nil, fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), doc, nil //nolint:gosec // goldmark output
}

// linkTransformer rewrites link destinations through the LinkResolver held
// in the parser context.
type linkTransformer struct{}

func (linkTransformer) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	resolve, ok := pc.Get(linkResolverKey).(LinkResolver)
	if !ok || resolve == nil {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			if dest, ok := resolve(string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		case *ast.Image:
			if dest, ok := resolve(string(node.Destination)); ok {
				node.Destination = []byte(dest)
			}
		}
		return ast.WalkContinue, nil
	})
}

func headingID(h *ast.Heading) string {
	if v, ok := h.AttributeString("id"); ok {
		if b, ok := v.([]byte); ok {
			return string(b)
		}
	}
	return ""
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return strings.TrimSpace(b.String())
}

// HasTruncateMarker reports whether body contains a truncate marker.
func HasTruncateMarker(body []byte) bool {
	return truncateMarker.Match(body)
}

func readingTime(body []byte) int {
	words := len(strings.Fields(string(truncateMarker.ReplaceAll(body, nil))))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
