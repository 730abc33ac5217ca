package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL        string // The URL or path
	Text       string // Link text/title
	Tag        string // HTML tag (a, img, script, link, etc.)
	Attribute  string // Attribute containing the link (href, src, etc.)
	IsInternal bool   // True if link is internal to the site
	Line       int    // Approximate line number in HTML
}

// IsNavigation reports whether the link is a hyperlink rather than an embedded resource.
func (l *Link) IsNavigation() bool { return l.Tag == "a" || l.Tag == "area" }

// Document is a parsed page: its outgoing links and the anchor ids it defines.
type Document struct {
	Links []*Link
	IDs   map[string]struct{}
}

// ExtractLinks extracts all links from an HTML reader. siteURL decides which
// absolute URLs count as internal.
func ExtractLinks(r io.Reader, siteURL string) ([]*Link, error) {
	doc, err := Parse(r, siteURL)
	if err != nil {
		return nil, err
	}
	return doc.Links, nil
}

// Parse extracts links and element ids from an HTML reader.
func Parse(r io.Reader, siteURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").WithSeverity(errors.SeverityError).Build()
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid site URL").WithSeverity(errors.SeverityError).WithContext("site_url", siteURL).Build()
	}

	out := &Document{IDs: map[string]struct{}{}}
	var lineNum int

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			lineNum++
			extractElementLinks(n, &out.Links, base, lineNum)
			if id := getAttr(n, "id"); id != "" {
				out.IDs[id] = struct{}{}
			}
			if n.Data == "a" {
				if name := getAttr(n, "name"); name != "" {
					out.IDs[name] = struct{}{}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(root)
	return out, nil
}

// linkAttrs maps elements to the attribute carrying their link.
var linkAttrs = map[string]string{
	"a":      "href",
	"area":   "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
	"iframe": "src",
}

// extractElementLinks extracts links from a single HTML element.
func extractElementLinks(n *html.Node, links *[]*Link, base *url.URL, lineNum int) {
	attr, ok := linkAttrs[n.Data]
	if !ok {
		return
	}
	val := getAttr(n, attr)
	if val == "" {
		return
	}

	var text string
	switch n.Data {
	case "a", "area":
		text = extractText(n)
	case "img":
		text = getAttr(n, "alt")
	case "link":
		text = getAttr(n, "rel")
	}
	*links = append(*links, &Link{
		URL:        val,
		Text:       text,
		Tag:        n.Data,
		Attribute:  attr,
		IsInternal: isInternalLink(val, base),
		Line:       lineNum,
	})
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}

// isInternalLink determines if a URL is internal to the site.
func isInternalLink(linkURL string, siteURL *url.URL) bool {
	if hasSpecialScheme(linkURL) || strings.HasPrefix(linkURL, "#") {
		return true
	}

	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}

	// Scheme-relative and absolute URLs are internal only on the site's own host.
	if u.Host == "" {
		return u.Scheme == ""
	}
	return siteURL != nil && siteURL.Host != "" && strings.EqualFold(u.Host, siteURL.Host)
}

func hasSpecialScheme(linkURL string) bool {
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(linkURL, p) {
			return true
		}
	}
	return false
}

// ShouldVerifyLink determines if a link points at something the build produced.
func ShouldVerifyLink(link *Link) bool {
	if link.URL == "" || !link.IsInternal {
		return false
	}
	return !hasSpecialScheme(link.URL)
}
