package lint

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/markdown"
)

// DefaultRules returns every rule in reporting order.
func DefaultRules() []Rule {
	return []Rule{
		&FrontmatterValidRule{},
		&TitlePresentRule{},
		&RelativeLinkTargetRule{},
		&NoInlineTagsRule{},
		&NoInlineAuthorsRule{},
		&BlogTruncatedRule{},
		&NoRawScriptRule{},
	}
}

// FrontmatterValidRule requires parseable front matter, a usable blog date
// and blog authors declared in authors.yml.
type FrontmatterValidRule struct{}

func (r *FrontmatterValidRule) Name() string        { return "frontmatter-valid" }
func (r *FrontmatterValidRule) DefaultLevel() Level { return LevelError }

func (r *FrontmatterValidRule) Check(f *File, site *SiteIndex) []Issue {
	if f.ParseErr != nil {
		return []Issue{{
			Message:     fmt.Sprintf("Invalid front matter: %v", f.ParseErr),
			Explanation: "Front matter must be valid YAML between --- delimiters at the top of the file.",
			Fix:         "Fix the YAML syntax or add the closing --- delimiter",
			Line:        1,
		}}
	}
	if !f.Blog {
		return nil
	}
	var issues []Issue
	fm := f.Doc.FrontMatter
	if fm.Date != "" {
		if _, err := content.ParseDate(fm.Date); err != nil {
			issues = append(issues, Issue{
				Message: fmt.Sprintf("Unrecognized date %q", fm.Date),
				Fix:     "Use YYYY-MM-DD or an RFC 3339 timestamp",
				Line:    lineOf(f.Content, "date:"),
			})
		}
	}
	for _, ref := range fm.Authors {
		if ref.Inline || site.Authors[ref.Key] {
			continue
		}
		issues = append(issues, Issue{
			Message:     fmt.Sprintf("Unknown author %q", ref.Key),
			Explanation: "Author keys must be declared in " + content.AuthorsFile + "; the build fails otherwise.",
			Fix:         fmt.Sprintf("Add %q to %s", ref.Key, content.AuthorsFile),
			Line:        lineOf(f.Content, "authors:"),
		})
	}
	return issues
}

// TitlePresentRule warns when a page has neither a front matter title nor a leading H1.
type TitlePresentRule struct{}

func (r *TitlePresentRule) Name() string        { return "title-present" }
func (r *TitlePresentRule) DefaultLevel() Level { return LevelWarn }

func (r *TitlePresentRule) Check(f *File, _ *SiteIndex) []Issue {
	if f.Doc == nil || f.Doc.FrontMatter.Title != "" || startsWithH1(f.Doc.Body) {
		return nil
	}
	return []Issue{{
		Message:     "Missing title",
		Explanation: "Without a title the page falls back to its file name in the sidebar and browser tab.",
		Fix:         "Add 'title:' to the front matter or start the body with '# Title'",
		Line:        1,
	}}
}

// RelativeLinkTargetRule requires relative links to markdown files to resolve.
type RelativeLinkTargetRule struct{}

func (r *RelativeLinkTargetRule) Name() string        { return "relative-link-target" }
func (r *RelativeLinkTargetRule) DefaultLevel() Level { return LevelError }

func (r *RelativeLinkTargetRule) Check(f *File, _ *SiteIndex) []Issue {
	if f.Doc == nil {
		return nil
	}
	var issues []Issue
	seen := map[string]bool{}
	for _, link := range markdown.ExtractLinks(f.Doc.Body) {
		target, ok := relativeMarkdownTarget(link.Destination)
		if !ok || seen[link.Destination] {
			continue
		}
		seen[link.Destination] = true
		abs := filepath.Join(filepath.Dir(f.Path), filepath.FromSlash(target))
		if _, err := os.Stat(abs); err == nil {
			continue
		}
		issues = append(issues, Issue{
			Message:     fmt.Sprintf("Broken relative link: %s", link.Destination),
			Explanation: "The linked markdown file does not exist. Broken internal links fail the build.",
			Fix:         "Correct the path or remove the link",
			Line:        bodyLine(f, lineOf(f.Doc.Body, link.Destination)),
		})
	}
	return issues
}

// relativeMarkdownTarget returns the file part of dest when it is a relative
// link to a markdown source.
func relativeMarkdownTarget(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		p = u.Path
	}
	if !IsDocFile(p) {
		return "", false
	}
	return path.Clean(p), true
}

// NoInlineTagsRule flags blog tags that tags.yml does not declare.
type NoInlineTagsRule struct{}

func (r *NoInlineTagsRule) Name() string        { return "no-inline-tags" }
func (r *NoInlineTagsRule) DefaultLevel() Level { return LevelWarn }

func (r *NoInlineTagsRule) Check(f *File, site *SiteIndex) []Issue {
	if f.Doc == nil || !f.Blog || !site.HasTagsFile {
		return nil
	}
	var issues []Issue
	for _, tag := range f.Doc.FrontMatter.Tags {
		if site.Tags[tag.Label] {
			continue
		}
		issues = append(issues, Issue{
			Message: fmt.Sprintf("Tag %q is not declared in %s", tag.Label, content.TagsFile),
			Fix:     fmt.Sprintf("Declare %q in %s or use an existing tag", tag.Label, content.TagsFile),
			Line:    lineOf(f.Content, "tags:"),
		})
	}
	return issues
}

// NoInlineAuthorsRule flags authors declared inside a post instead of authors.yml.
type NoInlineAuthorsRule struct{}

func (r *NoInlineAuthorsRule) Name() string        { return "no-inline-authors" }
func (r *NoInlineAuthorsRule) DefaultLevel() Level { return LevelWarn }

func (r *NoInlineAuthorsRule) Check(f *File, _ *SiteIndex) []Issue {
	if f.Doc == nil || !f.Blog {
		return nil
	}
	var issues []Issue
	for _, ref := range f.Doc.FrontMatter.Authors {
		if !ref.Inline {
			continue
		}
		issues = append(issues, Issue{
			Message: fmt.Sprintf("Inline author %q", ref.Name),
			Fix:     "Move the author to " + content.AuthorsFile + " and reference it by key",
			Line:    lineOf(f.Content, "authors:"),
		})
	}
	return issues
}

// BlogTruncatedRule warns when a blog post has no truncate marker.
type BlogTruncatedRule struct{}

func (r *BlogTruncatedRule) Name() string        { return "blog-truncated" }
func (r *BlogTruncatedRule) DefaultLevel() Level { return LevelWarn }

func (r *BlogTruncatedRule) Check(f *File, _ *SiteIndex) []Issue {
	if f.Doc == nil || !f.Blog || markdown.HasTruncateMarker(f.Doc.Body) {
		return nil
	}
	return []Issue{{
		Message:     "Blog post is not truncated",
		Explanation: "Without a truncate marker the full post is shown on the blog list pages.",
		Fix:         "Add <!-- truncate --> after the introduction",
	}}
}

// NoRawScriptRule rejects <script> elements embedded in markdown.
type NoRawScriptRule struct{}

func (r *NoRawScriptRule) Name() string        { return "no-raw-script" }
func (r *NoRawScriptRule) DefaultLevel() Level { return LevelError }

func (r *NoRawScriptRule) Check(f *File, _ *SiteIndex) []Issue {
	if f.Doc == nil {
		return nil
	}
	var issues []Issue
	for _, frag := range markdown.ExtractRawHTML(f.Doc.Body) {
		if !strings.Contains(strings.ToLower(frag.HTML), "<script") {
			continue
		}
		issues = append(issues, Issue{
			Message:     "Raw <script> element in markdown",
			Explanation: "Markdown is rendered with raw HTML enabled, so scripts run on every visit.",
			Fix:         "Remove the script or move it into a theme asset",
			Line:        bodyLine(f, frag.Line),
		})
	}
	return issues
}

func startsWithH1(body []byte) bool {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, "# ")
	}
	return false
}

// lineOf returns the 1-based line of the first occurrence of needle, or 0.
func lineOf(data []byte, needle string) int {
	i := bytes.Index(data, []byte(needle))
	if i < 0 {
		return 0
	}
	return bytes.Count(data[:i], []byte("\n")) + 1
}

// bodyLine converts a line within the body to a line within the file.
func bodyLine(f *File, line int) int {
	if line == 0 {
		return 0
	}
	return f.BodyLine - 1 + line
}
