package lint

import (
	"path/filepath"
	"strings"

	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
)

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block builds.
	SeverityWarning
	// SeverityError indicates issues that will fail the build or leak unsafe markup.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath    string   // Path relative to the site root
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "title-present")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix
	Line        int      // Line number (0 if file-level issue)
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int // Total files scanned
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) }

func (r *Result) count(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}

// File is a markdown source prepared for the rules.
type File struct {
	// Path is the absolute path.
	Path string
	// Rel is the slash-separated path relative to the site root.
	Rel     string
	Content []byte
	// Doc is nil when the front matter could not be parsed; ParseErr says why.
	Doc      *frontmatter.Document
	ParseErr error
	// Blog is true for sources under the blog directory.
	Blog bool
	// BodyLine is the 1-based line of Content where the markdown body starts.
	BodyLine int
}

// Rule defines a linting rule applied to markdown sources.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// DefaultLevel is used when lint.yaml does not configure the rule.
	DefaultLevel() Level

	// Check validates a file and returns any issues found. Issues carry the
	// rule's name but no severity; the linter assigns it from the level.
	Check(f *File, site *SiteIndex) []Issue
}

// IsDocFile returns true if the file is a markdown source.
func IsDocFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".mdx" || ext == ".markdown"
}
