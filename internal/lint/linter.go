package lint

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryce-seefieldt/portfolio-docs/internal/content"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/frontmatter"
)

// SiteIndex holds site-wide facts the rules check sources against.
type SiteIndex struct {
	Root string
	// Authors and Tags are the keys of blog/authors.yml and blog/tags.yml.
	Authors        map[string]bool
	Tags           map[string]bool
	HasAuthorsFile bool
	HasTagsFile    bool
}

// Linter performs linting operations on markdown sources.
type Linter struct {
	cfg   *Config
	root  string
	rules []Rule
	site  *SiteIndex
}

// NewLinter creates a linter for the site at root.
func NewLinter(root string, cfg *Config) (*Linter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve site root").Build()
	}
	site := &SiteIndex{Root: abs}
	blogDir := filepath.Join(abs, filepath.FromSlash(cfg.BlogDir))
	if site.Authors, site.HasAuthorsFile, err = yamlKeys(filepath.Join(blogDir, content.AuthorsFile)); err != nil {
		return nil, err
	}
	if site.Tags, site.HasTagsFile, err = yamlKeys(filepath.Join(blogDir, content.TagsFile)); err != nil {
		return nil, err
	}
	return &Linter{cfg: cfg, root: abs, rules: DefaultRules(), site: site}, nil
}

// LintPath lints all markdown sources in the given path (file or directory).
func (l *Linter) LintPath(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot lint path").WithContext("path", path).Build()
	}

	result := &Result{Issues: []Issue{}}
	if info.IsDir() {
		err = l.lintDirectory(ctx, path, result)
	} else {
		result.FilesTotal = 1
		err = l.lintFile(path, result)
	}
	sortIssues(result.Issues)
	return result, err
}

// LintFiles lints a specific list of files. Ignored and non-markdown files are skipped.
func (l *Linter) LintFiles(ctx context.Context, files []string) (*Result, error) {
	result := &Result{Issues: []Issue{}}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !IsDocFile(file) || l.cfg.Ignored(l.rel(file)) {
			continue
		}
		result.FilesTotal++
		if err := l.lintFile(file, result); err != nil {
			return result, err
		}
	}
	sortIssues(result.Issues)
	return result, nil
}

// lintDirectory recursively lints all markdown sources in a directory.
func (l *Linter) lintDirectory(ctx context.Context, dirPath string, result *Result) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		rel := l.rel(path)
		if d.IsDir() {
			if path != dirPath && (strings.HasPrefix(name, ".") || l.cfg.Ignored(rel)) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || !IsDocFile(path) || l.cfg.Ignored(rel) {
			return nil
		}
		result.FilesTotal++
		return l.lintFile(path, result)
	})
}

// lintFile applies all enabled rules to a single file.
func (l *Linter) lintFile(filePath string, result *Result) error {
	f, err := l.load(filePath)
	if err != nil {
		return err
	}
	for _, rule := range l.rules {
		level := l.cfg.Level(rule)
		if level == LevelOff {
			continue
		}
		for _, issue := range rule.Check(f, l.site) {
			issue.Severity = level.severity()
			issue.Rule = rule.Name()
			issue.FilePath = f.Rel
			if l.cfg.Quiet && issue.Severity != SeverityError {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}
	return nil
}

func (l *Linter) load(filePath string) (*File, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs) //nolint:gosec // reading sources by path is the linter's job
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").WithContext("path", filePath).Build()
	}
	rel := l.rel(abs)
	f := &File{
		Path:     abs,
		Rel:      rel,
		Content:  data,
		Blog:     strings.HasPrefix(rel, strings.TrimSuffix(l.cfg.BlogDir, "/")+"/"),
		BodyLine: 1,
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		f.ParseErr = err
		return f, nil
	}
	f.Doc = doc
	if prefix := len(data) - len(doc.Body); prefix > 0 {
		f.BodyLine = bytes.Count(data[:prefix], []byte("\n")) + 1
	}
	return f, nil
}

// rel returns p relative to the site root, or p itself when outside it.
func (l *Linter) rel(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(l.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// yamlKeys returns the top-level keys of a YAML mapping file.
func yamlKeys(p string) (map[string]bool, bool, error) {
	data, err := os.ReadFile(p) //nolint:gosec // site metadata file
	if os.IsNotExist(err) {
		return map[string]bool{}, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryFileSystem, "failed to read file").WithContext("path", p).Build()
	}
	entries := map[string]any{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryContent, "invalid YAML").WithContext("path", p).Build()
	}
	keys := make(map[string]bool, len(entries))
	for k := range entries {
		keys[k] = true
	}
	return keys, true, nil
}
