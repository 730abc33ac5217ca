package lint

import (
	"os"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// DefaultConfigFile is looked up in the site root when --config is not given.
const DefaultConfigFile = "lint.yaml"

// Level is the configured reaction to a rule's findings.
type Level string

const (
	LevelOff   Level = "off"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// severity maps an enabled level to the issue severity.
func (l Level) severity() Severity {
	if l == LevelError {
		return SeverityError
	}
	return SeverityWarning
}

// DefaultIgnores are always applied, before any configured patterns.
var DefaultIgnores = []string{"build/**", "node_modules/**", ".cache/**", "*.min.js"}

// Config contains configuration for the linter.
type Config struct {
	// Ignores are doublestar globs matched against slash-separated paths
	// relative to the site root. Patterns without a slash also match base names.
	Ignores []string `yaml:"ignores"`

	// Rules overrides rule levels by rule name.
	Rules map[string]Level `yaml:"rules"`

	// DocsDir and BlogDir locate content relative to the site root.
	DocsDir string `yaml:"docs_dir"`
	BlogDir string `yaml:"blog_dir"`

	// Quiet suppresses warnings, only showing errors.
	Quiet bool `yaml:"-"`
}

// DefaultConfig returns the configuration used when no lint.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		Ignores: slices.Clone(DefaultIgnores),
		Rules:   map[string]Level{},
		DocsDir: "docs",
		BlogDir: "blog",
	}
}

// LoadConfig reads a lint.yaml. A missing file yields the defaults.
// Configured ignores extend the default ones.
func LoadConfig(p string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(p) //nolint:gosec // user-selected config path
	switch {
	case os.IsNotExist(err):
		return cfg, nil
	case err != nil:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read lint configuration").
			WithContext("path", p).Build()
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse lint configuration").
			Fatal().WithContext("path", p).Build()
	}
	cfg.Ignores = append(cfg.Ignores, file.Ignores...)
	for name, level := range file.Rules {
		cfg.Rules[name] = level
	}
	if file.DocsDir != "" {
		cfg.DocsDir = file.DocsDir
	}
	if file.BlogDir != "" {
		cfg.BlogDir = file.BlogDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks levels, rule names and glob syntax.
func (c *Config) Validate() error {
	known := map[string]bool{}
	for _, r := range DefaultRules() {
		known[r.Name()] = true
	}
	for name, level := range c.Rules {
		if !known[name] {
			return errors.ValidationError("unknown lint rule").WithContext("rule", name).Build()
		}
		switch level {
		case LevelOff, LevelWarn, LevelError:
		default:
			return errors.ValidationError("invalid lint level (want off, warn or error)").
				WithContext("rule", name).WithContext("level", string(level)).Build()
		}
	}
	for _, pattern := range c.Ignores {
		if !doublestar.ValidatePattern(pattern) {
			return errors.ValidationError("invalid ignore pattern").WithContext("pattern", pattern).Build()
		}
	}
	return nil
}

// Level returns the effective level of a rule.
func (c *Config) Level(r Rule) Level {
	if l, ok := c.Rules[r.Name()]; ok {
		return l
	}
	return r.DefaultLevel()
}

// Ignored reports whether rel (slash-separated, relative to the site root)
// matches an ignore pattern.
func (c *Config) Ignored(rel string) bool {
	for _, pattern := range c.Ignores {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}
