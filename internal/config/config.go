package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// DefaultConfigFile is the optional YAML overlay looked up in the site root.
const DefaultConfigFile = "site.yaml"

// Resolve builds the configuration from defaults and the environment only.
func Resolve(env Lookup) *SiteConfig {
	vars := ResolveEnv(env)
	cfg := Default(vars)
	cfg.deriveCustomFields(vars)
	return cfg
}

// Load resolves the configuration: defaults, then the YAML overlay at
// configPath (a missing file is not an error), then the environment.
// Explicitly set environment variables win over the overlay.
func Load(configPath string, env Lookup) (*SiteConfig, error) {
	vars := ResolveEnv(env)
	cfg := Default(vars)

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse site configuration").
					Fatal().WithContext("path", configPath).Build()
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read site configuration").
				Fatal().WithContext("path", configPath).Build()
		}
	}

	cfg.applyEnv(vars)
	cfg.deriveCustomFields(vars)
	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in site configuration for the given environment values.
func Default(vars EnvVars) *SiteConfig {
	docsRepoURL := vars.GitHubRepoDocsURL()
	return &SiteConfig{
		Title:            "Bryce Seefieldt | Portfolio Documentation",
		Tagline:          "Dev docs and resources for the development portfolio project",
		Favicon:          "img/favicon2.png",
		URL:              vars.SiteURL,
		BaseURL:          normalizeBaseURL(vars.BaseURL),
		OrganizationName: vars.GitHubOrg,
		ProjectName:      vars.GitHubRepoDocs,
		AppRepoName:      vars.GitHubRepoApp,
		OnBrokenLinks:    PolicyThrow,
		OnBrokenAnchors:  PolicyWarn,
		I18n: I18nConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Markdown: MarkdownConfig{Mermaid: true},
		Docs: DocsConfig{
			Dir:         "docs",
			RoutePrefix: "docs",
			SidebarID:   "docsSidebar",
		},
		Blog: BlogConfig{
			Enabled:         true,
			Dir:             "blog",
			RoutePrefix:     "blog",
			Title:           "Blog",
			Description:     "Blog",
			ShowReadingTime: true,
			PostsPerPage:    10,
			EditURL:         docsRepoURL + "/tree/main/",
			Feed: FeedConfig{
				Types: []string{"rss", "atom"},
				XSLT:  true,
				Limit: 20,
			},
			OnInlineTags:           PolicyWarn,
			OnInlineAuthors:        PolicyWarn,
			OnUntruncatedBlogPosts: PolicyWarn,
		},
		Theme: ThemeConfig{
			CustomCSS: "src/css/custom.css",
			Image:     "img/docusaurus-social-card.jpg",
			ColorMode: ColorModeConfig{
				DefaultMode:               "light",
				RespectPrefersColorScheme: true,
			},
			Mermaid: ThemePair{Light: "default", Dark: "dark"},
			Prism:   ThemePair{Light: "github", Dark: "dracula"},
		},
		Navbar: Navbar{
			Title: "Portfolio Documentation",
			Logo:  Logo{Alt: "Bryce Seefieldt Logo", Src: "img/seven30.png"},
			Items: []NavItem{
				{Type: "docSidebar", SidebarID: "docsSidebar", Position: "left", Label: "Docs"},
				{Href: docsRepoURL, Label: "GitHub", Position: "right"},
			},
		},
		Footer: Footer{
			Style: "dark",
			Links: []FooterColumn{
				{Title: "Docs", Items: []FooterLink{{Label: "Portfolio Documentation", To: "/docs"}}},
				{Title: "Community", Items: []FooterLink{
					{Label: "Stack Overflow", Href: "https://stackoverflow.com/questions/tagged/docusaurus"},
					{Label: "Discord", Href: "https://discordapp.com/invite/docusaurus"},
				}},
				{Title: "More", Items: []FooterLink{{Label: "GitHub", Href: vars.GitHubOrgURL() + "/"}}},
			},
			Copyright: "Copyright © {year} Bryce Seefieldt. Built with portfolio-docs.",
		},
		StaticDir: "static",
		OutDir:    "build",
	}
}

func (c *SiteConfig) applyEnv(vars EnvVars) {
	if vars.IsExplicit(EnvSiteURL) {
		c.URL = vars.SiteURL
	}
	if vars.IsExplicit(EnvBaseURL) {
		c.BaseURL = vars.BaseURL
	}
	if vars.IsExplicit(EnvGitHubOrg) {
		c.OrganizationName = vars.GitHubOrg
	}
	if vars.IsExplicit(EnvGitHubRepoDocs) {
		c.ProjectName = vars.GitHubRepoDocs
	}
	if vars.IsExplicit(EnvGitHubRepoApp) {
		c.AppRepoName = vars.GitHubRepoApp
	}
}

// deriveCustomFields recomputes the GitHub links from the final organization
// and repository names.
func (c *SiteConfig) deriveCustomFields(vars EnvVars) {
	derived := EnvVars{
		GitHubOrg:      c.OrganizationName,
		GitHubRepoDocs: c.ProjectName,
		GitHubRepoApp:  c.AppRepoName,
	}
	c.CustomFields.GitHubOrgURL = derived.GitHubOrgURL()
	c.CustomFields.GitHubRepoDocsURL = derived.GitHubRepoDocsURL()
	c.CustomFields.GitHubRepoAppURL = derived.GitHubRepoAppURL()
	if vars.IsExplicit(EnvPortfolioAppURL) || c.CustomFields.PortfolioAppURL == "" {
		c.CustomFields.PortfolioAppURL = vars.PortfolioAppURL
	}
}

// Validate checks the resolved configuration.
func (c *SiteConfig) Validate() error {
	if c.URL == "" {
		return errors.ConfigError("site url is required").WithContext("env", EnvSiteURL).Build()
	}
	if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		// Used verbatim; only feed and canonical links depend on it.
		slog.Warn("Site url is not an absolute http(s) URL", "url", c.URL)
	}
	if !strings.HasPrefix(c.BaseURL, "/") {
		return errors.ConfigError("base url must start with '/'").WithContext("base_url", c.BaseURL).Build()
	}
	policies := map[string]Policy{
		"on_broken_links":                c.OnBrokenLinks,
		"on_broken_anchors":              c.OnBrokenAnchors,
		"blog.on_inline_tags":            c.Blog.OnInlineTags,
		"blog.on_inline_authors":         c.Blog.OnInlineAuthors,
		"blog.on_untruncated_blog_posts": c.Blog.OnUntruncatedBlogPosts,
	}
	for field, p := range policies {
		if !p.valid() {
			return errors.ConfigError("invalid reporting policy").
				WithContext("field", field).WithContext("value", string(p)).Build()
		}
	}
	for _, t := range c.Blog.Feed.Types {
		if !slices.Contains([]string{"rss", "atom"}, t) {
			return errors.ConfigError("unsupported feed type").WithContext("type", t).Build()
		}
	}
	if c.Docs.Dir == "" || c.OutDir == "" {
		return errors.ConfigError("docs dir and out dir are required").Build()
	}
	if !slices.Contains(c.I18n.Locales, c.I18n.DefaultLocale) {
		return errors.ConfigError("default locale must be listed in locales").
			WithContext("default_locale", c.I18n.DefaultLocale).Build()
	}
	return nil
}

// Route joins path segments under the base URL, e.g. Route("docs", "intro")
// yields "/docs/intro/" for base "/". Routes always end with a slash.
func (c *SiteConfig) Route(segments ...string) string {
	parts := append([]string{c.BaseURL}, segments...)
	p := path.Join(parts...)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Link prefixes an internal "to" target with the base URL. External URLs pass through.
func (c *SiteConfig) Link(to string) string {
	if to == "" || strings.Contains(to, "://") || strings.HasPrefix(to, "mailto:") || strings.HasPrefix(to, "#") {
		return to
	}
	if strings.HasPrefix(to, c.BaseURL) && c.BaseURL != "/" {
		return to
	}
	return path.Join(c.BaseURL, to)
}

// AbsoluteURL returns the fully qualified URL for a site path.
func (c *SiteConfig) AbsoluteURL(p string) string {
	return strings.TrimSuffix(c.URL, "/") + p
}

// Asset returns the base-URL-prefixed path of a static file.
func (c *SiteConfig) Asset(rel string) string {
	if rel == "" || strings.Contains(rel, "://") {
		return rel
	}
	return path.Join(c.BaseURL, strings.TrimPrefix(rel, "/"))
}

// BlogEnabled reports whether blog pages and feeds are produced.
func (c *SiteConfig) BlogEnabled() bool { return c.Blog.Enabled }

// String renders the configuration as YAML.
func (c *SiteConfig) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(out)
}

// normalizeBaseURL adds the leading and trailing slashes a base URL needs.
func normalizeBaseURL(base string) string {
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}
