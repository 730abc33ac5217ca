package config

// SiteConfig is the declarative description of the documentation site.
// It is resolved once per build and treated as read-only afterwards.
type SiteConfig struct {
	Title   string `yaml:"title"`
	Tagline string `yaml:"tagline"`
	Favicon string `yaml:"favicon"`

	// URL is the production origin; BaseURL the path prefix the site is served under.
	URL     string `yaml:"url"`
	BaseURL string `yaml:"base_url"`

	OrganizationName string `yaml:"organization_name"`
	ProjectName      string `yaml:"project_name"`
	AppRepoName      string `yaml:"app_repo_name"`

	OnBrokenLinks   Policy `yaml:"on_broken_links"`
	OnBrokenAnchors Policy `yaml:"on_broken_anchors"`

	CustomFields CustomFields   `yaml:"custom_fields"`
	I18n         I18nConfig     `yaml:"i18n"`
	Markdown     MarkdownConfig `yaml:"markdown"`
	Docs         DocsConfig     `yaml:"docs"`
	Blog         BlogConfig     `yaml:"blog"`
	Theme        ThemeConfig    `yaml:"theme"`
	Navbar       Navbar         `yaml:"navbar"`
	Footer       Footer         `yaml:"footer"`

	StaticDir string `yaml:"static_dir"`
	OutDir    string `yaml:"out_dir"`
}

// CustomFields carries the cross-repository links derived from the environment.
type CustomFields struct {
	PortfolioAppURL   string `yaml:"portfolio_app_url"`
	GitHubOrgURL      string `yaml:"github_org_url"`
	GitHubRepoDocsURL string `yaml:"github_repo_docs_url"`
	GitHubRepoAppURL  string `yaml:"github_repo_app_url"`
}

type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
}

type MarkdownConfig struct {
	Mermaid bool `yaml:"mermaid"`
}

// DocsConfig controls the docs section.
type DocsConfig struct {
	Dir                  string `yaml:"dir"`
	RoutePrefix          string `yaml:"route_prefix"`
	SidebarID            string `yaml:"sidebar_id"`
	ShowLastUpdateTime   bool   `yaml:"show_last_update_time"`
	ShowLastUpdateAuthor bool   `yaml:"show_last_update_author"`
	EditURL              string `yaml:"edit_url,omitempty"`
}

// BlogConfig controls the blog section and its authoring checks.
type BlogConfig struct {
	Enabled         bool       `yaml:"enabled"`
	Dir             string     `yaml:"dir"`
	RoutePrefix     string     `yaml:"route_prefix"`
	Title           string     `yaml:"title"`
	Description     string     `yaml:"description"`
	ShowReadingTime bool       `yaml:"show_reading_time"`
	PostsPerPage    int        `yaml:"posts_per_page"`
	EditURL         string     `yaml:"edit_url"`
	Feed            FeedConfig `yaml:"feed"`

	OnInlineTags           Policy `yaml:"on_inline_tags"`
	OnInlineAuthors        Policy `yaml:"on_inline_authors"`
	OnUntruncatedBlogPosts Policy `yaml:"on_untruncated_blog_posts"`
}

// FeedConfig selects syndication formats.
type FeedConfig struct {
	Types []string `yaml:"types"` // rss, atom
	XSLT  bool     `yaml:"xslt"`
	Limit int      `yaml:"limit"`
}

type ThemeConfig struct {
	CustomCSS string          `yaml:"custom_css"`
	Image     string          `yaml:"image"`
	ColorMode ColorModeConfig `yaml:"color_mode"`
	Mermaid   ThemePair       `yaml:"mermaid"`
	Prism     ThemePair       `yaml:"prism"`
}

type ColorModeConfig struct {
	DefaultMode               string `yaml:"default_mode"`
	RespectPrefersColorScheme bool   `yaml:"respect_prefers_color_scheme"`
}

// ThemePair names a light and a dark variant of a theme.
type ThemePair struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

type Navbar struct {
	Title string    `yaml:"title"`
	Logo  Logo      `yaml:"logo"`
	Items []NavItem `yaml:"items"`
}

type Logo struct {
	Alt string `yaml:"alt"`
	Src string `yaml:"src"`
}

// NavItem is a navbar entry. Type "docSidebar" links to the first doc of the
// sidebar; otherwise exactly one of To (internal) or Href (external) is set.
type NavItem struct {
	Type      string `yaml:"type,omitempty"`
	SidebarID string `yaml:"sidebar_id,omitempty"`
	Label     string `yaml:"label"`
	Position  string `yaml:"position"`
	To        string `yaml:"to,omitempty"`
	Href      string `yaml:"href,omitempty"`
}

type Footer struct {
	Style string         `yaml:"style"`
	Links []FooterColumn `yaml:"links"`
	// Copyright may contain {year}, replaced with the build year.
	Copyright string `yaml:"copyright"`
}

type FooterColumn struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
}

type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}
