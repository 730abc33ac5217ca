package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

func TestResolve_UnsetEnvironmentFallsBackToDefaults(t *testing.T) {
	cfg := Resolve(MapLookup(nil))

	require.Equal(t, "bryce-seefieldt", cfg.OrganizationName)
	require.Equal(t, "portfolio-docs", cfg.ProjectName)
	require.Equal(t, "portfolio-app", cfg.AppRepoName)
	require.Equal(t, DefaultSiteURL, cfg.URL)
	require.Equal(t, "/", cfg.BaseURL)
	require.Equal(t, "https://github.com/bryce-seefieldt", cfg.CustomFields.GitHubOrgURL)
	require.Equal(t, "https://github.com/bryce-seefieldt/portfolio-docs", cfg.CustomFields.GitHubRepoDocsURL)
	require.Equal(t, "https://github.com/bryce-seefieldt/portfolio-app", cfg.CustomFields.GitHubRepoAppURL)
	require.Equal(t, DefaultPortfolioAppURL, cfg.CustomFields.PortfolioAppURL)
	require.Equal(t, "https://github.com/bryce-seefieldt/portfolio-docs/tree/main/", cfg.Blog.EditURL)
}

func TestResolve_EmptyValuesCountAsUnset(t *testing.T) {
	cfg := Resolve(MapLookup(map[string]string{
		EnvGitHubOrg:      "",
		EnvGitHubRepoDocs: "",
		EnvGitHubRepoApp:  "",
	}))

	require.Equal(t, "https://github.com/bryce-seefieldt", cfg.CustomFields.GitHubOrgURL)
	require.Equal(t, "https://github.com/bryce-seefieldt/portfolio-docs", cfg.CustomFields.GitHubRepoDocsURL)
	require.Equal(t, "https://github.com/bryce-seefieldt/portfolio-app", cfg.CustomFields.GitHubRepoAppURL)
}

func TestResolve_SiteURLUsedVerbatim(t *testing.T) {
	for _, v := range []string{
		"https://docs.example.com",
		"https://docs.example.com/",
		"http://localhost:3000/sub/path?x=1",
		"not-even-a-url",
	} {
		cfg := Resolve(MapLookup(map[string]string{EnvSiteURL: v}))
		require.Equal(t, v, cfg.URL)
	}
}

func TestResolve_GitHubOverridesFlowIntoDerivedLinks(t *testing.T) {
	cfg := Resolve(MapLookup(map[string]string{
		EnvGitHubOrg:       "acme",
		EnvGitHubRepoDocs:  "handbook",
		EnvGitHubRepoApp:   "webapp",
		EnvPortfolioAppURL: "https://app.acme.dev",
	}))

	require.Equal(t, "https://github.com/acme", cfg.CustomFields.GitHubOrgURL)
	require.Equal(t, "https://github.com/acme/handbook", cfg.CustomFields.GitHubRepoDocsURL)
	require.Equal(t, "https://github.com/acme/webapp", cfg.CustomFields.GitHubRepoAppURL)
	require.Equal(t, "https://app.acme.dev", cfg.CustomFields.PortfolioAppURL)
	require.Equal(t, "https://github.com/acme/handbook", cfg.Navbar.Items[1].Href)
	require.Equal(t, "https://github.com/acme/", cfg.Footer.Links[2].Items[0].Href)
}

func TestLoad_SiteURLUsedVerbatim(t *testing.T) {
	for _, v := range []string{
		"http://[::1",
		"docs site:8080",
		" https://x.example",
		"not-even-a-url",
		"https://docs.example.com/",
	} {
		cfg, err := Load("", MapLookup(map[string]string{EnvSiteURL: v}))
		require.NoError(t, err, v)
		require.Equal(t, v, cfg.URL)
	}
}

func TestLoad_BaseURLGetsSlashes(t *testing.T) {
	tests := map[string]string{
		"portfolio":   "/portfolio/",
		"/portfolio":  "/portfolio/",
		"portfolio/":  "/portfolio/",
		"/portfolio/": "/portfolio/",
		"/":           "/",
	}
	for in, want := range tests {
		cfg, err := Load("", MapLookup(map[string]string{EnvBaseURL: in}))
		require.NoError(t, err, in)
		require.Equal(t, want, cfg.BaseURL, in)
	}

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: docs\n"), 0o600))
	cfg, err := Load(path, MapLookup(nil))
	require.NoError(t, err)
	require.Equal(t, "/docs/", cfg.BaseURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "site.yaml"), MapLookup(nil))
	require.NoError(t, err)
	require.Equal(t, PolicyThrow, cfg.OnBrokenLinks)
	require.Equal(t, PolicyWarn, cfg.OnBrokenAnchors)
	require.Equal(t, []string{"rss", "atom"}, cfg.Blog.Feed.Types)
}

func TestLoad_OverlayThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title: Overlay Title
url: https://overlay.example.com
base_url: /portfolio
organization_name: overlay-org
on_broken_anchors: ignore
`), 0o600))

	cfg, err := Load(path, MapLookup(map[string]string{EnvSiteURL: "https://env.example.com"}))
	require.NoError(t, err)

	require.Equal(t, "Overlay Title", cfg.Title)
	require.Equal(t, "https://env.example.com", cfg.URL, "explicit env wins over overlay")
	require.Equal(t, "/portfolio/", cfg.BaseURL)
	require.Equal(t, "https://github.com/overlay-org", cfg.CustomFields.GitHubOrgURL)
	require.Equal(t, PolicyIgnore, cfg.OnBrokenAnchors)
	require.Equal(t, "Portfolio Documentation", cfg.Navbar.Title, "unspecified fields keep defaults")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad policy", yaml: "on_broken_links: explode\n"},
		{name: "bad feed type", yaml: "blog:\n  feed:\n    types: [json]\n"},
		{name: "empty site url", yaml: "url: \"\"\n"},
		{name: "unknown locale", yaml: "i18n:\n  default_locale: fr\n  locales: [en]\n"},
		{name: "malformed yaml", yaml: "title: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "site.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, err := Load(path, MapLookup(nil))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestSiteConfig_Routes(t *testing.T) {
	cfg := Resolve(MapLookup(map[string]string{EnvBaseURL: "/portfolio/"}))

	require.Equal(t, "/portfolio/docs/intro/", cfg.Route("docs", "intro"))
	require.Equal(t, "/portfolio/", cfg.Route())
	require.Equal(t, "/portfolio/docs", cfg.Link("/docs"))
	require.Equal(t, "/portfolio/docs", cfg.Link("/portfolio/docs"))
	require.Equal(t, "https://example.com", cfg.Link("https://example.com"))
	require.Equal(t, "/portfolio/img/logo.png", cfg.Asset("img/logo.png"))
	require.Equal(t, DefaultSiteURL+"/portfolio/blog/", cfg.AbsoluteURL(cfg.Route("blog")))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" WARN ")
	require.NoError(t, err)
	require.Equal(t, PolicyWarn, p)
	require.False(t, p.Fails())
	require.True(t, PolicyThrow.Fails())

	_, err = ParsePolicy("panic")
	require.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORTFOLIO_DOCS_TEST_A=from-file\nPORTFOLIO_DOCS_TEST_B=file-b\n"), 0o600))
	t.Setenv("PORTFOLIO_DOCS_TEST_A", "from-env")
	t.Setenv("PORTFOLIO_DOCS_TEST_B", "")
	require.NoError(t, os.Unsetenv("PORTFOLIO_DOCS_TEST_B"))

	loaded := LoadDotEnv(envFile, filepath.Join(dir, ".env.missing"))

	require.Equal(t, []string{envFile}, loaded)
	require.Equal(t, "from-env", os.Getenv("PORTFOLIO_DOCS_TEST_A"))
	require.Equal(t, "file-b", os.Getenv("PORTFOLIO_DOCS_TEST_B"))
}

func TestLoadDotEnv_LocalFileWins(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		want   string
		loaded int
	}{
		{
			name:   "local overrides shared",
			files:  map[string]string{".env": "PORTFOLIO_DOCS_TEST_C=shared\n", ".env.local": "PORTFOLIO_DOCS_TEST_C=local\n"},
			want:   "local",
			loaded: 2,
		},
		{
			name:   "shared only",
			files:  map[string]string{".env": "PORTFOLIO_DOCS_TEST_C=shared\n"},
			want:   "shared",
			loaded: 1,
		},
		{
			name:   "local only",
			files:  map[string]string{".env.local": "PORTFOLIO_DOCS_TEST_C=local\n"},
			want:   "local",
			loaded: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, body := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
			}
			t.Setenv("PORTFOLIO_DOCS_TEST_C", "")
			require.NoError(t, os.Unsetenv("PORTFOLIO_DOCS_TEST_C"))

			loaded := LoadDotEnv(DotEnvFiles(dir)...)

			require.Len(t, loaded, tt.loaded)
			require.Equal(t, tt.want, os.Getenv("PORTFOLIO_DOCS_TEST_C"))
		})
	}
}
