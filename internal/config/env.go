package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read at build time. The names are kept stable so
// existing deployment pipelines keep working.
const (
	EnvSiteURL         = "DOCUSAURUS_SITE_URL"
	EnvBaseURL         = "DOCUSAURUS_BASE_URL"
	EnvGitHubOrg       = "DOCUSAURUS_GITHUB_ORG"
	EnvGitHubRepoDocs  = "DOCUSAURUS_GITHUB_REPO_DOCS"
	EnvGitHubRepoApp   = "DOCUSAURUS_GITHUB_REPO_APP"
	EnvPortfolioAppURL = "DOCUSAURUS_PORTFOLIO_APP_URL"
)

// Fallbacks used when the corresponding variable is unset or empty.
const (
	DefaultSiteURL         = "https://bns-portfolio-docs.vercel.app"
	DefaultBaseURL         = "/"
	DefaultGitHubOrg       = "bryce-seefieldt"
	DefaultGitHubRepoDocs  = "portfolio-docs"
	DefaultGitHubRepoApp   = "portfolio-app"
	DefaultPortfolioAppURL = "https://bns-portfolio-app.vercel.app"
)

// Lookup reads an environment variable. os.LookupEnv satisfies it.
type Lookup func(key string) (string, bool)

// OSLookup reads the process environment.
func OSLookup(key string) (string, bool) { return os.LookupEnv(key) }

// MapLookup builds a Lookup over a fixed map, mostly for tests.
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// EnvVars holds the six environment-driven values after fallback resolution.
type EnvVars struct {
	SiteURL         string
	BaseURL         string
	GitHubOrg       string
	GitHubRepoDocs  string
	GitHubRepoApp   string
	PortfolioAppURL string

	// explicit records which variables were set to a non-empty value.
	explicit map[string]bool
}

// ResolveEnv reads the environment through env, substituting the literal
// default for every variable that is unset or empty. Values are used verbatim.
func ResolveEnv(env Lookup) EnvVars {
	if env == nil {
		env = OSLookup
	}
	vars := EnvVars{explicit: make(map[string]bool)}
	get := func(key, fallback string) string {
		if v, ok := env(key); ok && v != "" {
			vars.explicit[key] = true
			return v
		}
		return fallback
	}
	vars.SiteURL = get(EnvSiteURL, DefaultSiteURL)
	vars.BaseURL = get(EnvBaseURL, DefaultBaseURL)
	vars.GitHubOrg = get(EnvGitHubOrg, DefaultGitHubOrg)
	vars.GitHubRepoDocs = get(EnvGitHubRepoDocs, DefaultGitHubRepoDocs)
	vars.GitHubRepoApp = get(EnvGitHubRepoApp, DefaultGitHubRepoApp)
	vars.PortfolioAppURL = get(EnvPortfolioAppURL, DefaultPortfolioAppURL)
	return vars
}

// IsExplicit reports whether key was set in the environment.
func (v EnvVars) IsExplicit(key string) bool { return v.explicit[key] }

// GitHubOrgURL is the organization page on GitHub.
func (v EnvVars) GitHubOrgURL() string { return "https://github.com/" + v.GitHubOrg }

// GitHubRepoDocsURL is the documentation repository on GitHub.
func (v EnvVars) GitHubRepoDocsURL() string { return v.GitHubOrgURL() + "/" + v.GitHubRepoDocs }

// GitHubRepoAppURL is the application repository on GitHub.
func (v EnvVars) GitHubRepoAppURL() string { return v.GitHubOrgURL() + "/" + v.GitHubRepoApp }

// DotEnvFiles lists the env files under root, highest precedence first.
func DotEnvFiles(root string) []string {
	return []string{filepath.Join(root, ".env.local"), filepath.Join(root, ".env")}
}

// LoadDotEnv loads KEY=VALUE files into the process environment.
// Missing files are skipped and existing variables are never overwritten,
// so a key set by an earlier file wins over later ones.
func LoadDotEnv(files ...string) []string {
	if len(files) == 0 {
		files = DotEnvFiles("")
	}
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("Failed to load env file", "path", f, "error", err)
			continue
		}
		loaded = append(loaded, f)
	}
	return loaded
}
