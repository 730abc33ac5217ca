package server

import (
	"html"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	derrors "github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
)

// siteHandler serves the published output under the configured base URL.
// Directory routes resolve to their index.html and misses get the site's
// 404 page.
func (s *Server) siteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pub := s.published()
		if pub == nil {
			s.serveStatusPage(w)
			return
		}

		base := pub.cfg.BaseURL
		p := r.URL.Path
		if !strings.HasPrefix(p, base) {
			if p+"/" == base || p == "/" {
				http.Redirect(w, r, base, http.StatusFound)
				return
			}
			serveNotFound(w, pub.dir)
			return
		}

		rel := path.Clean("/" + strings.TrimPrefix(p, base))
		name := filepath.Join(pub.dir, filepath.FromSlash(rel))
		fi, err := os.Stat(name)
		switch {
		case err == nil && fi.IsDir():
			if _, err := os.Stat(filepath.Join(name, "index.html")); err != nil {
				serveNotFound(w, pub.dir)
				return
			}
			if !strings.HasSuffix(p, "/") {
				target := p + "/"
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			name = filepath.Join(name, "index.html")
		case err != nil:
			serveNotFound(w, pub.dir)
			return
		}
		http.ServeFile(w, r, name)
	})
}

// serveNotFound writes the generated 404.html with a 404 status.
func serveNotFound(w http.ResponseWriter, dir string) {
	data, err := os.ReadFile(filepath.Join(dir, "404.html"))
	if err != nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}

// serveStatusPage answers requests made before any build succeeded.
func (s *Server) serveStatusPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)

	hasError, buildErr, _ := s.status.getStatus()
	if !hasError {
		_, _ = w.Write([]byte(`<!doctype html><html><head><meta charset="utf-8"><meta http-equiv="refresh" content="1">` +
			`<title>Building</title></head><body><h1>Building documentation…</h1>` +
			`<p>The page reloads when the first build finishes.</p></body></html>`))
		return
	}
	_, _ = w.Write([]byte(`<!doctype html><html><head><meta charset="utf-8"><title>Build Failed</title></head>` +
		`<body><h1>Build Failed</h1><p>The documentation site failed to build. Fix the error and save to rebuild.</p>` +
		`<h2>Error Details:</h2><pre>` + html.EscapeString(derrors.Details(buildErr)) + `</pre></body></html>`))
}
