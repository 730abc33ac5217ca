package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
)

// writeJSON encodes v before touching the response, so an encode failure
// leaves the writer unused for the caller's error response. ?pretty=1
// indents the body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) error {
	var (
		body []byte
		err  error
	)
	if p := r.URL.Query().Get("pretty"); p == "1" || p == "true" {
		body, err = json.MarshalIndent(v, "", "  ")
	} else {
		body, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Debug("Health response write failed", logfields.Error(err))
	}
	return nil
}
