package build

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bryce-seefieldt/portfolio-docs/internal/features"
	"github.com/bryce-seefieldt/portfolio-docs/internal/foundation/errors"
	"github.com/bryce-seefieldt/portfolio-docs/internal/logfields"
	"github.com/bryce-seefieldt/portfolio-docs/internal/theme"
)

// static publishes the feature icons, the static dir, files linked from
// markdown and the generated stylesheet. Static files override icons of the
// same name.
func (r *run) static(ctx context.Context) error {
	for src, data := range features.IconFiles() {
		if err := r.writeFile(filepath.Join(r.outDir, filepath.FromSlash(src)), data); err != nil {
			return err
		}
	}

	if r.cfg.StaticDir != "" {
		src := filepath.Join(r.root, r.cfg.StaticDir)
		if isDir(src) {
			if err := copyTree(ctx, src, r.outDir); err != nil {
				return err
			}
		}
	}

	rels := make([]string, 0, len(r.site.Assets))
	for rel := range r.site.Assets {
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	for _, rel := range rels {
		src := filepath.Join(r.root, filepath.FromSlash(rel))
		dst := filepath.Join(r.outDir, filepath.FromSlash(r.site.Assets[rel]))
		if err := copyFile(src, dst); err != nil {
			return err
		}
	}

	return r.writeStylesheet()
}

func (r *run) writeStylesheet() error {
	var custom []byte
	if p := r.cfg.Theme.CustomCSS; p != "" {
		data, err := os.ReadFile(filepath.Join(r.root, p))
		switch {
		case err == nil:
			custom = data
		case os.IsNotExist(err):
			r.logger.Debug("Custom stylesheet not found", logfields.Path(p))
		default:
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to read custom stylesheet").
				Fatal().WithContext("path", p).Build()
		}
	}
	css, err := r.theme.Stylesheet(custom)
	if err != nil {
		return errors.WrapError(err, errors.CategoryRender, "failed to generate stylesheet").Fatal().Build()
	}
	return r.writeFile(filepath.Join(r.outDir, filepath.FromSlash(theme.StylesheetPath)), css)
}

// copyTree copies the regular files under src into dst, keeping relative paths.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to read static directory").
				Fatal().WithContext("path", p).Build()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		return copyFile(p, filepath.Join(dst, rel))
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to open file").
			Fatal().WithContext("path", src).Build()
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
			Fatal().WithContext("path", filepath.Dir(dst)).Build()
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create file").
			Fatal().WithContext("path", dst).Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy file").
			Fatal().WithContext("path", dst).Build()
	}
	return out.Close()
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
