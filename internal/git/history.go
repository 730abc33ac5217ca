package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LastUpdate is the most recent commit touching a file.
type LastUpdate struct {
	Time   time.Time
	Author string
}

// UpdateLookup resolves last-update metadata for source files.
type UpdateLookup interface {
	LastUpdate(path string) (*LastUpdate, error)
}

// History looks up commits in the repository containing a directory.
type History struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]*LastUpdate
}

// OpenHistory opens the repository containing dir, searching parent directories.
func OpenHistory(dir string) (*History, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &History{repo: repo, root: root, cache: make(map[string]*LastUpdate)}, nil
}

// LastUpdate returns the newest commit touching path. Untracked files yield nil.
func (h *History) LastUpdate(path string) (*LastUpdate, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(h.root, abs)
	if err != nil {
		return nil, fmt.Errorf("%s is outside repository %s: %w", path, h.root, err)
	}
	rel = filepath.ToSlash(rel)

	h.mu.Lock()
	defer h.mu.Unlock()
	if lu, ok := h.cache[rel]; ok {
		return lu, nil
	}

	iter, err := h.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", rel, err)
	}
	defer iter.Close()

	var lu *LastUpdate
	commit, err := iter.Next()
	switch {
	case err == nil:
		lu = lastUpdateFrom(commit)
	case errors.Is(err, io.EOF):
	default:
		return nil, fmt.Errorf("log %s: %w", rel, err)
	}
	h.cache[rel] = lu
	return lu, nil
}

func lastUpdateFrom(c *object.Commit) *LastUpdate {
	return &LastUpdate{Time: c.Author.When, Author: c.Author.Name}
}

// NoHistory is an UpdateLookup that never finds commits.
type NoHistory struct{}

func (NoHistory) LastUpdate(string) (*LastUpdate, error) { return nil, nil }
