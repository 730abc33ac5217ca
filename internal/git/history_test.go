package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func commitFile(t *testing.T, repo *git.Repository, root, rel, body, author string, when time.Time) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(rel)
	require.NoError(t, err)
	sig := &object.Signature{Name: author, Email: author + "@example.com", When: when}
	_, err = wt.Commit("update "+rel, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestHistory_LastUpdate(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	first := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	second := first.Add(48 * time.Hour)
	commitFile(t, repo, root, "docs/intro.md", "# Intro\n", "alice", first)
	commitFile(t, repo, root, "docs/other.md", "# Other\n", "bob", second)

	h, err := OpenHistory(filepath.Join(root, "docs"))
	require.NoError(t, err)

	lu, err := h.LastUpdate(filepath.Join(root, "docs", "intro.md"))
	require.NoError(t, err)
	require.NotNil(t, lu)
	require.Equal(t, "alice", lu.Author)
	require.True(t, lu.Time.Equal(first))

	lu, err = h.LastUpdate(filepath.Join(root, "docs", "other.md"))
	require.NoError(t, err)
	require.Equal(t, "bob", lu.Author)
}

func TestHistory_UntrackedFile(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	commitFile(t, repo, root, "README.md", "x", "alice", time.Now())
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.md"), []byte("y"), 0o600))

	h, err := OpenHistory(root)
	require.NoError(t, err)
	lu, err := h.LastUpdate(filepath.Join(root, "new.md"))
	require.NoError(t, err)
	require.Nil(t, lu)
}

func TestOpenHistory_NotARepository(t *testing.T) {
	_, err := OpenHistory(t.TempDir())
	require.Error(t, err)
}
