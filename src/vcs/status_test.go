package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepoWithFile(t *testing.T, name, content string) (string, *git.Worktree) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return path, wt
}

func TestFileDirty_Clean(t *testing.T) {
	path, _ := initRepoWithFile(t, "src/app.csproj", "<Project />")

	dirty, err := FileDirty(path)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestFileDirty_Modified(t *testing.T) {
	path, _ := initRepoWithFile(t, "src/app.csproj", "<Project />")
	require.NoError(t, os.WriteFile(path, []byte("<Project></Project>"), 0o644))

	dirty, err := FileDirty(path)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestFileDirty_Staged(t *testing.T) {
	path, wt := initRepoWithFile(t, "app.csproj", "<Project />")
	require.NoError(t, os.WriteFile(path, []byte("<Project></Project>"), 0o644))
	_, err := wt.Add("app.csproj")
	require.NoError(t, err)

	dirty, err := FileDirty(path)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestFileDirty_OtherFileModified(t *testing.T) {
	path, _ := initRepoWithFile(t, "app.csproj", "<Project />")
	other := filepath.Join(filepath.Dir(path), "README.md")
	require.NoError(t, os.WriteFile(other, []byte("hi"), 0o644))

	dirty, err := FileDirty(path)
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestFileDirty_NotARepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.csproj")
	require.NoError(t, os.WriteFile(path, []byte("<Project />"), 0o644))

	dirty, err := FileDirty(path)
	require.NoError(t, err)
	assert.False(t, dirty)
}
