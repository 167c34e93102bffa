// Package vcs inspects the git worktree that contains a manifest.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// FileDirty reports whether path has staged or unstaged changes in the git
// worktree that contains it. Files outside any repository are never dirty.
func FileDirty(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, nil
		}
		return false, fmt.Errorf("opening repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return false, nil
		}
		return false, fmt.Errorf("opening worktree: %w", err)
	}

	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		return false, fmt.Errorf("resolving worktree root: %w", err)
	}
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false, fmt.Errorf("relating %s to worktree: %w", path, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}

	s, ok := status[filepath.ToSlash(rel)]
	if !ok {
		return false, nil
	}
	return s.Worktree != git.Unmodified || s.Staging != git.Unmodified, nil
}
