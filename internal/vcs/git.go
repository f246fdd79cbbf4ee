// SPDX-License-Identifier: AGPL-3.0-or-later

package vcs

import (
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepository implements Repository on top of go-git.
type GitRepository struct {
	repo   *gogit.Repository
	root   string
	ignore []string
}

var _ Repository = (*GitRepository)(nil)

// Open opens the repository containing dir, searching parent directories
// for the .git directory. Changes under any ignore path (relative to the
// repository root) do not make the tree dirty.
func Open(dir string, ignore ...string) (*GitRepository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", abs, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}

	return &GitRepository{
		repo:   repo,
		root:   wt.Filesystem.Root(),
		ignore: ignore,
	}, nil
}

// Root returns the absolute path of the working tree.
func (g *GitRepository) Root() string { return g.root }

// SetIgnore replaces the paths excluded from the clean-tree check.
func (g *GitRepository) SetIgnore(paths []string) { g.ignore = paths }

// CurrentCommit returns the full hash HEAD points to.
func (g *GitRepository) CurrentCommit() (string, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// Changes lists tracked files whose staged or working copy differs from
// HEAD. Untracked files are not considered changes.
func (g *GitRepository) Changes() ([]string, error) {
	wt, err := g.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var changed []string
	for path, st := range status {
		if st.Staging == gogit.Untracked && st.Worktree == gogit.Untracked {
			continue
		}
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		changed = append(changed, path)
	}
	return FilterChanges(changed, g.ignore), nil
}

// Commits walks history from HEAD ordered by committer time, newest first.
func (g *GitRepository) Commits() ([]string, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := g.repo.Log(&gogit.LogOptions{From: ref.Hash(), Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	var commits []string
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c.Hash.String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}
	return commits, nil
}

// RemoteURL returns the first URL of the origin remote.
func (g *GitRepository) RemoteURL() (string, error) {
	remote, err := g.repo.Remote("origin")
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return "", ErrNoRemote
	}
	if err != nil {
		return "", fmt.Errorf("failed to get origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoRemote
	}
	return urls[0], nil
}
