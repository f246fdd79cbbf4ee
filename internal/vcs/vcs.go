// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vcs exposes the version-control facts the tracker depends on:
// which commit is checked out, whether the tree is clean, the full commit
// ordering and where the repository is browsable.
package vcs

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoRemote is returned when the repository has no origin remote.
var ErrNoRemote = errors.New("no origin remote configured")

// Repository is the version-control interface consumed by the pipeline.
type Repository interface {
	// CurrentCommit returns the id of the checked out commit.
	CurrentCommit() (string, error)

	// Changes returns the sorted paths of tracked files that differ from
	// the current commit. An empty result means the tree is clean.
	Changes() ([]string, error)

	// Commits returns every commit reachable from HEAD, newest first.
	Commits() ([]string, error)

	// RemoteURL returns the fetch URL of the origin remote.
	RemoteURL() (string, error)
}

// Chronological returns a copy of a newest-first commit list ordered
// oldest first.
func Chronological(newestFirst []string) []string {
	out := make([]string, len(newestFirst))
	for i, c := range newestFirst {
		out[len(newestFirst)-1-i] = c
	}
	return out
}

// ShortID returns the first n characters of a commit id.
func ShortID(id string, n int) string {
	if n <= 0 || len(id) <= n {
		return id
	}
	return id[:n]
}

// BrowseURL converts a remote fetch URL into an https URL suitable for
// linking to files in a hosted repository. It returns "" when the remote
// cannot be mapped (for example a local path).
func BrowseURL(remote string) string {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return ""
	}

	// scp-like syntax: git@github.com:owner/repo.git
	if !strings.Contains(remote, "://") {
		at := strings.Index(remote, "@")
		colon := strings.Index(remote, ":")
		if colon <= 0 || (at >= 0 && at > colon) {
			return ""
		}
		host := remote[at+1 : colon]
		path := remote[colon+1:]
		return "https://" + host + "/" + trimRepoPath(path)
	}

	u, err := url.Parse(remote)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "ssh", "git", "git+ssh":
	default:
		return ""
	}

	scheme := "https"
	if u.Scheme == "http" {
		scheme = "http"
	}
	return scheme + "://" + u.Hostname() + "/" + trimRepoPath(u.Path)
}

func trimRepoPath(p string) string {
	p = strings.Trim(p, "/")
	return strings.TrimSuffix(p, ".git")
}
