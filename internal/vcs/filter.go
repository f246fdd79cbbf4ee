// SPDX-License-Identifier: AGPL-3.0-or-later

package vcs

import (
	"path"
	"sort"
	"strings"
)

// FilterChanges drops changed paths that live under any of the ignore
// entries and returns the rest sorted.
//
// Matching is segment-aware: "perf/report" excludes "perf/report/a.txt" and
// "perf/report" itself, but not "perf/report_old/a.txt".
func FilterChanges(paths []string, ignore []string) []string {
	if len(paths) == 0 {
		return nil
	}

	prefixes := make([][]string, 0, len(ignore))
	for _, entry := range ignore {
		entry = strings.Trim(path.Clean(strings.ReplaceAll(entry, "\\", "/")), "/")
		if entry == "" || entry == "." {
			continue
		}
		prefixes = append(prefixes, strings.Split(entry, "/"))
	}

	var filtered []string
	for _, p := range paths {
		if underAny(p, prefixes) {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.Strings(filtered)
	return filtered
}

func underAny(p string, prefixes [][]string) bool {
	parts := strings.Split(p, "/")
	for _, prefix := range prefixes {
		if len(prefix) > len(parts) {
			continue
		}
		match := true
		for i, seg := range prefix {
			if parts[i] != seg {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
