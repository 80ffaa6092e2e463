package scan

import (
	"os"
	"path/filepath"
	"strings"
)

// IgnoreMatcher decides which directories are pruned from a walk.
//
// Entries are compared component by component against the end of a
// candidate path. A relative entry such as "Library" or "Library/Caches"
// matches any directory whose trailing components are equal to it, so
// "/Users/me/Library" is ignored but "/Users/me/NotLibrary" is not. An
// absolute entry, including one written with a leading "~", matches only
// that exact directory.
type IgnoreMatcher struct {
	home    string
	entries []ignoreEntry
}

type ignoreEntry struct {
	absolute bool
	path     string
	parts    []string
}

// NewIgnoreMatcher builds a matcher. Entries are tilde-expanded against home
// and cleaned; empty entries and entries climbing above their start are
// dropped.
func NewIgnoreMatcher(entries []string, home string) *IgnoreMatcher {
	m := &IgnoreMatcher{home: home}
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p := expandHome(raw, home)
		if filepath.IsAbs(p) {
			m.entries = append(m.entries, ignoreEntry{absolute: true, path: p})
			continue
		}
		if p == "." || p == ".." || strings.HasPrefix(p, ".."+string(os.PathSeparator)) {
			continue
		}
		m.entries = append(m.entries, ignoreEntry{path: p, parts: components(p)})
	}
	return m
}

// Len returns the number of usable entries
func (m *IgnoreMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// ShouldIgnore reports whether the directory at candidate is excluded.
func (m *IgnoreMatcher) ShouldIgnore(candidate string) bool {
	if m == nil || len(m.entries) == 0 {
		return false
	}
	p := expandHome(candidate, m.home)
	var parts []string
	for _, e := range m.entries {
		if e.absolute {
			if p == e.path {
				return true
			}
			continue
		}
		if parts == nil {
			parts = components(p)
		}
		if hasSuffix(parts, e.parts) {
			return true
		}
	}
	return false
}

// ShouldIgnore is a one-shot form of IgnoreMatcher.ShouldIgnore.
func ShouldIgnore(ignore []string, candidate, home string) bool {
	return NewIgnoreMatcher(ignore, home).ShouldIgnore(candidate)
}

func hasSuffix(parts, suffix []string) bool {
	if len(suffix) == 0 || len(suffix) > len(parts) {
		return false
	}
	offset := len(parts) - len(suffix)
	for i, s := range suffix {
		if parts[offset+i] != s {
			return false
		}
	}
	return true
}

func components(p string) []string {
	fields := strings.Split(filepath.ToSlash(p), "/")
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func expandHome(p, home string) string {
	switch {
	case p == "~" && home != "":
		return filepath.Clean(home)
	case strings.HasPrefix(p, "~/") && home != "":
		return filepath.Join(home, p[2:])
	}
	return filepath.Clean(p)
}
