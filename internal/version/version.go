// Package version provides version comparison utilities for service versions.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Parse parses a service version leniently: "1.18", "v2.4.57" and "8.9.1-p1" all parse.
// Trailing build decorations after a space (e.g. "2.4.57 (Debian)") are ignored.
func Parse(s string) (*semver.Version, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, false
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Compare returns -1, 0, or 1 comparing a vs b. ok is false when either side is
// not a version, in which case the two are unordered.
func Compare(a, b string) (cmp int, ok bool) {
	va, okA := Parse(a)
	vb, okB := Parse(b)
	if !okA || !okB {
		return 0, false
	}
	return va.Compare(vb), true
}
