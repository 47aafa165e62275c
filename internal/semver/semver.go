// Package semver implements the minimal SemVer parsing and comparison
// needed by the migration executor: exactly three dot-separated
// non-negative decimal components.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	"centy/internal/centyerr"
)

// SemVer is a parsed (major, minor, patch) triple.
type SemVer struct {
	Major, Minor, Patch int
}

// Parse requires exactly three dot-separated non-negative decimal
// components; any deviation fails with a wrapped ValidationError.
func Parse(s string) (SemVer, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("%q: %w", s, centyerr.ValidationError)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, "+- ") {
			return SemVer{}, fmt.Errorf("%q: %w", s, centyerr.ValidationError)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return SemVer{}, fmt.Errorf("%q: %w", s, centyerr.ValidationError)
		}
		nums[i] = n
	}
	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats v as "major.minor.patch".
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other, using natural lexicographic order over the triple.
func (v SemVer) Compare(other SemVer) int {
	if v.Major != other.Major {
		return cmp(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmp(v.Minor, other.Minor)
	}
	return cmp(v.Patch, other.Patch)
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether v < other.
func (v SemVer) Less(other SemVer) bool { return v.Compare(other) < 0 }

// Equal reports whether v == other.
func (v SemVer) Equal(other SemVer) bool { return v.Compare(other) == 0 }
