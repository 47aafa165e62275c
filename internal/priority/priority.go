// Package priority implements the numeric priority model shared by issues:
// validation, the default level, human labels, and migration of legacy
// string labels.
package priority

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate reports whether p is a valid priority for a scale of levels
// priority levels (1 = highest, levels = lowest).
func Validate(p, levels int) bool {
	return p >= 1 && p <= levels
}

// Default returns the middle priority for a scale of levels levels,
// ceil((levels+1)/2), with the corner case Default(0) == 1.
func Default(levels int) int {
	if levels <= 0 {
		return 1
	}
	return (levels + 2) / 2
}

// Label returns the human-readable label for priority p on a scale of
// levels levels.
func Label(p, levels int) string {
	switch levels {
	case 0, 1:
		return "normal"
	case 2:
		if p == 1 {
			return "high"
		}
		return "low"
	case 3:
		switch p {
		case 1:
			return "high"
		case 2:
			return "medium"
		default:
			return "low"
		}
	case 4:
		switch p {
		case 1:
			return "critical"
		case 2:
			return "high"
		case 3:
			return "medium"
		default:
			return "low"
		}
	default:
		return fmt.Sprintf("P%d", p)
	}
}

// LabelToPriority parses a case-insensitive label (or a bare/"P"-prefixed
// integer) into a priority on a scale of levels levels. It returns
// (0, false) when s does not match any known form.
func LabelToPriority(s string, levels int) (int, bool) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)

	switch lower {
	case "critical", "urgent":
		return 1, true
	case "high":
		if levels >= 4 {
			return 2, true
		}
		return 1, true
	case "medium", "normal":
		return Default(levels), true
	case "low":
		return levels, true
	}

	if strings.HasPrefix(lower, "p") {
		if n, err := strconv.Atoi(lower[1:]); err == nil {
			return n, true
		}
		return 0, false
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, true
	}

	return 0, false
}

// MigrateStringPriority translates a legacy string priority into a numeric
// one, falling back to Default(levels) when s does not parse.
func MigrateStringPriority(s string, levels int) int {
	if p, ok := LabelToPriority(s, levels); ok {
		return p
	}
	return Default(levels)
}
