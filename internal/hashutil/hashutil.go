// Package hashutil provides the content-hashing and timestamp helpers shared
// by every component that reads or writes files under a project's .centy/
// directory.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// SHA256Hex returns the lowercase hex-encoded SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NowISO8601 returns the current time formatted as an ISO-8601 / RFC3339
// timestamp in UTC, the timestamp format used throughout the manifest,
// issue metadata, and registry files.
func NowISO8601() string {
	return ISO8601(time.Now())
}

// ISO8601 formats t as an ISO-8601 / RFC3339 timestamp in UTC.
func ISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseISO8601 parses a timestamp produced by ISO8601/NowISO8601.
func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CentyDir returns the canonical ".centy" directory path for a project root.
func CentyDir(projectPath string) string {
	return filepath.Join(projectPath, ".centy")
}

// RelPath converts an absolute path under the .centy/ directory into the
// slash-separated, manifest-relative form used by ManagedFile.Path:
// directories end with "/", everything else does not.
func RelPath(centyRoot, absPath string, isDir bool) string {
	rel, err := filepath.Rel(centyRoot, absPath)
	if err != nil {
		rel = absPath
	}
	rel = filepath.ToSlash(rel)
	if isDir && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel
}
