// Package pathutil canonicalizes filesystem paths across Windows, POSIX,
// and WSL conventions and answers the safety predicates used by the scan
// and move pipeline. All functions are pure; none touch the filesystem.
package pathutil

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// maxConflictAttempts bounds the suffix search in ResolveConflict so that
// corrupted state can never spin it forever.
const maxConflictAttempts = 100

// UnknownSegment is returned by LastSegment for degenerate input.
const UnknownSegment = "unknown"

var (
	driveRe    = regexp.MustCompile(`^[a-zA-Z]:`)
	wslMountRe = regexp.MustCompile(`^/mnt/([a-zA-Z])(/|$)`)
)

// Normalize converts any separator style to forward slashes, collapses
// repeated separators, and trims trailing separators. A UNC double-slash
// prefix is preserved; collapsing it would make UNC paths
// indistinguishable from POSIX absolute paths.
func Normalize(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")

	unc := strings.HasPrefix(s, "//") && !strings.HasPrefix(s, "///")
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	if unc {
		s = "/" + s
	}

	// Trim trailing slash, but keep "/" and drive roots like "C:/" intact.
	if len(s) > 1 && strings.HasSuffix(s, "/") && !driveRe.MatchString(s[:len(s)-1]) {
		s = strings.TrimSuffix(s, "/")
	}

	return s
}

// IsWSLPath reports whether p looks like a WSL-originated path: a UNC
// wsl$ / wsl.localhost share, a /mnt/<drive> mount form, or any plain
// POSIX absolute path (single leading slash, not UNC).
func IsWSLPath(p string) bool {
	s := Normalize(p)

	if strings.HasPrefix(s, "//") {
		rest := strings.ToLower(strings.TrimPrefix(s, "//"))
		return strings.HasPrefix(rest, "wsl$") || strings.HasPrefix(rest, "wsl.localhost")
	}

	return strings.HasPrefix(s, "/")
}

// ToWindowsPath rewrites a /mnt/<drive>/... WSL mount path into its
// drive-letter form with the drive uppercased. Anything not matching the
// mount shape is returned normalized but otherwise unchanged.
func ToWindowsPath(p string) string {
	s := Normalize(p)

	m := wslMountRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	drive := strings.ToUpper(m[1])
	rest := strings.TrimPrefix(s, "/mnt/"+m[1])
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return drive + ":/"
	}
	return drive + ":/" + rest
}

// VolumeOf returns the drive designator of p ("c", lowercased) or "" when
// p has no drive prefix.
func VolumeOf(p string) string {
	s := Normalize(p)
	if driveRe.MatchString(s) {
		return strings.ToLower(s[:1])
	}
	return ""
}

// SameVolume reports whether a and b share a drive designator. Paths
// without one (POSIX, UNC) are never same-volume, not even with
// themselves: an unknown volume must always take the copy+delete path
// rather than an assumed-atomic rename.
func SameVolume(a, b string) bool {
	va, vb := VolumeOf(a), VolumeOf(b)
	if va == "" || vb == "" {
		return false
	}
	return va == vb
}

// resolve normalizes and collapses "." and ".." segments without touching
// the filesystem.
func resolve(p string) string {
	s := Normalize(p)

	unc := strings.HasPrefix(s, "//")
	if unc {
		s = s[1:]
	}
	s = path.Clean(s)
	if unc {
		s = "/" + s
	}
	return s
}

// IsInsideRoot reports whether target resolves to root or a descendant of
// root. Both sides are resolved first so ".." traversal cannot escape the
// comparison. The test is case-insensitive to match Windows filesystems.
func IsInsideRoot(target, root string) bool {
	t := strings.ToLower(resolve(target))
	r := strings.ToLower(resolve(root))

	if r == "" || r == "." {
		return false
	}
	if t == r {
		return true
	}

	prefix := r
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(t, prefix)
}

// systemPaths are directories that must never be configured as a scan
// root or organization root. Matching is by equality or containment.
var systemPaths = []string{
	"c:/windows",
	"c:/program files",
	"c:/program files (x86)",
	"c:/programdata",
	"c:/$recycle.bin",
	"c:/system volume information",
	"/bin",
	"/sbin",
	"/boot",
	"/dev",
	"/etc",
	"/lib",
	"/proc",
	"/sys",
	"/usr",
	"/var",
}

// IsSystemPath reports whether p is, or sits inside, a known OS system
// directory.
func IsSystemPath(p string) bool {
	s := strings.ToLower(resolve(p))
	for _, sys := range systemPaths {
		if s == sys || strings.HasPrefix(s, sys+"/") {
			return true
		}
	}
	return false
}

// ResolveConflict returns basePath unchanged when it does not collide
// (case-insensitively) with existing, otherwise the first free variant of
// basePath-2, basePath-3, and so on. It fails once 100 candidates are
// exhausted rather than looping on corrupted input.
func ResolveConflict(basePath string, existing []string) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[strings.ToLower(Normalize(e))] = struct{}{}
	}

	base := Normalize(basePath)
	if _, ok := taken[strings.ToLower(base)]; !ok {
		return base, nil
	}

	for i := 2; i <= maxConflictAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, ok := taken[strings.ToLower(candidate)]; !ok {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("resolve conflict for %q: exhausted %d suffix attempts", basePath, maxConflictAttempts)
}

// Parent returns the parent directory of p, normalized.
func Parent(p string) string {
	s := Normalize(p)

	idx := strings.LastIndex(s, "/")
	if idx < 0 {
		return s
	}
	if idx == 0 {
		return "/"
	}
	// Keep the UNC prefix and drive roots whole.
	if idx == 1 && strings.HasPrefix(s, "//") {
		return s
	}
	parent := s[:idx]
	if driveRe.MatchString(parent) && len(parent) == 2 {
		return parent + "/"
	}
	return parent
}

// LastSegment returns the final path segment of p, or "unknown" when p
// has no usable segment.
func LastSegment(p string) string {
	s := strings.TrimSuffix(Normalize(p), "/")
	if s == "" {
		return UnknownSegment
	}

	idx := strings.LastIndex(s, "/")
	seg := s
	if idx >= 0 {
		seg = s[idx+1:]
	}
	if seg == "" || driveRe.MatchString(seg) {
		return UnknownSegment
	}
	return seg
}

// Join joins segments onto base with forward slashes, preserving a UNC
// prefix on base. Child construction during the walk must go through
// this; naive slash handling would collapse the UNC marker.
func Join(base string, segments ...string) string {
	s := Normalize(base)
	for _, seg := range segments {
		seg = strings.Trim(Normalize(seg), "/")
		if seg == "" {
			continue
		}
		if strings.HasSuffix(s, "/") {
			s += seg
		} else {
			s += "/" + seg
		}
	}
	return s
}
