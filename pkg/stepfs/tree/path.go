package tree

import "strings"

// SplitPath breaks a slash-delimited path into its segments. The split is
// purely syntactic: "." and ".." are kept and repeated separators produce
// empty segments. An empty path has no segments.
func SplitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// PrefixAt returns the path formed by segments 0..i joined with "/".
func PrefixAt(segments []string, i int) string {
	return strings.Join(segments[:i+1], "/")
}

// wellFormed reports whether every segment names something.
func wellFormed(segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	for _, s := range segments {
		if s == "" {
			return false
		}
	}
	return true
}
