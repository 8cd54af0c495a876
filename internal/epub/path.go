package epub

import (
	"path"
	"strings"
)

// NormalizePath canonicalizes an archive-internal path: slash separators,
// no "./" prefix, no leading slash.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}

// ResolveHref resolves a reference found in a document at basePath to an
// archive-internal path. A reference starting with "/" is archive-root
// relative; anything else is joined to the base document's directory, with
// "../" segments popping one directory level each. The same rule is used for
// navigation targets, stylesheet links, font URLs and image sources.
func ResolveHref(basePath, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") {
		return NormalizePath(ref)
	}
	dir := path.Dir(NormalizePath(basePath))
	if dir == "." {
		dir = ""
	}
	return path.Clean(path.Join(dir, ref))
}

// SplitFragment splits an href into its path and fragment identifier.
// The '#' is not included in either part; only the first '#' splits.
func SplitFragment(href string) (p, fragment string) {
	if href == "" {
		return "", ""
	}
	parts := strings.SplitN(href, "#", 2)
	p = parts[0]
	if len(parts) == 2 {
		fragment = parts[1]
	}
	return p, fragment
}
