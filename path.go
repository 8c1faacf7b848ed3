package fslib

import (
	"strings"
)

// Normalize converts p into a canonical absolute path: a sequence of
// non-empty components rooted at "/". "." components are dropped, ".."
// components are resolved lexically (never by following symlinks), and
// the result never has a trailing slash except for the root itself.
//
// Normalize fails with KindInvalidPath if p is empty, not absolute,
// contains a NUL byte, or if a ".." component would climb above the
// root: unlike path.Clean, ".." at the root is an escape attempt, not
// a no-op.
func Normalize(p string) (string, error) {
	if p == "" {
		return "", NewError("normalize", p, KindInvalidPath, nil)
	}
	if strings.IndexByte(p, 0) >= 0 {
		return "", NewError("normalize", p, KindInvalidPath, nil)
	}
	if !strings.HasPrefix(p, "/") {
		return "", NewError("normalize", p, KindInvalidPath, nil)
	}

	parts := strings.Split(p, "/")
	var out []string
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", NewError("normalize", p, KindInvalidPath, nil)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}

	if len(out) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(out, "/"), nil
}

// MustNormalize is like Normalize but panics on error. It exists for use
// with compile-time-known literal paths inside this package.
func MustNormalize(p string) string {
	n, err := Normalize(p)
	if err != nil {
		panic(err)
	}
	return n
}

// Split divides a normalized path into its parent and leaf component.
// Split("/") returns ("/", "").
func Split(p string) (parent, leaf string) {
	p, err := Normalize(p)
	if err != nil {
		return "/", ""
	}
	if p == "/" {
		return "/", ""
	}
	idx := strings.LastIndexByte(p, '/')
	leaf = p[idx+1:]
	if idx == 0 {
		parent = "/"
	} else {
		parent = p[:idx]
	}
	return parent, leaf
}

// Join normalizes the concatenation of a and b. If b is absolute it
// replaces a entirely; otherwise it is appended as a relative path.
func Join(a, b string) (string, error) {
	a, err := Normalize(a)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(b, "/") {
		return Normalize(b)
	}
	if a == "/" {
		return Normalize("/" + b)
	}
	return Normalize(a + "/" + b)
}

// components splits a normalized non-root path into its components.
// components("/") returns nil.
func components(p string) []string {
	if p == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// RelativeTo returns the components of p beneath base, or fails with
// KindInvalidPath if p is not a descendant of base.
func RelativeTo(p, base string) ([]string, error) {
	p, err := Normalize(p)
	if err != nil {
		return nil, err
	}
	base, err = Normalize(base)
	if err != nil {
		return nil, err
	}
	if !IsPrefix(base, p) {
		return nil, NewError("relative-to", p, KindInvalidPath, nil)
	}
	if base == "/" {
		return components(p), nil
	}
	rel := strings.TrimPrefix(p, base)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return nil, nil
	}
	return strings.Split(rel, "/"), nil
}

// IsPrefix reports whether prefix is a component-boundary-aligned
// ancestor of (or equal to) p. "/a/bb" is not prefixed by "/a/b".
func IsPrefix(prefix, p string) bool {
	prefix, err1 := Normalize(prefix)
	p, err2 := Normalize(p)
	if err1 != nil || err2 != nil {
		return false
	}
	if prefix == "/" {
		return true
	}
	if prefix == p {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// joinComponents rebuilds a normalized path from a parent and a leaf
// component, without re-validating the leaf for embedded separators.
func joinComponents(parent string, names ...string) string {
	if len(names) == 0 {
		return parent
	}
	if parent == "/" {
		return "/" + strings.Join(names, "/")
	}
	return parent + "/" + strings.Join(names, "/")
}
