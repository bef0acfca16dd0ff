package meshcache

import (
	"fmt"
	"strings"
)

const PACKAGE_PREFIX = "package://"

// UnresolvedPackageError means a package:// reference named a package
// the caller supplied no mapping for. It fails only the visual that
// used the reference.
type UnresolvedPackageError struct {
	Package   string
	Reference string
}

func (e *UnresolvedPackageError) Error() string {
	return fmt.Sprintf("No mapping for package %q in reference %q", e.Package, e.Reference)
}

// collapse runs of '/' in the path part, leave the scheme separator of
// urls alone
func normalizeSeparators(location string) string {
	prefix := ""
	rest := location
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(location, scheme) {
			prefix = scheme
			rest = location[len(scheme):]
			break
		}
	}

	var b strings.Builder
	b.Grow(len(rest))
	prevSlash := false
	for _, r := range rest {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}

	return prefix + b.String()
}

func parentDir(base string) string {
	trimmed := strings.TrimRight(base, "/")
	if idx := strings.LastIndexByte(trimmed, '/'); idx > 0 {
		return trimmed[:idx]
	} else if idx == 0 {
		return "/"
	}
	return trimmed
}

func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return strings.TrimRight(base, "/") + "/" + rel
}

// ResolvePath maps a raw geometry reference to a concrete fetchable
// location. Rules, in priority order: package:// substitution via the
// supplied mapping, absolute/url references used unchanged, a single
// leading "../" resolved against the parent of base, anything else
// joined onto base. Deeper "../" chains are not interpreted; only the
// first marker is consumed.
func ResolvePath(raw string, base string, packages map[string]string) (string, error) {
	switch {
	case strings.HasPrefix(raw, PACKAGE_PREFIX):
		rest := raw[len(PACKAGE_PREFIX):]
		pkg, sub, _ := strings.Cut(rest, "/")
		dir, found := packages[pkg]
		if !found {
			return "", &UnresolvedPackageError{Package: pkg, Reference: raw}
		}
		return normalizeSeparators(joinPath(dir, sub)), nil

	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"), strings.HasPrefix(raw, "/"):
		return normalizeSeparators(raw), nil

	case strings.HasPrefix(raw, "../"):
		return normalizeSeparators(joinPath(parentDir(base), raw[len("../"):])), nil

	default:
		return normalizeSeparators(joinPath(base, raw)), nil
	}
}
