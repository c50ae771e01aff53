// Package mediaurl turns the media references the backend returns (stored
// file names, root-relative paths or absolute URLs) into absolute URLs.
package mediaurl

import (
	"net/url"
	"strings"
)

const PathPrefix = "/media/"

// Resolve returns an absolute URL for ref. Relative references are served
// from the origin of apiBaseURL, not from the API path below it.
func Resolve(apiBaseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}

	path, ok := Path(ref)
	if !ok {
		return ""
	}

	base, err := url.Parse(strings.TrimSpace(apiBaseURL))
	if err != nil || base.Host == "" {
		return path
	}
	return base.Scheme + "://" + base.Host + path
}

// Path normalizes a relative media reference to a root-relative path under
// PathPrefix. Bare storage names ("profile_images/a.jpg") get the prefix.
func Path(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	path := u.Path
	if path == "" {
		return "", false
	}
	if !strings.HasPrefix(path, PathPrefix) {
		path = PathPrefix + strings.TrimLeft(path, "/")
	}

	rest := strings.TrimPrefix(path, PathPrefix)
	if rest == "" || strings.Contains(rest, "..") {
		return "", false
	}
	return path, true
}
