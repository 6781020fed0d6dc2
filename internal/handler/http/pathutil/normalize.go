// Package pathutil maps request paths to bounded metric labels.
package pathutil

import (
	"regexp"
	"strings"
)

// Unmatched is the label for paths that match no known route.
const Unmatched = "/other"

// pathPattern maps a dynamic route to its template.
type pathPattern struct {
	pattern  *regexp.Regexp
	template string
}

var pathPatterns = []pathPattern{
	{pattern: regexp.MustCompile(`^/v1/companies/[^/]+/news$`), template: "/v1/companies/:name/news"},
}

// staticRoutes are reported as-is.
var staticRoutes = map[string]bool{
	"/":                    true,
	"/health":              true,
	"/health/ai":           true,
	"/ready":               true,
	"/live":                true,
	"/metrics":             true,
	"/v1/highlights":       true,
	"/v1/content":          true,
	"/v1/articles/process": true,
	"/v1/companies/digest": true,
}

// NormalizePath returns the route template for path so that metric labels
// stay bounded. Query strings and trailing slashes are ignored; unknown
// paths collapse into Unmatched.
//
//	NormalizePath("/v1/companies/Acme/news")  // "/v1/companies/:name/news"
//	NormalizePath("/health/ai?refresh=true")  // "/health/ai"
//	NormalizePath("/wp-login.php")            // "/other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if staticRoutes[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.pattern.MatchString(path) {
			return p.template
		}
	}
	return Unmatched
}

// ExpectedCardinality is the number of distinct labels NormalizePath can return.
func ExpectedCardinality() int {
	return len(staticRoutes) + len(pathPatterns) + 1
}
