package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	uuidSegmentRegex    = regexp.MustCompile(`(?i)/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	hex24SegmentRegex   = regexp.MustCompile(`(?i)/[0-9a-f]{24}`)
	numericSegmentRegex = regexp.MustCompile(`/\d+`)
)

// ExtractPath returns the pathname of a URL, or the input unchanged when it
// is already a bare path, or "" when nothing path-like can be extracted.
func ExtractPath(rawUrl string) string {
	if rawUrl == "" {
		return ""
	}
	if strings.HasPrefix(rawUrl, "/") {
		if idx := strings.IndexAny(rawUrl, "?#"); idx >= 0 {
			return rawUrl[:idx]
		}
		return rawUrl
	}
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return ""
	}
	return parsed.Path
}

// LooksLikePath reports whether a span name can stand in for a route.
func LooksLikePath(name string) bool {
	return strings.HasPrefix(name, "/") && !strings.Contains(name, " ")
}

// NormalizeUrlPattern collapses identifier-looking path segments so that
// near-identical request URLs group together: UUIDs, 24-hex Mongo-style ids
// and numeric segments all become "*".
func NormalizeUrlPattern(rawUrl string) string {
	pattern := ExtractPath(rawUrl)
	if pattern == "" {
		pattern = rawUrl
	}
	pattern = uuidSegmentRegex.ReplaceAllString(pattern, "/*")
	pattern = hex24SegmentRegex.ReplaceAllString(pattern, "/*")
	pattern = numericSegmentRegex.ReplaceAllString(pattern, "/*")
	return pattern
}
