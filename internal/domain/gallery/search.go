package gallery

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w]`)
)

// Filter returns the images whose name matches query, in their original order.
// A blank query returns every image.
func Filter(images []Image, query string) []Image {
	out := make([]Image, 0, len(images))
	for _, img := range images {
		if Matches(img.Name, query) {
			out = append(out, img)
		}
	}
	return out
}

// Matches reports whether name matches query. Any of these is enough:
//   - query is a case-insensitive substring of name
//   - normalized query is a substring of normalized name
//   - every whitespace separated word of query is a case-insensitive substring of name
//
// The last rule makes matching non-monotonic in the query: "beach su" still
// matches "Sunset Beach" while "beach x" does not.
func Matches(name, query string) bool {
	if strings.TrimSpace(query) == "" {
		return true
	}

	lowerName := strings.ToLower(name)
	lowerQuery := strings.ToLower(query)

	if strings.Contains(lowerName, lowerQuery) {
		return true
	}

	if strings.Contains(normalize(name), normalize(query)) {
		return true
	}

	for _, word := range strings.Fields(lowerQuery) {
		if !strings.Contains(lowerName, word) {
			return false
		}
	}
	return true
}

// normalize lower-cases s and drops whitespace and every non-word character.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRe.ReplaceAllString(s, "")
	return nonWordRe.ReplaceAllString(s, "")
}
