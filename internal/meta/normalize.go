package meta

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanString performs basic tag cleaning: NFC normalization, control
// characters dropped, whitespace trimmed and collapsed. Two spellings of
// "Björk" (composed and decomposed) clean to the same artist name.
func CleanString(s string) string {
	if s == "" {
		return ""
	}

	// Unicode NFC normalization
	s = norm.NFC.String(s)

	// Tags sometimes carry NULs or other terminators
	s = removeControlChars(s)

	return collapseWhitespace(s)
}

// SortableName picks the name used for ordering: the explicit sort tag when
// the file has one, otherwise the display name.
func SortableName(name, sortTag string) string {
	if sortTag = CleanString(sortTag); sortTag != "" {
		return sortTag
	}
	return CleanString(name)
}

// collapseWhitespace replaces runs of whitespace with a single space
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// removeControlChars turns control characters into spaces
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
