package section

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// normalizeTestID converts a Go or DSL name into the container id
// convention: underscores become hyphens.
func normalizeTestID(id string) string {
	return strings.ReplaceAll(id, "_", "-")
}

// capitalize upper-cases the first letter and lower-cases the rest, the way
// child names appear in qualified definition names (Page|Contact).
func capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// qualify joins a parent name and a child name.
func qualify(parent, child string) string {
	return parent + "|" + capitalize(child)
}
