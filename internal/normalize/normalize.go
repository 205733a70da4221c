// Package normalize turns human-readable labels into snake_case identifiers
// safe for filenames and CSV headers.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	punctRegex   = regexp.MustCompile(`['"‘’“”().,\-]`)
	nonWordRegex = regexp.MustCompile(`[^a-zA-Z0-9_\s]`)
	spaceRegex   = regexp.MustCompile(`[\s_]*\s[\s_]*`)
)

// Name lowercases raw, drops punctuation and anything outside ASCII
// letters, digits and underscores, and joins the remaining words with a
// single "_". Underscores next to whitespace fold into that separator.
// Accented letters are dropped, not transliterated.
//
// Name is idempotent: Name(Name(s)) == Name(s).
func Name(raw string) string {
	s := strings.ToValidUTF8(raw, "")
	s = punctRegex.ReplaceAllString(s, "")
	s = nonWordRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = spaceRegex.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// Columns normalizes a header row. When two headers normalize to the same
// name, later ones get a numeric suffix (name, name_2, name_3, ...).
func Columns(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := Name(h)
		candidate := name
		for n := 2; seen[candidate]; n++ {
			candidate = name + "_" + strconv.Itoa(n)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}
