package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// NormalizeArtist compresses a creator/artist string into the compact token
// used inside canonical filenames: non-alphanumeric characters are stripped,
// the first word is reduced to its initial, the second word is capitalized
// whole, remaining words are lowercased, and everything is concatenated.
// The exact algorithm is load-bearing: changing it changes every generated
// filename, so renames would stop being stable across runs.
func NormalizeArtist(artist string) string {
	cleaned := stripNonAlphanumeric(artist)
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return ""
	}

	if len(words) == 1 {
		return titleCaser.String(strings.ToLower(words[0]))
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(words[0][:1]))
	b.WriteString(titleCaser.String(strings.ToLower(words[1])))
	for _, word := range words[2:] {
		b.WriteString(strings.ToLower(word))
	}
	return b.String()
}

func stripNonAlphanumeric(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}
