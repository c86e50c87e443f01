// Package crisis flags text that contains crisis-indicating phrases.
package crisis

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var phrases = []string{
	"suicide",
	"kill myself",
	"end it all",
	"no point",
	"hopeless",
	"worthless",
	"can't go on",
	"want to die",
	"harm myself",
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Phrases returns a copy of the crisis phrase list.
func Phrases() []string {
	out := make([]string, len(phrases))
	copy(out, phrases)
	return out
}

// Detect reports whether any crisis phrase occurs in text, ignoring case.
func Detect(text string) bool {
	s := normalize(text)
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Matches returns every crisis phrase found in text, in list order.
func Matches(text string) []string {
	s := normalize(text)
	var out []string
	for _, p := range phrases {
		if strings.Contains(s, p) {
			out = append(out, p)
		}
	}
	return out
}

func normalize(text string) string {
	// cases.Caser is stateful, so a fresh one per call keeps Detect safe for concurrent use
	lower := cases.Lower(language.Und)
	return lower.String(apostrophes.Replace(norm.NFKC.String(text)))
}
