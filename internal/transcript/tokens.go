package transcript

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// LineBreak marks the end of a source line in a token stream. It is kept so
// comparisons can be rendered with their original paragraph structure, and
// is never counted when scoring.
const LineBreak = "<BR>"

var punctuation = strings.NewReplacer(".", "", ",", "", "?", "", "!", "")

func IsLineBreak(token string) bool {
	return token == LineBreak
}

// Tokenize splits text into lower-cased, punctuation-free words and appends
// a LineBreak after every line.
func Tokenize(text string) []string {
	lower := cases.Lower(language.Und)
	var tokens []string
	for _, line := range strings.Split(text, "\n") {
		for _, word := range strings.Fields(norm.NFKC.String(line)) {
			word = punctuation.Replace(word)
			if word == "" {
				continue
			}
			tokens = append(tokens, lower.String(word))
		}
		tokens = append(tokens, LineBreak)
	}
	return tokens
}
