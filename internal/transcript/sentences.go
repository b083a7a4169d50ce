package transcript

import (
	"strings"

	"github.com/fmueller/whisperbench/internal/whisper"
)

// Sentences joins the words of a transcription into text with one sentence
// per line. A sentence ends with a word whose last character is '.' or '?'.
func Sentences(segments []whisper.Segment) string {
	var out, line strings.Builder
	for _, segment := range segments {
		for _, word := range segment.Words {
			text := word.Text
			if strings.TrimSpace(text) == "" {
				continue
			}
			if line.Len() > 0 && !strings.HasPrefix(text, " ") {
				line.WriteByte(' ')
			}
			line.WriteString(text)
			if endsSentence(text) {
				out.WriteString(strings.TrimSpace(line.String()))
				out.WriteByte('\n')
				line.Reset()
			}
		}
	}
	if rest := strings.TrimSpace(line.String()); rest != "" {
		out.WriteString(rest)
		out.WriteByte('\n')
	}
	return out.String()
}

func endsSentence(word string) bool {
	word = strings.TrimSpace(word)
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "?")
}
