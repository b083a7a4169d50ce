package transcript

import (
	"testing"
	"time"

	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/stretchr/testify/require"
)

func TestTokenizeNormalizesWords(t *testing.T) {
	t.Parallel()

	got := Tokenize("The cat sat.\nDid it, really?")
	require.Equal(t, []string{"the", "cat", "sat", LineBreak, "did", "it", "really", LineBreak}, got)
}

func TestTokenizeKeepsLineStructure(t *testing.T) {
	t.Parallel()

	got := Tokenize("Hello world!\n\n  Again  \n")
	require.Equal(t, []string{"hello", "world", LineBreak, LineBreak, "again", LineBreak, LineBreak}, got)
}

func TestTokenizeDropsPunctuationOnlyWords(t *testing.T) {
	t.Parallel()

	got := Tokenize("wait ... what")
	require.Equal(t, []string{"wait", "what", LineBreak}, got)
}

func TestTokenizeEmptyText(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{LineBreak}, Tokenize(""))
}

func TestSentencesSplitsOnSentenceEnds(t *testing.T) {
	t.Parallel()

	segments := []whisper.Segment{
		{End: 2 * time.Second, Words: []whisper.Word{{Text: " Hello"}, {Text: " there."}, {Text: " How"}}},
		{End: 4 * time.Second, Words: []whisper.Word{{Text: "are"}, {Text: " you?"}, {Text: " Fine"}}},
	}

	require.Equal(t, "Hello there.\nHow are you?\nFine\n", Sentences(segments))
}

func TestSentencesEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", Sentences(nil))
}
