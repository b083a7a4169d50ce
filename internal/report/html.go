package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/fmueller/whisperbench/internal/align"
	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/scoring"
	"github.com/fmueller/whisperbench/internal/transcript"
)

// Section is one scored comparison on the HTML page.
type Section struct {
	Heading string
	Pairs   []scoring.Pair
	Score   scoring.Result
}

func SectionsFor(audioName string, comparisons []bench.Comparison) []Section {
	sections := make([]Section, 0, len(comparisons))
	for _, c := range comparisons {
		sections = append(sections, Section{
			Heading: fmt.Sprintf("Processing %s with %s - %s", audioName, c.Model, c.Device),
			Pairs:   c.Pairs,
			Score:   c.Score,
		})
	}
	return sections
}

// WriteHTML renders every section as colour-coded token diffs followed by
// the counts and percentages.
func WriteHTML(w io.Writer, sections []Section) error {
	if err := comparisonTemplate.Execute(w, sections); err != nil {
		return fmt.Errorf("render comparison html: %w", err)
	}
	return nil
}

// word renders a token, turning line-break markers back into breaks.
func word(token string) template.HTML {
	if transcript.IsLineBreak(token) {
		return "<br>"
	}
	return template.HTML(template.HTMLEscapeString(token))
}

var comparisonTemplate = template.Must(template.New("comparisons").Funcs(template.FuncMap{
	"word":    word,
	"equal":   func(k align.Kind) bool { return k == align.Equal },
	"replace": func(k align.Kind) bool { return k == align.Replace },
	"insert":  func(k align.Kind) bool { return k == align.Insert },
}).Parse(comparisonTemplateHTML))

const comparisonTemplateHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Whisper Model Comparisons</title></head><body>
{{- range .}}
<H1>{{.Heading}}</H1>
<p>
{{- range .Pairs}}
{{- if equal .Kind}}{{word .Ref}}{{" "}}
{{- else if replace .Kind}}<B><FONT COLOR="#00BFFF">{{word .Ref}}</FONT>/<FONT COLOR="#00bfcc">{{word .Hyp}}</FONT></B>{{" "}}
{{- else if insert .Kind}}<I><FONT COLOR="#00FF00">{{word .Hyp}}</FONT></I>{{" "}}
{{- else}}<B><FONT COLOR="#FF0000">{{word .Ref}}</FONT></B>{{" "}}
{{- end}}
{{- end}}</p>
Equal: {{.Score.Tally.Equal}}<BR>
Changed: {{.Score.Tally.Replace}}<BR>
Added: {{.Score.Tally.Insert}}<BR>
Deleted: {{.Score.Tally.Delete}}<BR>
<p>Accuracy: {{printf "%5.2f" .Score.Accuracy}}%  Error Rate: {{printf "%5.2f" .Score.ErrorRate}}%</p>
<p>Key: Black = same.&nbsp;&nbsp;&nbsp;<FONT COLOR="#00BFFF">Blue = Changed</FONT>&nbsp;&nbsp;&nbsp;<FONT COLOR="#00FF00">Green = Added to 2nd</FONT>&nbsp;&nbsp;&nbsp;<FONT COLOR="#FF0000">Red = Removed from 1st</FONT></p>
{{- end}}
</body></html>
`
