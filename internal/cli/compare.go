package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fmueller/whisperbench/internal/align"
	"github.com/fmueller/whisperbench/internal/report"
	"github.com/fmueller/whisperbench/internal/scoring"
	"github.com/fmueller/whisperbench/internal/transcript"
	"github.com/spf13/cobra"
)

func newCompareCmd(app *appState) *cobra.Command {
	var htmlPath string

	cmd := &cobra.Command{
		Use:   "compare <reference.txt> <hypothesis.txt>",
		Short: "Score a transcript against a reference transcript",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read reference: %w", err)
			}
			hyp, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read hypothesis: %w", err)
			}

			pairs, score := scoring.Compare(align.Aligner{}, transcript.Tokenize(string(ref)), transcript.Tokenize(string(hyp)))
			if score.Degenerate() {
				app.log().Warn("nothing to compare; accuracy reported as 0")
			}
			writeScore(cmd.OutOrStdout(), score)

			if htmlPath == "" {
				return nil
			}
			section := report.Section{
				Heading: fmt.Sprintf("Comparing %s with %s", filepath.Base(args[1]), filepath.Base(args[0])),
				Pairs:   pairs,
				Score:   score,
			}
			f, err := os.Create(htmlPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", htmlPath, err)
			}
			defer f.Close()
			if err := report.WriteHTML(f, []report.Section{section}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", htmlPath)
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write a colour-coded comparison page to this file")

	return cmd
}

func writeScore(w io.Writer, score scoring.Result) {
	t := score.Tally
	rows := [][]string{
		{"Equal", strconv.Itoa(t.Equal)},
		{"Changed", strconv.Itoa(t.Replace)},
		{"Added", strconv.Itoa(t.Insert)},
		{"Deleted", strconv.Itoa(t.Delete)},
		{"Total", strconv.Itoa(t.Total())},
		{"Accuracy", fmt.Sprintf("%.2f%%", score.Accuracy)},
		{"Error rate", fmt.Sprintf("%.2f%%", score.ErrorRate)},
	}
	fmt.Fprintln(w, report.RenderTable([]string{"Words", "Count"}, rows, []report.Alignment{report.AlignLeft, report.AlignRight}))
}
