package cli

import (
	"fmt"

	"github.com/fmueller/whisperbench/internal/report"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/spf13/cobra"
)

func newLanguagesCmd(_ *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages whisper can transcribe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			langs := whisper.Languages()
			rows := make([][]string, 0, len(langs))
			for _, lang := range langs {
				rows = append(rows, []string{lang.Code, lang.Name})
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable([]string{"Code", "Language"}, rows, []report.Alignment{report.AlignLeft, report.AlignLeft}))
			return nil
		},
	}
}
