package cli

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/chart"
	"github.com/fmueller/whisperbench/internal/report"
	"github.com/spf13/cobra"
)

func newChartCmd(app *appState) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "chart <data.csv>",
		Short: "Redraw the results chart from a saved CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open data: %w", err)
			}
			defer f.Close()

			table, err := report.ReadCSV(f)
			if err != nil {
				return err
			}
			img, err := chart.Render(app.cfg.Chart.Title, bench.DatasetFromTable(table), image.Pt(app.cfg.Chart.Width, app.cfg.Chart.Height))
			if err != nil {
				return fmt.Errorf("render chart: %w", err)
			}

			target := outPath
			if target == "" {
				target = graphPathFor(args[0])
			}
			if err := report.WritePNG(target, img); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	bindChartFlags(cmd, app)
	cmd.Flags().StringVar(&outPath, "out", "", "PNG output path (default: <stem>_graph.png next to the CSV)")

	return cmd
}

// graphPathFor maps "<stem>_data.csv" to "<stem>_graph.png".
func graphPathFor(csvPath string) string {
	base := strings.TrimSuffix(csvPath, ".csv")
	base = strings.TrimSuffix(base, "_data")
	return base + "_graph.png"
}
