package cli

import (
	"fmt"

	"github.com/fmueller/whisperbench/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Resolve()
			fmt.Fprintf(cmd.OutOrStdout(), "whisperbench v%s\n", info)
			if info.Date != "" && info.Date != "unknown" {
				fmt.Fprintf(cmd.OutOrStdout(), "built %s\n", info.Date)
			}
			return nil
		},
	}
}
