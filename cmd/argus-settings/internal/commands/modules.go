package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModulesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the registered settings modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := app.loader.Registry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MODULE\tBASE\tDESCRIPTION")
			for _, path := range reg.Paths() {
				m, _ := reg.Lookup(path)
				base := m.Base
				if base == "" {
					base = "-"
				}
				marker := ""
				if path == app.module {
					marker = " (selected)"
				}
				fmt.Fprintf(tw, "%s%s\t%s\t%s\n", path, marker, base, m.Doc)
			}
			return tw.Flush()
		},
	}
}
