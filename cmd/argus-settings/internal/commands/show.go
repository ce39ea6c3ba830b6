package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(app *App) *cobra.Command {
	var format string
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatYAML && format != formatJSON {
				return fmt.Errorf("--format must be yaml or json, got %q", format)
			}
			s, err := app.loader.Load(app.module)
			if err != nil {
				return err
			}
			if !showSecrets {
				s = s.Redacted()
			}
			return encode(cmd.OutOrStdout(), format, s)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatYAML, "output format: yaml or json")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secret values instead of ********")
	return cmd
}
