package commands

import (
	"fmt"

	"argus-settings/internal/settings"

	"github.com/spf13/cobra"
)

func newGetCommand(app *App) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "get [KEY]",
		Short: "Print one setting, or list every key when KEY is omitted",
		Example: `  argus-settings get MEDIA_PLUGINS
  argus-settings get database.host`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loader.Load(app.module)
			if err != nil {
				return err
			}
			if !showSecrets {
				s = s.Redacted()
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				keys, err := settings.Keys(s)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			v, err := settings.Get(s, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, scalar(v))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secret values instead of ********")
	return cmd
}
