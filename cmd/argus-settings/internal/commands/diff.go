package commands

import (
	"fmt"
	"io"

	"argus-settings/internal/settings"

	"github.com/spf13/cobra"
)

func newDiffCommand(app *App) *cobra.Command {
	var format string
	var layers bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what the module changes relative to its base",
		Long: `diff compares the resolved module with its base module and prints every key
whose value differs. With --layers it walks the whole chain from the root
module and prints what each module changed. Secrets are always redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("--format must be text or json, got %q", format)
			}
			if layers {
				return diffLayers(cmd.OutOrStdout(), app, format)
			}

			module, ok := app.loader.Registry().Lookup(app.module)
			if !ok {
				// Let Load produce the MODULE_NOT_FOUND error.
				_, err := app.loader.Load(app.module)
				return err
			}
			if module.Base == "" {
				return fmt.Errorf("module %s has no base to compare with", app.module)
			}

			final, err := app.loader.Load(app.module)
			if err != nil {
				return err
			}
			base, err := app.loader.Load(module.Base)
			if err != nil {
				return err
			}

			changes, err := settings.Diff(base.Redacted(), final.Redacted())
			if err != nil {
				return err
			}
			if format == formatJSON {
				return encode(cmd.OutOrStdout(), formatJSON, changes)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n+++ %s\n", module.Base, app.module)
			writeChanges(cmd.OutOrStdout(), changes)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	cmd.Flags().BoolVar(&layers, "layers", false, "show the changes made by every module in the chain")
	return cmd
}

type layerDiff struct {
	Module  string            `json:"module"`
	Changes []settings.Change `json:"changes"`
}

func diffLayers(w io.Writer, app *App, format string) error {
	snapshots, err := app.loader.Layers(app.module)
	if err != nil {
		return err
	}

	prev := &settings.Settings{}
	diffs := make([]layerDiff, 0, len(snapshots))
	for _, layer := range snapshots {
		changes, err := settings.Diff(prev.Redacted(), layer.Settings.Redacted())
		if err != nil {
			return err
		}
		diffs = append(diffs, layerDiff{Module: layer.Module, Changes: changes})
		prev = layer.Settings
	}

	if format == formatJSON {
		return encode(w, formatJSON, diffs)
	}
	for _, d := range diffs {
		fmt.Fprintf(w, "== %s\n", d.Module)
		writeChanges(w, d.Changes)
	}
	return nil
}

func writeChanges(w io.Writer, changes []settings.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(w, "(no changes)")
		return
	}
	for _, c := range changes {
		fmt.Fprintf(w, "%s\n  - %s\n  + %s\n", c.Key, jsonValue(c.Old), jsonValue(c.New))
	}
}
