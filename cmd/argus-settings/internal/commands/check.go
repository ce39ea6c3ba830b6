package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"argus-settings/internal/check"
	httpclient "argus-settings/internal/common/http"
	"argus-settings/pkg/registry"

	"github.com/spf13/cobra"
)

func newCheckCommand(app *App) *cobra.Command {
	var (
		format      string
		metricsFile string
		catalogFile string
		timeout     time.Duration
		retries     int
		backoff     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the settings and probe the backends they name",
		Long: `check validates the resolved settings, compares MEDIA_PLUGINS with the media
catalog and probes PostgreSQL, the Redis channel layer and the e-mail backend.
It exits with status 2 when any check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("--format must be text or json, got %q", format)
			}

			s, err := app.loader.Load(app.module)
			if err != nil {
				return err
			}

			deps := app.Deps
			switch {
			case registry.IsRemote(catalogFile):
				deps.Catalog, err = registry.FetchCatalog(cmd.Context(), httpclient.NewClient(timeout), catalogFile)
			case catalogFile != "":
				deps.Catalog, err = registry.LoadCatalog(catalogFile)
			}
			if err != nil {
				return err
			}

			runner := check.NewRunner(
				check.WithTimeout(timeout),
				check.WithRetries(retries, backoff),
				check.WithLogger(app.log),
				check.WithRecorder(app.metrics),
			)
			report := runner.Run(cmd.Context(), app.module, check.ForSettings(s, deps))

			if format == formatJSON {
				err = encode(cmd.OutOrStdout(), formatJSON, report)
			} else {
				err = writeReport(cmd.OutOrStdout(), report)
			}
			if err != nil {
				return err
			}

			if metricsFile != "" {
				if err := app.metrics.WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("write metrics file: %w", err)
				}
			}

			if report.Failed() {
				return ErrChecksFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", formatText, "output format: text or json")
	f.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	f.StringVar(&catalogFile, "catalog", "", "media catalog JSON file or http(s) URL instead of the built-in one")
	f.DurationVar(&timeout, "timeout", 5*time.Second, "timeout for each check attempt")
	f.IntVar(&retries, "retries", 2, "retries for checks that fail on an unreachable backend")
	f.DurationVar(&backoff, "backoff", 500*time.Millisecond, "delay before the first retry, doubled each time")
	return cmd
}

func writeReport(w io.Writer, report *check.Report) error {
	fmt.Fprintf(w, "module %s (run %s)\n", report.Module, report.RunID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tATTEMPTS\tDURATION\tDETAIL")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.Name, r.Status, r.Attempts, r.Duration.Round(time.Millisecond), r.Detail)
	}
	return tw.Flush()
}
