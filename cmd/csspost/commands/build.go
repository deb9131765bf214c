package commands

import (
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/csspost/internal/app"
	"go.trai.ch/csspost/internal/ui/output"
	"go.trai.ch/csspost/internal/ui/summary"
	"go.trai.ch/zerr"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Process the assets of the input directory once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			asJSON, _ := cmd.Flags().GetBool("json")
			progress, _ := cmd.Flags().GetBool("progress")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")

			result, err := c.app.Build(cmd.Context(), app.BuildOptions{
				ConfigPath: configPath(cmd),
				NoCache:    noCache,
				Progress:   progress,
				Output:     cmd.ErrOrStderr(),
			})
			if result != nil && len(result.Stats) > 0 {
				if perr := printSummary(cmd.OutOrStdout(), result, asJSON); perr != nil && err == nil {
					err = perr
				}
			}

			if metricsFile != "" && c.metrics != nil {
				if merr := c.metrics.WriteFile(metricsFile); merr != nil && err == nil {
					err = merr
				}
			}
			return err
		},
	}

	cmd.Flags().Bool("no-cache", false, "Ignore and do not update the cache")
	cmd.Flags().Bool("json", false, "Print the asset summary as JSON")
	cmd.Flags().Bool("progress", false, "Show an interactive progress view")
	cmd.Flags().String("metrics-file", "", "Write build metrics in the Prometheus textfile format")

	return cmd
}

func printSummary(w io.Writer, result *app.BuildResult, asJSON bool) error {
	p := summary.NewPrinter(w, output.NewRenderer(w))
	var err error
	if asJSON {
		err = p.PrintJSON(result.Stats)
	} else {
		err = p.Print(result.Stats)
	}
	if err != nil {
		return zerr.Wrap(err, "failed to print summary")
	}
	return nil
}
