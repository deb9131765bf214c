package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/csspost/internal/app"
	"golang.org/x/sync/errgroup"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever the input directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			asJSON, _ := cmd.Flags().GetBool("json")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
			debounce, _ := cmd.Flags().GetDuration("debounce")

			out := cmd.OutOrStdout()

			g, ctx := errgroup.WithContext(cmd.Context())
			if metricsAddr != "" && c.metrics != nil {
				g.Go(func() error {
					return c.metrics.Serve(ctx, metricsAddr)
				})
			}
			g.Go(func() error {
				return c.app.Watch(ctx, app.WatchOptions{
					BuildOptions: app.BuildOptions{
						ConfigPath: configPath(cmd),
						NoCache:    noCache,
					},
					Debounce: debounce,
					OnBuild: func(result *app.BuildResult, err error) {
						if result != nil && len(result.Stats) > 0 {
							_ = printSummary(out, result, asJSON)
						}
						if err != nil {
							cmd.PrintErrln(err.Error())
							return
						}
						if !asJSON {
							_, _ = fmt.Fprintf(out, "built in %s\n", result.Duration.Round(time.Millisecond))
						}
					},
				})
			})
			return g.Wait()
		},
	}

	cmd.Flags().Bool("no-cache", false, "Ignore and do not update the cache")
	cmd.Flags().Bool("json", false, "Print asset summaries as JSON")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().Duration("debounce", 0, "Quiet period after a change before rebuilding")

	return cmd
}
