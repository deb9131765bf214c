package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List the plugins available to csspost.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.plugins == nil {
				return nil
			}
			out := cmd.OutOrStdout()
			for _, name := range c.plugins.Names() {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
