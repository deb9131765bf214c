// Package commands implements the CLI commands for csspost.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/csspost/internal/app"
	"go.trai.ch/csspost/internal/build"
)

// CLI represents the command line interface for csspost.
type CLI struct {
	app      Application
	logs     LogConfigurer
	metrics  MetricsExporter
	plugins  PluginLister
	rootCmd  *cobra.Command
	verbose  bool
	jsonLogs bool
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) (*app.BuildResult, error)
	Watch(ctx context.Context, opts app.WatchOptions) error
	Clean(ctx context.Context, configPath string) (*app.CleanResult, error)
}

// LogConfigurer adjusts the log output from command line flags.
type LogConfigurer interface {
	SetVerbose(enable bool)
	SetJSON(enable bool)
}

// MetricsExporter publishes build metrics.
type MetricsExporter interface {
	WriteFile(path string) error
	Serve(ctx context.Context, addr string) error
}

// PluginLister lists the plugins available to configuration files.
type PluginLister interface {
	Names() []string
}

// Option configures optional CLI collaborators.
type Option func(*CLI)

// WithLogConfigurer enables the --verbose and --json-logs flags.
func WithLogConfigurer(l LogConfigurer) Option {
	return func(c *CLI) { c.logs = l }
}

// WithMetrics enables --metrics-file and --metrics-addr.
func WithMetrics(m MetricsExporter) Option {
	return func(c *CLI) { c.metrics = m }
}

// WithPlugins enables the plugins command.
func WithPlugins(p PluginLister) Option {
	return func(c *CLI) { c.plugins = p }
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "csspost",
		Short:         "Post-process built stylesheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	// No shorthand: -v belongs to --verbose.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().StringP("config", "c", ".", "Path to csspost.yaml or a directory to search from")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&c.jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.logs != nil {
			c.logs.SetVerbose(c.verbose)
			c.logs.SetJSON(c.jsonLogs)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newPluginsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
