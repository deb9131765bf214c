// Package main is the entry point for the csspost CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/csspost/cmd/csspost/commands"
	"go.trai.ch/csspost/internal/app"
	_ "go.trai.ch/csspost/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cliOpts := []commands.Option{}
	if l, ok := components.Logger.(commands.LogConfigurer); ok {
		cliOpts = append(cliOpts, commands.WithLogConfigurer(l))
	}
	if components.Metrics != nil {
		cliOpts = append(cliOpts, commands.WithMetrics(components.Metrics))
	}
	if components.Registry != nil {
		cliOpts = append(cliOpts, commands.WithPlugins(components.Registry))
	}

	cli := commands.New(components.App, cliOpts...)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}
