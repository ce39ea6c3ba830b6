// Package main is the entry point for argus-settings, which resolves Argus
// settings modules and checks the backends they point at.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	commands "argus-settings/cmd/argus-settings/internal/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.NewApp()
	root := commands.NewRootCommand(app)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, commands.ErrChecksFailed) {
			return 2
		}
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		return 1
	}
	return 0
}
