// Command banksim runs banking scenarios and tools from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/banksim/internal/cli"
	"github.com/roach88/banksim/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return cli.ExitCommandError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(cfg, newLogger(os.Stderr, cfg))
	if err := cmd.ExecuteContext(ctx); err != nil {
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
