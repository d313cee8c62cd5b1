package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// exitError ends the process with code after the command already reported
// why.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// cargoArgs drops the subcommand name cargo passes to external
// subcommands when invoked as `cargo syntax`.
func cargoArgs(args []string) []string {
	if len(args) > 0 && args[0] == "syntax" {
		return args[1:]
	}
	return args
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version + " (" + commit + ", " + date + ")"
	rootCmd.SetArgs(cargoArgs(os.Args[1:]))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			stop()
			os.Exit(exit.code)
		}
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
