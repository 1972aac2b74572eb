// Package main is the entry point for the lbake CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lightbake/lbake/internal/cmd"
	"github.com/lightbake/lbake/internal/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.NewRootCmd().ExecuteContext(ctx)
	code := cmd.ExitCodeFromError(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		output.Debug("exiting", "code", code, "reason", cmd.ExitCodeName(code))
	}
	stop()
	os.Exit(code)
}
