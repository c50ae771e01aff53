package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"skillswap/internal/apperr"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage prefers the single user-facing message of typed errors.
func errorMessage(err error) string {
	if apperr.KindOf(err) != 0 {
		return apperr.Message(err)
	}
	return err.Error()
}
