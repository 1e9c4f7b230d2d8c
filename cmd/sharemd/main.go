package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

var version = "dev"

var errPrefix = color.New(color.FgRed, color.Bold)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		errPrefix.Fprint(os.Stderr, "sharemd:")
		fmt.Fprintf(os.Stderr, " %v\n", err)
		return 1
	}
	return 0
}
