package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/smith3v/family-medicine-manager/pkg/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp(os.Stdin, os.Stdout, os.Stderr)
	code := app.Run(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
