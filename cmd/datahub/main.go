// Command datahub browses, searches and serves the dataset catalog.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/publicintelligence/datahub/internal/adapters/driving/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetWiring(wire)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
