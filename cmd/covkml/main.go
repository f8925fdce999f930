// Command covkml writes a KML overlay of FIR boundaries and the flights of
// one time instant that lie inside a satellite coverage footprint.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/signalsfoundry/satcov/internal/cli"
	"github.com/signalsfoundry/satcov/internal/run"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run.Execute(ctx, cli.Overlay, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
