package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bioidiap/idiap-devtools/internal/cli"
	telemetryinit "github.com/bioidiap/idiap-devtools/internal/telemetry"
)

var (
	telemetryInit = telemetryinit.InitProvider
	rootCommand   = cli.NewRootCommand
	osExit        = os.Exit
)

func main() {
	ctx := context.Background()
	shutdown, err := telemetryInit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
	}
	if shutdown != nil {
		cleanupCtx, cancel := context.WithTimeout(ctx, telemetryinit.ShutdownTimeout)
		defer func() {
			defer cancel()
			if err := shutdown(cleanupCtx); err != nil {
				fmt.Fprintf(os.Stderr, "telemetry shutdown error: %v\n", err)
			}
		}()
	}

	cmd := rootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
