package main

import (
	"minerva-archive/cmd/archive-cli/commands"
	"minerva-archive/lib/serviceutil"
	"minerva-archive/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "archive-cli")
	commands.ExecuteContext(ctx)
}
