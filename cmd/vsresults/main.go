package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/Larcf/footstats-data/cmd/vsresults/commands"
	"github.com/Larcf/footstats-data/lib/serviceutil"
	"github.com/Larcf/footstats-data/lib/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, the proxy variables can also come from the environment
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "vsresults")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to setup telemetry", "err", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := tel.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}

	if err != nil {
		stop()
		cancel()
		serviceutil.Fatal("vsresults failed", err)
	}
}
