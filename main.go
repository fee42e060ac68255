package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pstimetrack/internal/cli"
	"pstimetrack/internal/config"
	"pstimetrack/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logging.Init(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		// Tracking still works without a log file.
		fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
	} else {
		defer closeLog()
	}

	app := &cli.App{
		DBPath: cfg.DB.Path,
		Logger: slog.Default(),
	}

	if err := cli.Execute(context.Background(), app); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}
