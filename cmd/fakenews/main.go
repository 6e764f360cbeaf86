package main

import (
	"log/slog"
	"os"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fakenews failed", "error", err)
		os.Exit(1)
	}
}
