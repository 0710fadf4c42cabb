package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		outDir     = flag.String("o", "", "Download directory (default from config)")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	dir := service.Config.Download.Dir
	if *outDir != "" {
		dir = *outDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := service.Download(ctx, dir)
	if err != nil {
		logger.Error.Fatalf("Download failed: %v", err)
	}
	logger.Info.Printf("Saved %d sources to %s (%d not found, %d failed)",
		len(summary.Saved), dir, summary.NotFound, summary.Failed)
}
