package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/archive"
	"github.com/nshrhm/aoj-submission-manager/internal/export"
	"github.com/nshrhm/aoj-submission-manager/internal/metrics"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		outDir     = flag.String("o", "", "Output directory (default from config)")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	ctx := context.Background()
	config := service.Config

	dir := config.Rankings.Dir
	if *outDir != "" {
		dir = *outDir
	}

	report, users, err := service.Rankings(ctx)
	if err != nil {
		logger.Error.Fatalf("Failed to build rankings: %v", err)
	}

	paths, err := export.WriteRankings(dir, report)
	if err != nil {
		logger.Error.Fatalf("Failed to write rankings: %v", err)
	}
	for _, p := range paths {
		logger.Info.Printf("Wrote %s", p)
	}

	if config.Rankings.DebugLog {
		path := filepath.Join(dir, "debug_log_total_ranking.txt")
		f, err := os.Create(path)
		if err != nil {
			logger.Error.Fatalf("Failed to create debug log: %v", err)
		}
		if err := export.WriteDebugLog(f, users, service.Problems, report); err != nil {
			logger.Error.Printf("Failed to write debug log: %v", err)
		}
		f.Close()
	}

	if config.Archive.MongoURI != "" {
		a, err := archive.NewMongoArchive(ctx, config.Archive.MongoURI, config.Archive.Database, config.Archive.Collection)
		if err != nil {
			logger.Error.Fatalf("Failed to connect archive: %v", err)
		}
		defer a.Close(ctx)
		if err := a.Save(ctx, report); err != nil {
			logger.Error.Printf("Failed to archive rankings: %v", err)
		} else {
			logger.Info.Printf("Archived rankings for %s", report.Day)
		}
	}

	if url := config.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, config.Metrics.Job+"_ranker"); err != nil {
			logger.Error.Printf("Metrics push failed: %v", err)
		}
	}
}
