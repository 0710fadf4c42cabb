package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/archive"
	"github.com/nshrhm/aoj-submission-manager/internal/handlers"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	report := func(ctx context.Context) (models.RankingReport, error) {
		r, _, err := service.Rankings(ctx)
		return r, err
	}

	var snapshot handlers.SnapshotSource
	if uri := service.Config.Archive.MongoURI; uri != "" {
		a, err := archive.NewMongoArchive(context.Background(), uri,
			service.Config.Archive.Database, service.Config.Archive.Collection)
		if err != nil {
			logger.Error.Fatalf("Failed to connect archive: %v", err)
		}
		defer a.Close(context.Background())
		snapshot = func(ctx context.Context, day string) (*archive.Snapshot, error) {
			if day == "latest" {
				return a.Latest(ctx)
			}
			return a.Get(ctx, day)
		}
		logger.Debug.Printf("Serving archived rankings from %s.%s",
			service.Config.Archive.Database, service.Config.Archive.Collection)
	}

	router := handlers.NewRouter(
		handlers.NewRankingHandler(report, snapshot),
		service.Config.Server.AllowedOrigins,
	)

	logger.Info.Printf("Starting ranking server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, router); err != nil {
		logger.Error.Fatalf("Ranking server failed: %v", err)
	}
}
