package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/export"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		input      = flag.String("i", "", "Roster to export (default store from config)")
		problems   = flag.String("p", "", "Problem file (default from config)")
		output     = flag.String("o", "scores_for_excel.tsv", "Output file")
		gsheet     = flag.Bool("gsheet", false, "Publish rankings to Google Sheets on the configured schedule")
	)
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	if *input != "" {
		config.Store.DSN = *input
	}
	if *problems != "" {
		config.Problems.IDs = nil
		config.Problems.File = *problems
	}

	service, err := app.NewServiceFromConfig(config)
	if err != nil {
		logger.Error.Fatalf("Failed to init service: %v", err)
	}
	defer service.Close()

	if *gsheet {
		runGSheet(service)
		return
	}

	users, err := service.Roster(context.Background())
	if err != nil {
		logger.Error.Fatalf("Failed to load roster: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		logger.Error.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()

	if err := export.WriteScoreSheet(f, users, service.Problems, service.TimeFormat); err != nil {
		logger.Error.Fatalf("Failed to write score sheet: %v", err)
	}
	logger.Info.Printf("%s を作成しました。", *output)
}

func runGSheet(service *app.Service) {
	source := func(ctx context.Context) (models.RankingReport, error) {
		report, _, err := service.Rankings(ctx)
		return report, err
	}

	exporter, err := export.NewGSheetExporter(service.Config, source)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize Google Sheets exporter: %v", err)
	}
	exporter.Start()
	defer exporter.Stop()

	logger.Info.Printf("Publishing rankings to %d sheets", len(service.Config.GSheet))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Exporter stopped")
}
