package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/metrics"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		initMode   = flag.Bool("init", false, "Reset every slot to the never-submitted state")
		cleanMode  = flag.Bool("clean", false, "Repair malformed slots without contacting the judge")
		debug      = flag.Bool("debug", false, "Log every submission record examined")
		importCSV  = flag.String("import", "", "Copy a CSV roster into the configured store")
	)
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *importCSV != "":
		n, err := service.Import(ctx, *importCSV)
		if err != nil {
			logger.Error.Fatalf("Import failed: %v", err)
		}
		logger.Info.Printf("Imported %d users", n)
	case *initMode:
		if err := service.Init(ctx); err != nil {
			logger.Error.Fatalf("Init failed: %v", err)
		}
		logger.Info.Println("All slots reset")
	case *cleanMode:
		if err := service.Clean(ctx); err != nil {
			logger.Error.Fatalf("Clean failed: %v", err)
		}
		logger.Info.Println("Roster cleaned")
	default:
		if _, err := service.Update(ctx, app.UpdateOptions{Debug: *debug}); err != nil {
			logger.Error.Fatalf("Update failed: %v", err)
		}
	}

	if url := service.Config.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, service.Config.Metrics.Job+"_checker"); err != nil {
			logger.Error.Printf("Metrics push failed: %v", err)
		}
	}
}
