package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/app"
	"github.com/shrimpsizemoose/upprop/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var once = flag.Bool("once", false, "Export immediately and exit")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	exporter, err := export.NewCSVExporter(service.Config, service.Roster)
	if err != nil {
		logger.Error.Fatalf("Failed to initialize standings exporter: %v", err)
	}
	defer exporter.Stop()

	if *once {
		if err := exporter.Export(); err != nil {
			logger.Error.Fatalf("Export failed: %v", err)
		}
		return
	}

	logger.Info.Println("Standings exporter running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Standings exporter stopped")
}
