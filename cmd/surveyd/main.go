package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"surveyd/internal/config"
	"surveyd/internal/events"
	"surveyd/internal/gateway/rest"
	"surveyd/internal/importer"
	"surveyd/internal/logging"
	"surveyd/internal/pubsub"
	"surveyd/internal/server"
	"surveyd/internal/service"
	mongostore "surveyd/internal/storage/mongo"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("Logging error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := mongostore.NewBackend(ctx, cfg.Storage.URI, cfg.Storage.Database,
		cfg.Storage.SurveyCollection, cfg.Storage.WellCollection)
	if err != nil {
		slog.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer backend.Close(context.Background())

	var publisher pubsub.Publisher
	if cfg.Events.NATSURL != "" {
		publisher, err = pubsub.NewNATSPublisher(cfg.Events.NATSURL, pubsub.PublisherOptions{
			StreamName: cfg.Events.StreamName,
		})
		if err != nil {
			slog.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
	} else {
		publisher = pubsub.NewMemoryPublisher()
	}
	defer publisher.Close()

	imports := importer.NewHTTPClient(cfg.Importer.URL, cfg.Importer.Timeout)
	svc := service.New(backend, backend, imports, events.NewNotifier(publisher))

	mux := http.NewServeMux()
	rest.NewHandler(svc).RegisterRoutes(mux)

	srv := server.New(cfg.Server, slog.Default(), mux)
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}
