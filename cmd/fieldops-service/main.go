package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/buscapolo/fieldops/internal/auth"
	"github.com/buscapolo/fieldops/internal/config"
	"github.com/buscapolo/fieldops/internal/db"
	"github.com/buscapolo/fieldops/internal/excel"
	httphandler "github.com/buscapolo/fieldops/internal/http"
	"github.com/buscapolo/fieldops/internal/http/middleware"
	"github.com/buscapolo/fieldops/internal/logger"
	"github.com/buscapolo/fieldops/internal/notification"
	"github.com/buscapolo/fieldops/internal/pdf"
	"github.com/buscapolo/fieldops/internal/service"
	"github.com/buscapolo/fieldops/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	st := store.New(database)

	clientService := service.NewClientService(st, cfg.Clients.PhonePrefix)
	quoteService := service.NewQuoteService(st, cfg.Schedule.ConflictWindow)
	jobService := service.NewJobService(st, cfg.Schedule.ConflictWindow)

	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		clientService, quoteService, jobService,
		st, pdfGenerator, excelGenerator,
		log, cfg.Push.VAPIDPublicKey,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reminder.Enabled {
		options := &webpush.Options{
			Subscriber:      cfg.Push.Subject,
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			TTL:             cfg.Push.TTL,
		}
		worker := notification.NewWorker(st, options, log, cfg.Reminder.Interval, cfg.Reminder.Lead)
		go worker.Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fieldops service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
