package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"noticedesk_backend/internal/followup"
	"noticedesk_backend/internal/whatsapp"
	"noticedesk_backend/platform/config"
	"noticedesk_backend/platform/db"
	"noticedesk_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting followup worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	waClient := whatsapp.NewClient(cfg, log)
	if waClient == nil {
		log.Warn("WHATSAPP_URL not configured; nudges will be skipped")
	}

	worker, err := followup.NewWorker(cfg, pool, waClient, log)
	if err != nil {
		log.Error("failed to initialize followup worker", "error", err)
		panic("failed to initialize followup worker: " + err.Error())
	}

	log.Info("followup worker listening", "queue", cfg.AsynqQueueName)
	worker.Run(ctx)
	log.Info("followup worker stopped")
}
