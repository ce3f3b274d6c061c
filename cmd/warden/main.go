package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wardenbot/internal/bot"
	"wardenbot/internal/config"
	"wardenbot/internal/locale"
	"wardenbot/internal/moderation"
	"wardenbot/internal/modules/audit"
	"wardenbot/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	locales, err := locale.Load(cfg.DefaultLanguage, logger)
	if err != nil {
		logger.Fatal("locale load failed", zap.Error(err))
	}

	auditLogger := audit.NewLogger(store, logger)
	registry := moderation.NewRegistry()

	botSvc, err := bot.New(cfg, logger, store, locales, registry, auditLogger)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	botSvc.Close(ctx)
}
