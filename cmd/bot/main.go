package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"qr-logo-bot/internal/config"
	"qr-logo-bot/internal/constants"
	"qr-logo-bot/internal/httpapi"
	"qr-logo-bot/internal/permissions"
	"qr-logo-bot/internal/services"
	"qr-logo-bot/pkg/telegrambot"
	"qr-logo-bot/pkg/tgfile"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}

	// The .env file may carry a different level than the process environment
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize services
	logoStore, err := services.NewLogoStore(cfg.Logo.Dir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize logo store:", err)
	}
	stateService := services.NewUserStateService(logger)
	qrService := services.NewQRService(cfg.QR, logger)
	logoService := services.NewLogoService(cfg.Logo, logger)
	fileClient := tgfile.NewClient(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Logo.MaxBytes, cfg.Logo.DownloadTimeout, logger)

	// Setup permission controller
	permController := permissions.NewController(cfg.Telegram.AllowedIDs, logger)

	// Initialize bot
	bot, err := telegrambot.NewBot(cfg, stateService, qrService, logoService, logoStore, fileClient, permController, logger)
	if err != nil {
		logger.Fatal("Failed to create bot:", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start HTTP API when configured
	if cfg.HTTP.Addr != "" {
		server := httpapi.NewServer(cfg, qrService, logger)
		go func() {
			if err := server.Run(ctx); err != nil {
				logger.Errorf("HTTP API failed: %v", err)
			}
		}()
	}

	// Start bot
	logger.Info("Starting QR logo bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed:", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	// Set log level from environment variable or default to info
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	// Set formatter
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: constants.TimestampFormat,
	})

	return logger
}
