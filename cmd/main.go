package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"surface-inspector/config"
	"surface-inspector/internal/api/httpapi"
	"surface-inspector/internal/api/telegram"
	"surface-inspector/internal/container"
	"surface-inspector/internal/infrastructure/notify"
	"surface-inspector/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logger.WithError(err).Error("inspector stopped with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.LogLevel); err != nil {
		return err
	}

	// Бот нужен и для приёма фото, и для оповещений о браке
	var botAPI *tgbotapi.BotAPI
	var sender notify.Sender
	if cfg.TelegramToken != "" {
		botAPI, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return err
		}
		sender = botAPI
	}

	appContainer, err := container.New(cfg, sender)
	if err != nil {
		return err
	}
	defer func() {
		if err := appContainer.Close(); err != nil {
			logger.WithError(err).Warn("container close failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewHandler(appContainer.InspectionService, httpapi.Options{
			MaxUploadBytes:    cfg.MaxUploadBytes,
			RequestTimeout:    cfg.RequestTimeout,
			GatekeeperBackend: cfg.GatekeeperBackend,
			VisionBackend:     cfg.VisionBackend,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if botAPI != nil {
		bot := telegram.NewBot(botAPI, appContainer.UserService, appContainer.InspectionService, cfg.MaxUploadBytes, cfg.RequestTimeout)
		g.Go(func() error {
			return bot.Run(gctx)
		})
	} else {
		logger.Info("TELEGRAM_TOKEN is empty, bot disabled")
	}

	return g.Wait()
}
